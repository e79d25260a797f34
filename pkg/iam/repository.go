package iam

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrFeatureNotFound = errors.New("feature not found")
)

// IamRepository defines the store for profiles, roles, features, and overrides
type IamRepository interface {
	// User operations
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	FindUsersByOrganization(ctx context.Context, orgID uuid.UUID) ([]UserWithRole, error)

	// Role operations
	FindRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)

	// Feature operations
	FindFeatures(ctx context.Context) ([]Feature, error)
	GetFeatureByName(ctx context.Context, name string) (Feature, error)

	// UpsertUserOverride stores a per-user override, replacing any prior row
	// for the same (user, feature) pair
	UpsertUserOverride(ctx context.Context, userID, featureID uuid.UUID, granted bool) error
}
