package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when no profile record exists for a user
var ErrProfileNotFound = errors.New("profile not found")

// PermissionRepository defines the read-side store the resolver works against.
// All reads go to current state on every call; the resolver never caches, so
// role or override changes take effect on the next check.
type PermissionRepository interface {
	// GetProfile returns the profile for a user, or ErrProfileNotFound
	GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error)

	// ListRolePermissionFeatureNames returns the default grant set for a role
	ListRolePermissionFeatureNames(ctx context.Context, roleID uuid.UUID) ([]string, error)

	// ListUserOverrides returns all per-user overrides for a user
	ListUserOverrides(ctx context.Context, userID uuid.UUID) ([]Override, error)

	// ListAllFeatureNames returns the names of every feature that exists
	ListAllFeatureNames(ctx context.Context) ([]string, error)
}
