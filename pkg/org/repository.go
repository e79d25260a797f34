package org

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrProfileNotFound      = errors.New("organization profile not found")
)

// OrgRepository defines the store for organizations and their onboarding profiles
type OrgRepository interface {
	CreateOrganization(ctx context.Context, name, onboardingStatus string) (Organization, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error)
	FindOrganizations(ctx context.Context) ([]OrganizationWithProfile, error)
	SetOnboardingStatus(ctx context.Context, id uuid.UUID, status string) error

	UpsertProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, orgID uuid.UUID) (Profile, error)

	// AssignUserToOrganization sets a user's organization and tenant role
	// during onboarding
	AssignUserToOrganization(ctx context.Context, userID, orgID, roleID uuid.UUID, fullName string) error
}
