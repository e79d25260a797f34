package org

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-authz/pkg/iam"
)

// InMemoryOrgRepository implements OrgRepository using in-memory storage.
// It shares the user store with an InMemoryIamRepository so onboarding can
// reassign users the way the relational store's profiles table does.
type InMemoryOrgRepository struct {
	mu       sync.RWMutex
	orgs     map[uuid.UUID]Organization
	profiles map[uuid.UUID]Profile
	iamRepo  *iam.InMemoryIamRepository
}

// NewInMemoryOrgRepository creates a new in-memory organization repository
// backed by the given IAM repository for user reassignment
func NewInMemoryOrgRepository(iamRepo *iam.InMemoryIamRepository) *InMemoryOrgRepository {
	return &InMemoryOrgRepository{
		orgs:     make(map[uuid.UUID]Organization),
		profiles: make(map[uuid.UUID]Profile),
		iamRepo:  iamRepo,
	}
}

// CreateOrganization creates a new organization
func (r *InMemoryOrgRepository) CreateOrganization(ctx context.Context, name, onboardingStatus string) (Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	organization := Organization{
		ID:               uuid.New(),
		Name:             name,
		OnboardingStatus: onboardingStatus,
		CreatedAt:        time.Now().UTC(),
	}
	r.orgs[organization.ID] = organization
	return organization, nil
}

// GetOrganization gets an organization by ID
func (r *InMemoryOrgRepository) GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	organization, ok := r.orgs[id]
	if !ok {
		return Organization{}, ErrOrganizationNotFound
	}
	return organization, nil
}

// FindOrganizations lists every organization with its profile, newest first
func (r *InMemoryOrgRepository) FindOrganizations(ctx context.Context) ([]OrganizationWithProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]OrganizationWithProfile, 0, len(r.orgs))
	for _, organization := range r.orgs {
		withProfile := OrganizationWithProfile{Organization: organization}
		if profile, ok := r.profiles[organization.ID]; ok {
			p := profile
			withProfile.Profile = &p
		}
		result = append(result, withProfile)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// SetOnboardingStatus updates an organization's onboarding status
func (r *InMemoryOrgRepository) SetOnboardingStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	organization, ok := r.orgs[id]
	if !ok {
		return ErrOrganizationNotFound
	}
	organization.OnboardingStatus = status
	r.orgs[id] = organization
	return nil
}

// UpsertProfile stores or replaces an organization's onboarding profile
func (r *InMemoryOrgRepository) UpsertProfile(ctx context.Context, profile Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile.UpdatedAt = time.Now().UTC()
	r.profiles[profile.OrganizationID] = profile
	return nil
}

// GetProfile gets an organization's onboarding profile
func (r *InMemoryOrgRepository) GetProfile(ctx context.Context, orgID uuid.UUID) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[orgID]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

// AssignUserToOrganization sets a user's organization and tenant role
func (r *InMemoryOrgRepository) AssignUserToOrganization(ctx context.Context, userID, orgID, roleID uuid.UUID, fullName string) error {
	user, err := r.iamRepo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	user.OrganizationID = &orgID
	user.RoleID = &roleID
	if fullName != "" {
		user.FullName = fullName
	}
	user.IsPlatformAdmin = false
	r.iamRepo.PutUser(user)
	return nil
}
