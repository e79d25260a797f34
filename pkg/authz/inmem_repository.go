package authz

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryPermissionRepository implements PermissionRepository using in-memory
// storage. Intended for tests and local development.
type InMemoryPermissionRepository struct {
	mu        sync.RWMutex
	profiles  map[uuid.UUID]Profile
	features  map[string]bool
	rolePerms map[uuid.UUID]map[string]bool
	overrides map[uuid.UUID]map[string]bool // userID -> featureName -> granted
}

// NewInMemoryPermissionRepository creates a new in-memory permission repository
func NewInMemoryPermissionRepository() *InMemoryPermissionRepository {
	return &InMemoryPermissionRepository{
		profiles:  make(map[uuid.UUID]Profile),
		features:  make(map[string]bool),
		rolePerms: make(map[uuid.UUID]map[string]bool),
		overrides: make(map[uuid.UUID]map[string]bool),
	}
}

// PutProfile stores or replaces a profile
func (r *InMemoryPermissionRepository) PutProfile(profile Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.ID] = profile
}

// AddFeature registers a feature name
func (r *InMemoryPermissionRepository) AddFeature(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[name] = true
}

// GrantRolePermission adds a feature to a role's default grant set
func (r *InMemoryPermissionRepository) GrantRolePermission(roleID uuid.UUID, featureName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[featureName] = true
	if r.rolePerms[roleID] == nil {
		r.rolePerms[roleID] = make(map[string]bool)
	}
	r.rolePerms[roleID][featureName] = true
}

// SetOverride stores a per-user override for a feature
func (r *InMemoryPermissionRepository) SetOverride(userID uuid.UUID, featureName string, granted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[featureName] = true
	if r.overrides[userID] == nil {
		r.overrides[userID] = make(map[string]bool)
	}
	r.overrides[userID][featureName] = granted
}

// GetProfile returns the profile for a user, or ErrProfileNotFound
func (r *InMemoryPermissionRepository) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

// ListRolePermissionFeatureNames returns the default grant set for a role
func (r *InMemoryPermissionRepository) ListRolePermissionFeatureNames(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rolePerms[roleID]))
	for name := range r.rolePerms[roleID] {
		names = append(names, name)
	}
	return names, nil
}

// ListUserOverrides returns all per-user overrides for a user
func (r *InMemoryPermissionRepository) ListUserOverrides(ctx context.Context, userID uuid.UUID) ([]Override, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	overrides := make([]Override, 0, len(r.overrides[userID]))
	for name, granted := range r.overrides[userID] {
		overrides = append(overrides, Override{FeatureName: name, Granted: granted})
	}
	return overrides, nil
}

// ListAllFeatureNames returns the names of every feature that exists
func (r *InMemoryPermissionRepository) ListAllFeatureNames(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.features))
	for name := range r.features {
		names = append(names, name)
	}
	return names, nil
}
