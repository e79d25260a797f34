package iam

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryIamRepository implements IamRepository using in-memory storage.
// Intended for tests and local development.
type InMemoryIamRepository struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]User
	roles     map[uuid.UUID]Role
	features  map[uuid.UUID]Feature
	overrides map[uuid.UUID]map[uuid.UUID]bool // userID -> featureID -> granted
}

// NewInMemoryIamRepository creates a new in-memory IAM repository
func NewInMemoryIamRepository() *InMemoryIamRepository {
	return &InMemoryIamRepository{
		users:     make(map[uuid.UUID]User),
		roles:     make(map[uuid.UUID]Role),
		features:  make(map[uuid.UUID]Feature),
		overrides: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

// PutUser stores or replaces a user profile
func (r *InMemoryIamRepository) PutUser(user User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}

// PutRole stores or replaces a role
func (r *InMemoryIamRepository) PutRole(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role.ID] = role
}

// PutFeature stores or replaces a feature
func (r *InMemoryIamRepository) PutFeature(feature Feature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[feature.ID] = feature
}

// Overrides returns a copy of one user's override rows, for tests
func (r *InMemoryIamRepository) Overrides(userID uuid.UUID) map[uuid.UUID]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uuid.UUID]bool, len(r.overrides[userID]))
	for featureID, granted := range r.overrides[userID] {
		out[featureID] = granted
	}
	return out
}

// GetUser gets a user by ID
func (r *InMemoryIamRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

// CreateUser creates a new user profile
func (r *InMemoryIamRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := User{
		ID:             uuid.New(),
		Email:          params.Email,
		FullName:       params.FullName,
		OrganizationID: params.OrganizationID,
		RoleID:         params.RoleID,
		CreatedAt:      time.Now().UTC(),
	}
	r.users[user.ID] = user
	return user, nil
}

// FindUsersByOrganization finds users of one organization, newest first
func (r *InMemoryIamRepository) FindUsersByOrganization(ctx context.Context, orgID uuid.UUID) ([]UserWithRole, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []UserWithRole
	for _, user := range r.users {
		if user.OrganizationID == nil || *user.OrganizationID != orgID {
			continue
		}
		withRole := UserWithRole{User: user}
		if user.RoleID != nil {
			if role, ok := r.roles[*user.RoleID]; ok {
				withRole.RoleName = role.Name
			}
		}
		result = append(result, withRole)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// FindRoles lists every role
func (r *InMemoryIamRepository) FindRoles(ctx context.Context) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

// GetRole gets a role by ID
func (r *InMemoryIamRepository) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[id]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return role, nil
}

// GetRoleByName gets a role by its unique name
func (r *InMemoryIamRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return Role{}, ErrRoleNotFound
}

// FindFeatures lists every feature
func (r *InMemoryIamRepository) FindFeatures(ctx context.Context) ([]Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	features := make([]Feature, 0, len(r.features))
	for _, feature := range r.features {
		features = append(features, feature)
	}
	sort.Slice(features, func(i, j int) bool { return features[i].Name < features[j].Name })
	return features, nil
}

// GetFeatureByName gets a feature by its unique name
func (r *InMemoryIamRepository) GetFeatureByName(ctx context.Context, name string) (Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, feature := range r.features {
		if feature.Name == name {
			return feature, nil
		}
	}
	return Feature{}, ErrFeatureNotFound
}

// UpsertUserOverride stores a per-user override, replacing any prior row
func (r *InMemoryIamRepository) UpsertUserOverride(ctx context.Context, userID, featureID uuid.UUID, granted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overrides[userID] == nil {
		r.overrides[userID] = make(map[uuid.UUID]bool)
	}
	r.overrides[userID][featureID] = granted
	return nil
}
