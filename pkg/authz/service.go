package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
)

// PermissionService computes effective permission sets and answers point
// queries. It is stateless and read-only; concurrent use is safe.
type PermissionService struct {
	repo PermissionRepository
}

// NewPermissionService creates a new permission service
func NewPermissionService(repo PermissionRepository) *PermissionService {
	return &PermissionService{
		repo: repo,
	}
}

// ResolveActor loads the current profile for a user and builds the actor
// variant from it. Returns ErrProfileNotFound when no profile exists.
func (s *PermissionService) ResolveActor(ctx context.Context, userID uuid.UUID) (Actor, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return Actor{}, err
	}

	displayName := profile.FullName
	if displayName == "" {
		displayName = profile.Email
	}

	if profile.IsPlatformAdmin {
		return PlatformAdmin(profile.ID, displayName), nil
	}

	var orgID, roleID uuid.UUID
	if profile.OrganizationID != nil {
		orgID = *profile.OrganizationID
	}
	if profile.RoleID != nil {
		roleID = *profile.RoleID
	}
	return OrgUser(profile.ID, displayName, orgID, roleID), nil
}

// EffectivePermissions computes the full set of feature names the actor holds.
// Platform admins get every feature that currently exists. Organization users
// get their role defaults with per-user overrides applied on top: a granted
// override adds the feature even when the role lacks it, a revoked override
// removes it even when the role grants it.
func (s *PermissionService) EffectivePermissions(ctx context.Context, actor Actor) ([]string, error) {
	if actor.IsPlatformAdmin() {
		names, err := s.repo.ListAllFeatureNames(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list features: %w", err)
		}
		sort.Strings(names)
		return names, nil
	}

	roleID, ok := actor.RoleID()
	if !ok || roleID == uuid.Nil {
		return []string{}, nil
	}

	roleNames, err := s.repo.ListRolePermissionFeatureNames(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}

	permissions := make(map[string]bool, len(roleNames))
	for _, name := range roleNames {
		permissions[name] = true
	}

	overrides, err := s.repo.ListUserOverrides(ctx, actor.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list user overrides: %w", err)
	}
	for _, override := range overrides {
		if override.Granted {
			permissions[override.FeatureName] = true
		} else {
			delete(permissions, override.FeatureName)
		}
	}

	names := make([]string, 0, len(permissions))
	for name := range permissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// EffectivePermissionsForUser resolves the user's profile fresh and computes
// the effective set. A missing profile yields the empty set, deny-by-default.
func (s *PermissionService) EffectivePermissionsForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	actor, err := s.ResolveActor(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return s.EffectivePermissions(ctx, actor)
}

// HasPermission answers a point query for one feature. Platform admins pass
// unconditionally, even for feature names that do not exist. Any lookup
// failure denies: the caller cannot distinguish a store error from an
// explicit denial, and must not.
func (s *PermissionService) HasPermission(ctx context.Context, actor Actor, featureName string) bool {
	if actor.IsPlatformAdmin() {
		return true
	}

	roleID, ok := actor.RoleID()
	if !ok || roleID == uuid.Nil {
		return false
	}

	overrides, err := s.repo.ListUserOverrides(ctx, actor.ID())
	if err != nil {
		slog.Error("Permission check failed listing overrides, denying", "userId", actor.ID(), "feature", featureName, "error", err)
		return false
	}
	for _, override := range overrides {
		if override.FeatureName == featureName {
			return override.Granted
		}
	}

	roleNames, err := s.repo.ListRolePermissionFeatureNames(ctx, roleID)
	if err != nil {
		slog.Error("Permission check failed listing role permissions, denying", "roleId", roleID, "feature", featureName, "error", err)
		return false
	}
	for _, name := range roleNames {
		if name == featureName {
			return true
		}
	}
	return false
}

// HasPermissionForUser resolves the user's profile fresh and checks one
// feature. A missing profile or any store failure denies.
func (s *PermissionService) HasPermissionForUser(ctx context.Context, userID uuid.UUID, featureName string) bool {
	actor, err := s.ResolveActor(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			slog.Error("Permission check failed resolving actor, denying", "userId", userID, "feature", featureName, "error", err)
		}
		return false
	}
	return s.HasPermission(ctx, actor, featureName)
}
