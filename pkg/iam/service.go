package iam

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tendant/simple-authz/pkg/audit"
	"github.com/tendant/simple-authz/pkg/authz"
	"github.com/tendant/simple-authz/pkg/errors"
)

// IamService provides tenant IAM operations: user profiles, roles, features,
// and per-user permission overrides. Every list over organization-scoped
// records is filtered to the actor's organization unless the actor is a
// platform admin.
type IamService struct {
	repo    IamRepository
	auditor *audit.Service
}

// NewIamService creates a new IAM service
func NewIamService(repo IamRepository, auditor *audit.Service) *IamService {
	return &IamService{
		repo:    repo,
		auditor: auditor,
	}
}

// GetUser retrieves one user visible to the actor
func (s *IamService) GetUser(ctx context.Context, actor authz.Actor, userID uuid.UUID) (User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if err == ErrUserNotFound {
			return User{}, errors.NotFound("user", userID)
		}
		return User{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to get user")
	}
	if user.OrganizationID != nil && !actor.CanAccessOrganization(*user.OrganizationID) {
		return User{}, errors.NotFound("user", userID)
	}
	return user, nil
}

// FindUsers lists the users of the actor's organization, newest first.
// Platform admins pass the organization to list explicitly.
func (s *IamService) FindUsers(ctx context.Context, actor authz.Actor, orgID uuid.UUID) ([]UserWithRole, error) {
	if actorOrg, ok := actor.OrganizationID(); ok {
		// Organization users may only list their own organization
		orgID = actorOrg
	}
	if orgID == uuid.Nil {
		return nil, errors.MissingRequired("organization id")
	}

	users, err := s.repo.FindUsersByOrganization(ctx, orgID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list users")
	}
	return users, nil
}

// CreateUser creates a user profile inside the actor's organization and
// records a user.created audit entry
func (s *IamService) CreateUser(ctx context.Context, actor authz.Actor, params CreateUserParams) (User, error) {
	if params.Email == "" {
		return User{}, errors.MissingRequired("email")
	}
	if params.RoleID == nil {
		return User{}, errors.MissingRequired("role id")
	}

	// New users land in the creating actor's organization unless a platform
	// admin placed them explicitly
	if actorOrg, ok := actor.OrganizationID(); ok {
		params.OrganizationID = &actorOrg
	}
	if params.OrganizationID == nil {
		return User{}, errors.MissingRequired("organization id")
	}

	if _, err := s.repo.GetRole(ctx, *params.RoleID); err != nil {
		if err == ErrRoleNotFound {
			return User{}, errors.NotFound("role", *params.RoleID)
		}
		return User{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to get role")
	}

	user, err := s.repo.CreateUser(ctx, params)
	if err != nil {
		return User{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to create user")
	}

	userID := user.ID
	if err := s.auditor.Record(ctx, audit.RecordParams{
		UserID:     actor.ID(),
		UserName:   actor.DisplayName(),
		Action:     audit.ActionUserCreated,
		EntityType: "user",
		EntityID:   &userID,
		Metadata: map[string]interface{}{
			"email":   user.Email,
			"role_id": params.RoleID.String(),
		},
	}); err != nil {
		slog.Error("Failed to audit user creation", "userId", user.ID, "error", err)
	}

	return user, nil
}

// SetUserOverrides replaces the per-user overrides for the given features and
// records a user.permissions_updated audit entry. The target must be visible
// to the actor.
func (s *IamService) SetUserOverrides(ctx context.Context, actor authz.Actor, targetUserID uuid.UUID, overrides []OverrideParams) error {
	if len(overrides) == 0 {
		return errors.MissingRequired("overrides")
	}

	target, err := s.GetUser(ctx, actor, targetUserID)
	if err != nil {
		return err
	}

	// Resolve every feature before the first write so an unknown name rejects
	// the whole batch instead of leaving it half-applied
	featureIDs := make([]uuid.UUID, 0, len(overrides))
	for _, override := range overrides {
		feature, err := s.repo.GetFeatureByName(ctx, override.FeatureName)
		if err != nil {
			if err == ErrFeatureNotFound {
				return errors.NotFound("feature", override.FeatureName)
			}
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to get feature")
		}
		featureIDs = append(featureIDs, feature.ID)
	}

	applied := make([]map[string]interface{}, 0, len(overrides))
	for i, override := range overrides {
		if err := s.repo.UpsertUserOverride(ctx, target.ID, featureIDs[i], override.Granted); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to upsert user override")
		}
		applied = append(applied, map[string]interface{}{
			"feature": override.FeatureName,
			"granted": override.Granted,
		})
	}

	targetID := target.ID
	if err := s.auditor.Record(ctx, audit.RecordParams{
		UserID:     actor.ID(),
		UserName:   actor.DisplayName(),
		Action:     audit.ActionUserPermissionsUpdated,
		EntityType: "user",
		EntityID:   &targetID,
		Metadata: map[string]interface{}{
			"overrides": applied,
		},
	}); err != nil {
		slog.Error("Failed to audit permission update", "targetUserId", target.ID, "error", err)
	}
	return nil
}

// FindRoles lists every role
func (s *IamService) FindRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.FindRoles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list roles")
	}
	return roles, nil
}

// FindFeatures lists every feature
func (s *IamService) FindFeatures(ctx context.Context) ([]Feature, error) {
	features, err := s.repo.FindFeatures(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list features")
	}
	return features, nil
}
