package iam

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-authz/pkg/audit"
	"github.com/tendant/simple-authz/pkg/authz"
	"github.com/tendant/simple-authz/pkg/errors"
)

func newTestService(t *testing.T) (*IamService, *InMemoryIamRepository, *audit.InMemoryAuditRepository) {
	t.Helper()
	repo := NewInMemoryIamRepository()
	auditRepo := audit.NewInMemoryAuditRepository()
	service := NewIamService(repo, audit.NewService(auditRepo))
	return service, repo, auditRepo
}

func TestCreateUserInActorOrganization(t *testing.T) {
	ctx := context.Background()
	service, repo, auditRepo := newTestService(t)

	orgID := uuid.New()
	role := Role{ID: uuid.New(), Name: "Agent"}
	repo.PutRole(role)

	actor := authz.OrgUser(uuid.New(), "Org Admin", orgID, uuid.New())
	otherOrg := uuid.New()
	user, err := service.CreateUser(ctx, actor, CreateUserParams{
		Email:    "new@acme.test",
		FullName: "New User",
		RoleID:   &role.ID,
		// An org user cannot place users elsewhere
		OrganizationID: &otherOrg,
	})
	require.NoError(t, err)
	require.NotNil(t, user.OrganizationID)
	assert.Equal(t, orgID, *user.OrganizationID)
	assert.Equal(t, "new@acme.test", user.Email)

	entries := auditRepo.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUserCreated, entries[0].Action)
	assert.Equal(t, actor.ID(), entries[0].UserID)
	assert.Equal(t, "new@acme.test", entries[0].Metadata["email"])
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newTestService(t)

	role := Role{ID: uuid.New(), Name: "Agent"}
	repo.PutRole(role)
	actor := authz.OrgUser(uuid.New(), "Org Admin", uuid.New(), uuid.New())

	_, err := service.CreateUser(ctx, actor, CreateUserParams{RoleID: &role.ID})
	assert.Equal(t, errors.ErrCodeMissingRequired, errors.GetCode(err))

	_, err = service.CreateUser(ctx, actor, CreateUserParams{Email: "new@acme.test"})
	assert.Equal(t, errors.ErrCodeMissingRequired, errors.GetCode(err))

	unknownRole := uuid.New()
	_, err = service.CreateUser(ctx, actor, CreateUserParams{Email: "new@acme.test", RoleID: &unknownRole})
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
}

func TestGetUserTenantVisibility(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newTestService(t)

	orgA := uuid.New()
	orgB := uuid.New()
	user := User{ID: uuid.New(), Email: "b@acme.test", OrganizationID: &orgB}
	repo.PutUser(user)

	outsider := authz.OrgUser(uuid.New(), "Outsider", orgA, uuid.New())
	_, err := service.GetUser(ctx, outsider, user.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))

	insider := authz.OrgUser(uuid.New(), "Insider", orgB, uuid.New())
	got, err := service.GetUser(ctx, insider, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")
	got, err = service.GetUser(ctx, admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestFindUsersLockedToActorOrganization(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newTestService(t)

	orgA := uuid.New()
	orgB := uuid.New()
	repo.PutUser(User{ID: uuid.New(), Email: "a@acme.test", OrganizationID: &orgA})
	repo.PutUser(User{ID: uuid.New(), Email: "b@acme.test", OrganizationID: &orgB})

	viewer := authz.OrgUser(uuid.New(), "Viewer", orgA, uuid.New())
	// The passed org is ignored for org users
	users, err := service.FindUsers(ctx, viewer, orgB)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@acme.test", users[0].Email)

	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")
	users, err = service.FindUsers(ctx, admin, orgB)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "b@acme.test", users[0].Email)

	_, err = service.FindUsers(ctx, admin, uuid.Nil)
	assert.Equal(t, errors.ErrCodeMissingRequired, errors.GetCode(err))
}

func TestSetUserOverrides(t *testing.T) {
	ctx := context.Background()
	service, repo, auditRepo := newTestService(t)

	orgID := uuid.New()
	target := User{ID: uuid.New(), Email: "target@acme.test", OrganizationID: &orgID}
	repo.PutUser(target)
	grantFeature := Feature{ID: uuid.New(), Name: "campaign.create"}
	revokeFeature := Feature{ID: uuid.New(), Name: "project.create"}
	repo.PutFeature(grantFeature)
	repo.PutFeature(revokeFeature)

	actor := authz.OrgUser(uuid.New(), "Org Admin", orgID, uuid.New())
	err := service.SetUserOverrides(ctx, actor, target.ID, []OverrideParams{
		{FeatureName: "campaign.create", Granted: true},
		{FeatureName: "project.create", Granted: false},
	})
	require.NoError(t, err)

	overrides := repo.Overrides(target.ID)
	require.Len(t, overrides, 2)
	assert.True(t, overrides[grantFeature.ID])
	assert.False(t, overrides[revokeFeature.ID])

	// Upsert replaces the prior row instead of stacking a second one
	err = service.SetUserOverrides(ctx, actor, target.ID, []OverrideParams{
		{FeatureName: "campaign.create", Granted: false},
	})
	require.NoError(t, err)
	overrides = repo.Overrides(target.ID)
	require.Len(t, overrides, 2)
	assert.False(t, overrides[grantFeature.ID])

	entries := auditRepo.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionUserPermissionsUpdated, entries[0].Action)
	assert.Equal(t, &target.ID, entries[0].EntityID)
}

func TestSetUserOverridesUnknownFeatureLeavesNoWrites(t *testing.T) {
	ctx := context.Background()
	service, repo, auditRepo := newTestService(t)

	orgID := uuid.New()
	target := User{ID: uuid.New(), Email: "target@acme.test", OrganizationID: &orgID}
	repo.PutUser(target)
	repo.PutFeature(Feature{ID: uuid.New(), Name: "project.create"})

	actor := authz.OrgUser(uuid.New(), "Org Admin", orgID, uuid.New())

	// The known feature comes first; the unknown one must still reject the
	// whole batch before any row is written
	err := service.SetUserOverrides(ctx, actor, target.ID, []OverrideParams{
		{FeatureName: "project.create", Granted: true},
		{FeatureName: "no.such.feature", Granted: true},
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
	assert.Empty(t, repo.Overrides(target.ID))
	assert.Empty(t, auditRepo.Entries())
}

func TestSetUserOverridesRejections(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newTestService(t)

	orgID := uuid.New()
	target := User{ID: uuid.New(), Email: "target@acme.test", OrganizationID: &orgID}
	repo.PutUser(target)
	actor := authz.OrgUser(uuid.New(), "Org Admin", orgID, uuid.New())

	err := service.SetUserOverrides(ctx, actor, target.ID, nil)
	assert.Equal(t, errors.ErrCodeMissingRequired, errors.GetCode(err))

	err = service.SetUserOverrides(ctx, actor, target.ID, []OverrideParams{
		{FeatureName: "no.such.feature", Granted: true},
	})
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))

	// Cross-tenant targets look like missing users
	outsider := authz.OrgUser(uuid.New(), "Outsider", uuid.New(), uuid.New())
	err = service.SetUserOverrides(ctx, outsider, target.ID, []OverrideParams{
		{FeatureName: "campaign.create", Granted: true},
	})
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
}
