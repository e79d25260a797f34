package impersonate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-authz/pkg/audit"
	"github.com/tendant/simple-authz/pkg/authz"
	"github.com/tendant/simple-authz/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *InMemorySessionRepository, *audit.InMemoryAuditRepository) {
	t.Helper()
	repo := NewInMemorySessionRepository()
	auditRepo := audit.NewInMemoryAuditRepository()
	service := NewService(repo, audit.NewService(auditRepo))
	return service, repo, auditRepo
}

func seedTarget(repo *InMemorySessionRepository, orgID uuid.UUID, email string) Target {
	target := Target{
		ID:               uuid.New(),
		Email:            email,
		Name:             "Target User",
		RoleName:         "Client Super Admin",
		OrganizationID:   orgID,
		OrganizationName: "Acme Realty",
	}
	repo.PutTarget(target)
	return target
}

func TestStartCreatesActiveSession(t *testing.T) {
	ctx := context.Background()
	service, repo, auditRepo := newTestService(t)

	orgID := uuid.New()
	target := seedTarget(repo, orgID, "target@acme.test")
	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")

	session, got, err := service.Start(ctx, admin, target.ID, orgID)
	require.NoError(t, err)
	assert.Equal(t, target, got)
	assert.True(t, session.IsActive)
	assert.Equal(t, admin.ID(), session.ImpersonatorUserID)
	assert.Equal(t, target.ID, session.ImpersonatedUserID)
	assert.Equal(t, orgID, session.ImpersonatedOrgID)
	assert.Nil(t, session.EndedAt)

	entries := auditRepo.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionImpersonationStarted, entries[0].Action)
	assert.Equal(t, admin.ID(), entries[0].UserID)
	assert.Equal(t, target.Email, entries[0].Metadata["target_user_email"])
}

func TestStartRequiresPlatformAdmin(t *testing.T) {
	ctx := context.Background()
	service, repo, auditRepo := newTestService(t)

	orgID := uuid.New()
	target := seedTarget(repo, orgID, "target@acme.test")
	orgUser := authz.OrgUser(uuid.New(), "Org User", orgID, uuid.New())

	_, _, err := service.Start(ctx, orgUser, target.ID, orgID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePlatformAdminRequired, errors.GetCode(err))
	assert.Empty(t, repo.Sessions())
	assert.Empty(t, auditRepo.Entries())
}

func TestStartValidatesInput(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)
	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")

	_, _, err := service.Start(ctx, admin, uuid.Nil, uuid.New())
	assert.Equal(t, errors.ErrCodeMissingRequired, errors.GetCode(err))

	_, _, err = service.Start(ctx, admin, uuid.New(), uuid.Nil)
	assert.Equal(t, errors.ErrCodeMissingRequired, errors.GetCode(err))
}

func TestStartUnknownTarget(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newTestService(t)
	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")

	_, _, err := service.Start(ctx, admin, uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
	assert.Empty(t, repo.Sessions())
}

func TestStartOrganizationMismatch(t *testing.T) {
	ctx := context.Background()
	service, repo, auditRepo := newTestService(t)

	target := seedTarget(repo, uuid.New(), "target@acme.test")
	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")

	// Valid target, wrong organization: rejected with no state touched
	_, _, err := service.Start(ctx, admin, target.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
	assert.Empty(t, repo.Sessions())
	assert.Empty(t, auditRepo.Entries())
}

func TestStartSwitchesActiveSession(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newTestService(t)

	orgID := uuid.New()
	first := seedTarget(repo, orgID, "first@acme.test")
	second := seedTarget(repo, orgID, "second@acme.test")
	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")

	firstSession, _, err := service.Start(ctx, admin, first.ID, orgID)
	require.NoError(t, err)

	// Starting again without ending switches the target
	secondSession, _, err := service.Start(ctx, admin, second.ID, orgID)
	require.NoError(t, err)

	active, err := service.ActiveSession(ctx, admin.ID())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, secondSession.ID, active.ID)
	assert.Equal(t, second.ID, active.ImpersonatedUserID)

	// The first session is ended, not deleted
	for _, session := range repo.Sessions() {
		if session.ID == firstSession.ID {
			assert.False(t, session.IsActive)
			assert.NotNil(t, session.EndedAt)
		}
	}
}

func TestEndDeactivatesSession(t *testing.T) {
	ctx := context.Background()
	service, repo, auditRepo := newTestService(t)

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	service.WithClock(func() time.Time { return started })

	orgID := uuid.New()
	target := seedTarget(repo, orgID, "target@acme.test")
	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")

	_, _, err := service.Start(ctx, admin, target.ID, orgID)
	require.NoError(t, err)

	ended := started.Add(15 * time.Minute)
	service.WithClock(func() time.Time { return ended })
	require.NoError(t, service.End(ctx, admin))

	active, err := service.ActiveSession(ctx, admin.ID())
	require.NoError(t, err)
	assert.Nil(t, active)

	sessions := repo.Sessions()
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].IsActive)
	require.NotNil(t, sessions[0].EndedAt)
	assert.Equal(t, ended, *sessions[0].EndedAt)

	entries := auditRepo.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionImpersonationEnded, entries[1].Action)
}

func TestEndWithoutActiveSession(t *testing.T) {
	ctx := context.Background()
	service, repo, auditRepo := newTestService(t)
	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")

	// Ending with nothing active is a successful no-op, still audited
	require.NoError(t, service.End(ctx, admin))
	require.NoError(t, service.End(ctx, admin))
	assert.Empty(t, repo.Sessions())

	entries := auditRepo.Entries()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, audit.ActionImpersonationEnded, entry.Action)
	}
}
