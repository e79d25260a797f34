package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-authz/pkg/authz"
	"github.com/tendant/simple-authz/pkg/errors"
)

// failingAuditRepository rejects every write
type failingAuditRepository struct{}

func (failingAuditRepository) InsertEntry(ctx context.Context, entry Entry) error {
	return fmt.Errorf("insert failed")
}

func (failingAuditRepository) ListAll(ctx context.Context, limit int32) ([]Entry, error) {
	return nil, fmt.Errorf("list failed")
}

func (failingAuditRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int32) ([]Entry, error) {
	return nil, fmt.Errorf("list failed")
}

func TestRecordAppendsEntry(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryAuditRepository()
	at := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	service := NewService(repo, WithClock(func() time.Time { return at }))

	userID := uuid.New()
	projectID := uuid.New()
	err := service.Record(ctx, RecordParams{
		UserID:     userID,
		UserName:   "Test User",
		Action:     ActionProjectCreate,
		EntityType: "project",
		EntityID:   &projectID,
		Metadata:   map[string]interface{}{"project_name": "Skyline Towers"},
	})
	require.NoError(t, err)

	entries := repo.Entries()
	require.Len(t, entries, 1)
	assert.NotEqual(t, uuid.Nil, entries[0].ID)
	assert.Equal(t, userID, entries[0].UserID)
	assert.Equal(t, ActionProjectCreate, entries[0].Action)
	assert.Equal(t, "project", entries[0].EntityType)
	assert.Equal(t, &projectID, entries[0].EntityID)
	assert.Equal(t, "Skyline Towers", entries[0].Metadata["project_name"])
	assert.Equal(t, at, entries[0].CreatedAt)
}

func TestRecordBestEffortSwallowsWriteFailure(t *testing.T) {
	ctx := context.Background()
	service := NewService(failingAuditRepository{})

	err := service.Record(ctx, RecordParams{
		UserID:   uuid.New(),
		UserName: "Test User",
		Action:   ActionProjectCreate,
	})
	assert.NoError(t, err)
}

func TestRecordRequiredActionSurfacesWriteFailure(t *testing.T) {
	ctx := context.Background()
	service := NewService(failingAuditRepository{},
		WithRequiredActions(map[string]bool{ActionOnboardingCompleted: true}))

	// Non-required actions stay best-effort
	err := service.Record(ctx, RecordParams{
		UserID: uuid.New(),
		Action: ActionProjectCreate,
	})
	assert.NoError(t, err)

	err = service.Record(ctx, RecordParams{
		UserID: uuid.New(),
		Action: ActionOnboardingCompleted,
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuditWriteFailed, errors.GetCode(err))
}

func TestListScopesToOrganization(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryAuditRepository()
	service := NewService(repo)

	orgA := uuid.New()
	orgB := uuid.New()
	userA := uuid.New()
	userB := uuid.New()
	repo.SetUserOrganization(userA, orgA)
	repo.SetUserOrganization(userB, orgB)

	require.NoError(t, service.Record(ctx, RecordParams{UserID: userA, Action: ActionProjectCreate}))
	require.NoError(t, service.Record(ctx, RecordParams{UserID: userB, Action: ActionCampaignCreate}))

	viewer := authz.OrgUser(uuid.New(), "Viewer", orgA, uuid.New())
	entries, err := service.List(ctx, viewer, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, userA, entries[0].UserID)

	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")
	entries, err = service.List(ctx, admin, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryAuditRepository()

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	current := base
	service := NewService(repo, WithClock(func() time.Time {
		current = current.Add(time.Minute)
		return current
	}))

	userID := uuid.New()
	actions := []string{ActionUserCreated, ActionProjectCreate, ActionCampaignCreate}
	for _, action := range actions {
		require.NoError(t, service.Record(ctx, RecordParams{UserID: userID, Action: action}))
	}

	admin := authz.PlatformAdmin(uuid.New(), "Platform Admin")
	entries, err := service.List(ctx, admin, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionCampaignCreate, entries[0].Action)
	assert.Equal(t, ActionProjectCreate, entries[1].Action)
}
