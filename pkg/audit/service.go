package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-authz/pkg/authz"
	"github.com/tendant/simple-authz/pkg/errors"
)

// Service records and lists audit entries.
//
// Most entries are side effects of an already-successful operation: a failed
// write is logged and swallowed so the primary action's success stands.
// Actions named in requiredActions are part of the caller's completion
// contract and a failed write for one of those is returned to the caller.
type Service struct {
	repo            AuditRepository
	requiredActions map[string]bool
	now             func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithRequiredActions marks the given actions as load-bearing: a failed audit
// write for one of them is surfaced to the caller instead of swallowed
func WithRequiredActions(actions map[string]bool) Option {
	return func(s *Service) {
		s.requiredActions = actions
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new audit service
func NewService(repo AuditRepository, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		requiredActions: map[string]bool{},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record appends one immutable audit entry. Returns an error only when the
// action is load-bearing; otherwise a failed write is logged internally and
// the caller proceeds.
func (s *Service) Record(ctx context.Context, params RecordParams) error {
	entry := Entry{
		ID:         uuid.New(),
		UserID:     params.UserID,
		UserName:   params.UserName,
		Action:     params.Action,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		Metadata:   params.Metadata,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.repo.InsertEntry(ctx, entry); err != nil {
		if s.requiredActions[params.Action] {
			return errors.Wrapf(err, errors.ErrCodeAuditWriteFailed,
				"failed to record required audit entry %s", params.Action)
		}
		slog.Error("Failed to record audit entry", "action", params.Action, "userId", params.UserID, "error", err)
		return nil
	}
	return nil
}

// List returns the newest entries visible to the actor. Organization users see
// only entries written by users of their own organization; platform admins see
// every organization.
func (s *Service) List(ctx context.Context, actor authz.Actor, limit int32) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	if actor.IsPlatformAdmin() {
		entries, err := s.repo.ListAll(ctx, limit)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list audit entries")
		}
		return entries, nil
	}

	orgID, ok := actor.OrganizationID()
	if !ok || orgID == uuid.Nil {
		return []Entry{}, nil
	}
	entries, err := s.repo.ListByOrganization(ctx, orgID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list audit entries")
	}
	return entries, nil
}
