package impersonate

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-authz/pkg/audit"
	"github.com/tendant/simple-authz/pkg/authz"
	"github.com/tendant/simple-authz/pkg/errors"
)

// Service manages impersonation sessions: a platform admin temporarily acting
// as one organization user. Per impersonator at most one session is active;
// starting a new one implicitly ends the old one.
type Service struct {
	repo    SessionRepository
	auditor *audit.Service
	now     func() time.Time
}

// NewService creates a new impersonation service
func NewService(repo SessionRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		now:     time.Now,
	}
}

// WithClock overrides the time source, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start begins impersonating the target user. Only platform admins may
// impersonate. The target must belong to the given organization. Any session
// the impersonator already has active is ended as part of the same store
// operation that creates the new one.
//
// Starting while a session is already active silently switches targets rather
// than rejecting; callers relying on an explicit end-then-start sequence get
// the same end state either way.
func (s *Service) Start(ctx context.Context, impersonator authz.Actor, targetUserID, orgID uuid.UUID) (Session, Target, error) {
	if !impersonator.IsPlatformAdmin() {
		return Session{}, Target{}, errors.New(errors.ErrCodePlatformAdminRequired, "platform admin access required")
	}
	if targetUserID == uuid.Nil {
		return Session{}, Target{}, errors.MissingRequired("target user id")
	}
	if orgID == uuid.Nil {
		return Session{}, Target{}, errors.MissingRequired("organization id")
	}

	// Verify the target before touching any session state
	target, err := s.repo.GetTarget(ctx, targetUserID)
	if err != nil {
		if err == ErrTargetNotFound {
			return Session{}, Target{}, errors.NotFound("target user", targetUserID)
		}
		return Session{}, Target{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to resolve impersonation target")
	}
	if target.OrganizationID != orgID {
		return Session{}, Target{}, errors.NotFound("target user in organization", targetUserID).
			WithDetail("organization_id", orgID)
	}

	session, err := s.repo.StartSession(ctx, impersonator.ID(), targetUserID, orgID, s.now().UTC())
	if err != nil {
		return Session{}, Target{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to create impersonation session")
	}

	targetID := target.ID
	if err := s.auditor.Record(ctx, audit.RecordParams{
		UserID:     impersonator.ID(),
		UserName:   impersonator.DisplayName(),
		Action:     audit.ActionImpersonationStarted,
		EntityType: "user",
		EntityID:   &targetID,
		Metadata: map[string]interface{}{
			"target_user_email":        target.Email,
			"target_organization":      target.OrganizationName,
			"impersonation_session_id": session.ID.String(),
		},
	}); err != nil {
		slog.Error("Failed to audit impersonation start", "sessionId", session.ID, "error", err)
	}

	return session, target, nil
}

// End deactivates every active session owned by the impersonator. Ending with
// no active session is a successful no-op.
func (s *Service) End(ctx context.Context, impersonator authz.Actor) error {
	ended, err := s.repo.EndSessions(ctx, impersonator.ID(), s.now().UTC())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to end impersonation")
	}
	slog.Info("Impersonation ended", "impersonatorId", impersonator.ID(), "sessionsEnded", ended)

	if err := s.auditor.Record(ctx, audit.RecordParams{
		UserID:     impersonator.ID(),
		UserName:   impersonator.DisplayName(),
		Action:     audit.ActionImpersonationEnded,
		EntityType: "session",
	}); err != nil {
		slog.Error("Failed to audit impersonation end", "impersonatorId", impersonator.ID(), "error", err)
	}
	return nil
}

// ActiveSession returns the impersonator's active session, if any
func (s *Service) ActiveSession(ctx context.Context, impersonatorID uuid.UUID) (*Session, error) {
	sessions, err := s.repo.FindActiveSessions(ctx, impersonatorID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to find active sessions")
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}
