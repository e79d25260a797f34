package impersonate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTargetNotFound is returned when the impersonation target has no profile
var ErrTargetNotFound = errors.New("impersonation target not found")

// SessionRepository defines the store for impersonation sessions.
//
// StartSession carries the whole deactivate-then-insert pair so implementations
// can make it atomic: a crash in between must not leave the impersonator with
// zero active sessions while reporting success, nor with two active ones.
type SessionRepository interface {
	// GetTarget resolves a target user with role and organization names,
	// or ErrTargetNotFound
	GetTarget(ctx context.Context, userID uuid.UUID) (Target, error)

	// FindActiveSessions returns every active session owned by an impersonator
	FindActiveSessions(ctx context.Context, impersonatorID uuid.UUID) ([]Session, error)

	// StartSession atomically deactivates every active session owned by the
	// impersonator and inserts a new active one
	StartSession(ctx context.Context, impersonatorID, targetUserID, orgID uuid.UUID, now time.Time) (Session, error)

	// EndSessions deactivates every active session owned by the impersonator
	// and returns how many were active
	EndSessions(ctx context.Context, impersonatorID uuid.UUID, endedAt time.Time) (int, error)
}
