package impersonate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemorySessionRepository implements SessionRepository using in-memory
// storage. Intended for tests and local development. The mutex spans the
// deactivate+insert pair in StartSession, giving the same atomicity the
// PostgreSQL implementation gets from a transaction.
type InMemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	targets  map[uuid.UUID]Target
}

// NewInMemorySessionRepository creates a new in-memory session repository
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[uuid.UUID]*Session),
		targets:  make(map[uuid.UUID]Target),
	}
}

// PutTarget registers a resolvable impersonation target
func (r *InMemorySessionRepository) PutTarget(target Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[target.ID] = target
}

// GetTarget resolves a target user, or ErrTargetNotFound
func (r *InMemorySessionRepository) GetTarget(ctx context.Context, userID uuid.UUID) (Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.targets[userID]
	if !ok {
		return Target{}, ErrTargetNotFound
	}
	return target, nil
}

// FindActiveSessions returns every active session owned by an impersonator
func (r *InMemorySessionRepository) FindActiveSessions(ctx context.Context, impersonatorID uuid.UUID) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []Session
	for _, session := range r.sessions {
		if session.ImpersonatorUserID == impersonatorID && session.IsActive {
			active = append(active, *session)
		}
	}
	return active, nil
}

// StartSession atomically deactivates every active session owned by the
// impersonator and inserts a new active one
func (r *InMemorySessionRepository) StartSession(ctx context.Context, impersonatorID, targetUserID, orgID uuid.UUID, now time.Time) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.ImpersonatorUserID == impersonatorID && session.IsActive {
			endedAt := now
			session.IsActive = false
			session.EndedAt = &endedAt
		}
	}

	session := &Session{
		ID:                 uuid.New(),
		ImpersonatorUserID: impersonatorID,
		ImpersonatedUserID: targetUserID,
		ImpersonatedOrgID:  orgID,
		IsActive:           true,
		StartedAt:          now,
	}
	r.sessions[session.ID] = session
	return *session, nil
}

// EndSessions deactivates every active session owned by the impersonator
func (r *InMemorySessionRepository) EndSessions(ctx context.Context, impersonatorID uuid.UUID, endedAt time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ended := 0
	for _, session := range r.sessions {
		if session.ImpersonatorUserID == impersonatorID && session.IsActive {
			at := endedAt
			session.IsActive = false
			session.EndedAt = &at
			ended++
		}
	}
	return ended, nil
}

// Sessions returns a copy of every stored session, for tests
func (r *InMemorySessionRepository) Sessions() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, *session)
	}
	return out
}
