package impersonate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSessionRepository implements SessionRepository against PostgreSQL
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgreSQL-based session repository
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{
		pool: pool,
	}
}

// GetTarget resolves a target user with role and organization names
func (r *PostgresSessionRepository) GetTarget(ctx context.Context, userID uuid.UUID) (Target, error) {
	const query = `
		SELECT p.id, p.email, COALESCE(p.full_name, ''), COALESCE(r.name, ''), o.id, o.name
		FROM profiles p
		JOIN organizations o ON o.id = p.organization_id
		LEFT JOIN roles r ON r.id = p.role_id
		WHERE p.id = $1`

	var target Target
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&target.ID,
		&target.Email,
		&target.Name,
		&target.RoleName,
		&target.OrganizationID,
		&target.OrganizationName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Target{}, ErrTargetNotFound
		}
		return Target{}, fmt.Errorf("failed to get impersonation target: %w", err)
	}
	return target, nil
}

// FindActiveSessions returns every active session owned by an impersonator
func (r *PostgresSessionRepository) FindActiveSessions(ctx context.Context, impersonatorID uuid.UUID) ([]Session, error) {
	const query = `
		SELECT id, impersonator_user_id, impersonated_user_id, impersonated_org_id, is_active, started_at, ended_at
		FROM impersonation_sessions
		WHERE impersonator_user_id = $1 AND is_active = true`

	rows, err := r.pool.Query(ctx, query, impersonatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		err := rows.Scan(
			&session.ID,
			&session.ImpersonatorUserID,
			&session.ImpersonatedUserID,
			&session.ImpersonatedOrgID,
			&session.IsActive,
			&session.StartedAt,
			&session.EndedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// StartSession deactivates every active session owned by the impersonator and
// inserts a new active one, both inside one transaction so a crash in between
// cannot leave the impersonator with zero or two active sessions.
func (r *PostgresSessionRepository) StartSession(ctx context.Context, impersonatorID, targetUserID, orgID uuid.UUID, now time.Time) (Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const deactivate = `
		UPDATE impersonation_sessions
		SET is_active = false, ended_at = $2
		WHERE impersonator_user_id = $1 AND is_active = true`
	if _, err := tx.Exec(ctx, deactivate, impersonatorID, now); err != nil {
		return Session{}, fmt.Errorf("failed to deactivate prior sessions: %w", err)
	}

	const insert = `
		INSERT INTO impersonation_sessions (id, impersonator_user_id, impersonated_user_id, impersonated_org_id, is_active, started_at)
		VALUES ($1, $2, $3, $4, true, $5)
		RETURNING id, impersonator_user_id, impersonated_user_id, impersonated_org_id, is_active, started_at, ended_at`

	var session Session
	err = tx.QueryRow(ctx, insert, uuid.New(), impersonatorID, targetUserID, orgID, now).Scan(
		&session.ID,
		&session.ImpersonatorUserID,
		&session.ImpersonatedUserID,
		&session.ImpersonatedOrgID,
		&session.IsActive,
		&session.StartedAt,
		&session.EndedAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Session{}, fmt.Errorf("failed to commit session start: %w", err)
	}
	return session, nil
}

// EndSessions deactivates every active session owned by the impersonator
func (r *PostgresSessionRepository) EndSessions(ctx context.Context, impersonatorID uuid.UUID, endedAt time.Time) (int, error) {
	const query = `
		UPDATE impersonation_sessions
		SET is_active = false, ended_at = $2
		WHERE impersonator_user_id = $1 AND is_active = true`

	tag, err := r.pool.Exec(ctx, query, impersonatorID, endedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to end sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
