package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAuditRepository implements AuditRepository against PostgreSQL.
// The audit_logs table is append-only: this repository issues no UPDATE or
// DELETE statements.
type PostgresAuditRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditRepository creates a new PostgreSQL-based audit repository
func NewPostgresAuditRepository(pool *pgxpool.Pool) *PostgresAuditRepository {
	return &PostgresAuditRepository{
		pool: pool,
	}
}

// InsertEntry appends one entry
func (r *PostgresAuditRepository) InsertEntry(ctx context.Context, entry Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	const query = `
		INSERT INTO audit_logs (id, user_id, user_name, action, entity_type, entity_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.UserName,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListAll returns the newest entries across all organizations
func (r *PostgresAuditRepository) ListAll(ctx context.Context, limit int32) ([]Entry, error) {
	const query = `
		SELECT id, user_id, user_name, action, entity_type, entity_id, metadata, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListByOrganization returns the newest entries written by users of one organization
func (r *PostgresAuditRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int32) ([]Entry, error) {
	const query = `
		SELECT a.id, a.user_id, a.user_name, a.action, a.entity_type, a.entity_id, a.metadata, a.created_at
		FROM audit_logs a
		JOIN profiles p ON p.id = a.user_id
		WHERE p.organization_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var metadata []byte
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.UserName,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
