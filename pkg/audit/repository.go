package audit

import (
	"context"

	"github.com/google/uuid"
)

// AuditRepository defines the append-only store for audit entries
type AuditRepository interface {
	// InsertEntry appends one entry
	InsertEntry(ctx context.Context, entry Entry) error

	// ListAll returns the newest entries across all organizations
	ListAll(ctx context.Context, limit int32) ([]Entry, error)

	// ListByOrganization returns the newest entries written by users of one
	// organization
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int32) ([]Entry, error)
}
