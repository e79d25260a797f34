package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryAuditRepository implements AuditRepository using in-memory storage.
// Intended for tests and local development.
type InMemoryAuditRepository struct {
	mu      sync.RWMutex
	entries []Entry
	userOrg map[uuid.UUID]uuid.UUID // userID -> organizationID, for tenant scoping
}

// NewInMemoryAuditRepository creates a new in-memory audit repository
func NewInMemoryAuditRepository() *InMemoryAuditRepository {
	return &InMemoryAuditRepository{
		userOrg: make(map[uuid.UUID]uuid.UUID),
	}
}

// SetUserOrganization registers which organization a user belongs to, so
// ListByOrganization can scope entries the way the relational store's join does
func (r *InMemoryAuditRepository) SetUserOrganization(userID, orgID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userOrg[userID] = orgID
}

// InsertEntry appends one entry
func (r *InMemoryAuditRepository) InsertEntry(ctx context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// ListAll returns the newest entries across all organizations
func (r *InMemoryAuditRepository) ListAll(ctx context.Context, limit int32) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newestFirst(r.entries, limit), nil
}

// ListByOrganization returns the newest entries written by users of one organization
func (r *InMemoryAuditRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit int32) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var scoped []Entry
	for _, entry := range r.entries {
		if r.userOrg[entry.UserID] == orgID {
			scoped = append(scoped, entry)
		}
	}
	return newestFirst(scoped, limit), nil
}

// Entries returns a copy of every stored entry, for tests
func (r *InMemoryAuditRepository) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func newestFirst(entries []Entry, limit int32) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if int32(len(sorted)) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
