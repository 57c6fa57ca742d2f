package ports

import (
	"context"
	"time"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
)

// AuditRepository is the append-only audit store.
type AuditRepository interface {
	// Append inserts one entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *audit.Entry) error

	// ListByEntity returns the entries of one entity, oldest first.
	ListByEntity(ctx context.Context, entityID string) ([]*audit.Entry, error)

	// ListUnexported returns up to limit entries not yet copied to the archive, oldest first.
	ListUnexported(ctx context.Context, limit int) ([]*audit.Entry, error)

	// MarkExported stamps the archive marker on the given entries.
	MarkExported(ctx context.Context, ids []kernel.UUID, at time.Time) error
}

// AuditArchive is the long-term copy of the audit trail.
type AuditArchive interface {
	// Put stores an entry. Storing the same entry twice is not an error.
	Put(ctx context.Context, entry *audit.Entry) error
}
