package queries

import (
	"context"

	"booking/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GetAuditTrailQueryHandler struct {
	db *gorm.DB
}

func NewGetAuditTrailQueryHandler(db *gorm.DB) GetAuditTrailQueryHandler {
	return GetAuditTrailQueryHandler{db: db}
}

// Handle returns the entity's rows oldest first. An unknown entity yields an empty trail.
func (h GetAuditTrailQueryHandler) Handle(ctx context.Context, query GetAuditTrailQuery) ([]AuditTrailEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	entries := make([]AuditTrailEntry, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id, event_type, actor_id, actor_role, action,
			entity_type, entity_id, metadata, created_at
		FROM audit_entries
		WHERE entity_id = ?
		ORDER BY created_at, id
		LIMIT ?
	`, query.EntityID(), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry    AuditTrailEntry
			id       uuid.UUID
			metadata datatypes.JSONMap
		)
		err = rows.Scan(
			&id, &entry.EventType, &entry.ActorID, &entry.ActorRole, &entry.Action,
			&entry.EntityType, &entry.EntityID, &metadata, &entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if entry.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		entry.Metadata = map[string]any(metadata)
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
