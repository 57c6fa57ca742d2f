// Package auditrepo is the append-only audit table. Rows are inserted and only
// ever touched again to stamp exported_at once copied to the archive.
package auditrepo

import (
	"time"

	"booking/internal/adapters/out/postgres/pgtypes"
	"booking/internal/core/domain/model/audit"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EntryDTO struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	EventType  string            `gorm:"size:48;index"`
	ActorID    string            `gorm:"size:64"`
	ActorRole  string            `gorm:"size:16"`
	Action     string            `gorm:"size:64"`
	EntityType string            `gorm:"size:32;index:ix_audit_entity,priority:1"`
	EntityID   string            `gorm:"size:64;index:ix_audit_entity,priority:2"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime:false;index"`
	ExportedAt *time.Time        `gorm:"index"`
}

func (EntryDTO) TableName() string {
	return "audit_entries"
}

func fromDomain(e *audit.Entry) EntryDTO {
	return EntryDTO{
		ID:         e.ID().Bytes(),
		EventType:  string(e.EventType()),
		ActorID:    e.ActorID(),
		ActorRole:  e.ActorRole(),
		Action:     e.Action(),
		EntityType: e.EntityType(),
		EntityID:   e.EntityID(),
		Metadata:   datatypes.JSONMap(e.Metadata()),
		CreatedAt:  e.CreatedAt(),
		ExportedAt: e.ExportedAt(),
	}
}

func toDomain(dto EntryDTO) (*audit.Entry, error) {
	id, err := pgtypes.UUID(dto.ID)
	if err != nil {
		return nil, err
	}
	return audit.RestoreEntry(id, audit.Record{
		EventType:  audit.EventType(dto.EventType),
		ActorID:    dto.ActorID,
		ActorRole:  dto.ActorRole,
		Action:     dto.Action,
		EntityType: dto.EntityType,
		EntityID:   dto.EntityID,
		Metadata:   map[string]any(dto.Metadata),
	}, dto.CreatedAt, dto.ExportedAt)
}
