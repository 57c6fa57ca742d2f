package auditrepo

import (
	"context"
	"time"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormAuditRepository implements ports.AuditRepository using GORM.
type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	dto := fromDomain(entry)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListByEntity returns the trail of one entity in insertion order.
func (r *GormAuditRepository) ListByEntity(ctx context.Context, entityID string) ([]*audit.Entry, error) {
	var dtos []EntryDTO
	if err := r.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("created_at ASC, id ASC").
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormAuditRepository) ListUnexported(ctx context.Context, limit int) ([]*audit.Entry, error) {
	var dtos []EntryDTO
	if err := r.db.WithContext(ctx).
		Where("exported_at IS NULL").
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

// MarkExported stamps rows that were not stamped before. Nothing else on the row changes.
func (r *GormAuditRepository) MarkExported(ctx context.Context, ids []kernel.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]any, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}
	return r.db.WithContext(ctx).
		Model(&EntryDTO{}).
		Where("id IN ? AND exported_at IS NULL", raw).
		Update("exported_at", at.UTC()).Error
}

func toDomainList(dtos []EntryDTO) ([]*audit.Entry, error) {
	entries := make([]*audit.Entry, 0, len(dtos))
	for _, dto := range dtos {
		e, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
