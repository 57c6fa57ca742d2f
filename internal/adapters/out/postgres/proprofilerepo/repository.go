package proprofilerepo

import (
	"context"
	"errors"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/pkg/errs"

	"gorm.io/gorm"
)

const entityName = "proProfile"

// GormProProfileRepository implements ports.ProProfileRepository using GORM.
type GormProProfileRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormProProfileRepository(db *gorm.DB, tracker aggregateTracker) *GormProProfileRepository {
	return &GormProProfileRepository{db: db, tracker: tracker}
}

func (r *GormProProfileRepository) Add(ctx context.Context, aggregate *proprofile.ProProfile) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewConflictError(entityName, aggregate.ID().String())
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormProProfileRepository) Update(ctx context.Context, aggregate *proprofile.ProProfile) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&ProProfileDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.Get(ctx, aggregate.ID()); err != nil {
			return err
		}
		return errs.NewConflictError(entityName, aggregate.ID().String())
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormProProfileRepository) Get(ctx context.Context, id kernel.UUID) (*proprofile.ProProfile, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ProProfileDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(entityName, id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}
