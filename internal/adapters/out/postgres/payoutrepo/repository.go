package payoutrepo

import (
	"context"
	"errors"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payout"
	"booking/internal/pkg/errs"

	"gorm.io/gorm"
)

const entityName = "payout"

// GormPayoutRepository implements ports.PayoutRepository using GORM.
type GormPayoutRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormPayoutRepository(db *gorm.DB, tracker aggregateTracker) *GormPayoutRepository {
	return &GormPayoutRepository{db: db, tracker: tracker}
}

// Add inserts the payout and claims its earnings. The claim only touches rows whose
// payout_id is still NULL; if fewer rows than earnings were claimed, another payout
// got there first and the call fails with a conflict. Callers run this inside a
// unit of work so the insert is rolled back with the failed claim.
func (r *GormPayoutRepository) Add(ctx context.Context, aggregate *payout.Payout) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	dto := payoutFromDomain(aggregate)
	if err := db.Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewConflictError(entityName, aggregate.ID().String())
		}
		return err
	}

	earnings := aggregate.Earnings()
	ids := make([]any, 0, len(earnings))
	for _, e := range earnings {
		ids = append(ids, e.ID().Bytes())
	}

	result := db.Model(&EarningDTO{}).
		Where("id IN ? AND payout_id IS NULL", ids).
		Update("payout_id", dto.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(earnings)) {
		return errs.NewConflictError("earning", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the payout row back with a compare-and-swap on version. Earnings
// never change owner after the claim and are not rewritten.
func (r *GormPayoutRepository) Update(ctx context.Context, aggregate *payout.Payout) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := payoutFromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&PayoutDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&PayoutDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError(entityName, aggregate.ID().String())
		}
		return errs.NewConflictError(entityName, aggregate.ID().String())
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get loads the payout with the earnings it owns.
func (r *GormPayoutRepository) Get(ctx context.Context, id kernel.UUID) (*payout.Payout, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto PayoutDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(entityName, id.String())
		}
		return nil, err
	}
	return r.load(ctx, dto)
}

func (r *GormPayoutRepository) ListByStatus(ctx context.Context, status payout.Status, limit int) ([]*payout.Payout, error) {
	var dtos []PayoutDTO
	if err := r.db.WithContext(ctx).
		Where("status = ?", status.String()).
		Order("created_at ASC").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	payouts := make([]*payout.Payout, 0, len(dtos))
	for _, dto := range dtos {
		p, err := r.load(ctx, dto)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, nil
}

func (r *GormPayoutRepository) load(ctx context.Context, dto PayoutDTO) (*payout.Payout, error) {
	var earnings []EarningDTO
	if err := r.db.WithContext(ctx).
		Where("payout_id = ?", dto.ID).
		Order("created_at ASC, id ASC").
		Find(&earnings).Error; err != nil {
		return nil, err
	}
	return payoutToDomain(dto, earnings)
}
