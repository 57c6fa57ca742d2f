package payoutrepo

import (
	"context"
	"errors"

	"booking/internal/adapters/out/postgres/pgtypes"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payout"
	"booking/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEarningRepository implements ports.EarningRepository using GORM.
type GormEarningRepository struct {
	db *gorm.DB
}

func NewGormEarningRepository(db *gorm.DB) *GormEarningRepository {
	return &GormEarningRepository{db: db}
}

// Add inserts an unclaimed earning. A second earning for the same payment is a conflict.
func (r *GormEarningRepository) Add(ctx context.Context, earning *payout.Earning) error {
	if err := earning.Validate(); err != nil {
		return err
	}

	dto := EarningFromDomain(earning)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewConflictError("earning", earning.PaymentID().String())
		}
		return err
	}
	return nil
}

func (r *GormEarningRepository) GetByPayment(ctx context.Context, paymentID kernel.UUID) (*payout.Earning, error) {
	var dto EarningDTO
	if err := r.db.WithContext(ctx).First(&dto, "payment_id = ?", paymentID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("earning", "payment "+paymentID.String())
		}
		return nil, err
	}
	return EarningToDomain(dto)
}

// ListUnclaimed returns the pro's earnings that no payout owns yet, oldest first.
func (r *GormEarningRepository) ListUnclaimed(ctx context.Context, proProfileID kernel.UUID) ([]*payout.Earning, error) {
	var dtos []EarningDTO
	if err := r.db.WithContext(ctx).
		Where("pro_profile_id = ? AND payout_id IS NULL", proProfileID.Bytes()).
		Order("created_at ASC, id ASC").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	earnings := make([]*payout.Earning, 0, len(dtos))
	for _, dto := range dtos {
		e, err := EarningToDomain(dto)
		if err != nil {
			return nil, err
		}
		earnings = append(earnings, e)
	}
	return earnings, nil
}

func (r *GormEarningRepository) ListProsWithUnclaimed(ctx context.Context, limit int) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&EarningDTO{}).
		Where("payout_id IS NULL").
		Distinct().
		Order("pro_profile_id").
		Limit(limit).
		Pluck("pro_profile_id", &raw).Error; err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := pgtypes.UUID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
