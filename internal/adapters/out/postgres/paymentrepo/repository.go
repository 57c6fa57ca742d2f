package paymentrepo

import (
	"context"
	"errors"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payment"
	"booking/internal/pkg/errs"

	"gorm.io/gorm"
)

const entityName = "payment"

// GormPaymentRepository implements ports.PaymentRepository using GORM.
type GormPaymentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormPaymentRepository(db *gorm.DB, tracker aggregateTracker) *GormPaymentRepository {
	return &GormPaymentRepository{db: db, tracker: tracker}
}

// Add inserts a payment. A second active payment for the same order, or a reused
// provider reference, is reported as a conflict.
func (r *GormPaymentRepository) Add(ctx context.Context, aggregate *payment.Payment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewConflictError(entityName, aggregate.OrderID().String())
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the payment back with a compare-and-swap on version.
func (r *GormPaymentRepository) Update(ctx context.Context, aggregate *payment.Payment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&PaymentDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return errs.NewConflictError(entityName, aggregate.ID().String())
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&PaymentDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
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

func (r *GormPaymentRepository) Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, id.String(), "id = ?", id.Bytes())
}

// GetActiveByOrder returns the order's payment that is neither FAILED nor CANCELLED.
func (r *GormPaymentRepository) GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*payment.Payment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "active for order "+orderID.String(),
		"order_id = ? AND status NOT IN ?", orderID.Bytes(), inactiveStatuses())
}

func (r *GormPaymentRepository) GetByProviderReference(
	ctx context.Context,
	provider, reference string,
) (*payment.Payment, error) {
	if reference == "" {
		return nil, errs.NewValueIsRequiredError("providerReference")
	}
	return r.first(ctx, provider+":"+reference, "provider = ? AND provider_reference = ?", provider, reference)
}

// ListByStatus returns up to limit payments in the given statuses, least recently
// updated first.
func (r *GormPaymentRepository) ListByStatus(
	ctx context.Context,
	statuses []payment.Status,
	limit int,
) ([]*payment.Payment, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}

	var dtos []PaymentDTO
	if err := r.db.WithContext(ctx).
		Where("status IN ?", names).
		Order("updated_at ASC").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	payments := make([]*payment.Payment, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (r *GormPaymentRepository) first(ctx context.Context, what string, query string, args ...any) (*payment.Payment, error) {
	var dto PaymentDTO
	if err := r.db.WithContext(ctx).Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(entityName, what)
		}
		return nil, err
	}
	return toDomain(dto)
}

func inactiveStatuses() []string {
	return []string{payment.Failed.String(), payment.Cancelled.String()}
}
