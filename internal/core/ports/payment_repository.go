package ports

import (
	"context"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payment"
)

// PaymentRepository defines the persistence contract for payments.
type PaymentRepository interface {
	// Add persists a new payment. A second active payment for the same order
	// violates the partial unique index and is reported as errs.ConflictError.
	Add(ctx context.Context, aggregate *payment.Payment) error

	// Update writes the payment back with a compare-and-swap on (id, Version).
	Update(ctx context.Context, aggregate *payment.Payment) error

	Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error)

	// GetActiveByOrder returns the order's payment that is not FAILED or CANCELLED,
	// or errs.ObjectNotFoundError.
	GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*payment.Payment, error)

	// GetByProviderReference looks a payment up by the gateway's id.
	GetByProviderReference(ctx context.Context, provider, reference string) (*payment.Payment, error)

	// ListByStatus returns up to limit payments in any of the statuses, oldest update first.
	ListByStatus(ctx context.Context, statuses []payment.Status, limit int) ([]*payment.Payment, error)
}
