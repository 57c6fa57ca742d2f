package ports

import (
	"context"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payout"
)

// PayoutRepository defines the persistence contract for payouts and the earnings they own.
type PayoutRepository interface {
	// Add persists a new payout and claims its earnings with a compare-and-swap on
	// payout_id IS NULL. If any earning was claimed concurrently the whole call
	// fails with errs.ConflictError.
	Add(ctx context.Context, aggregate *payout.Payout) error

	// Update writes the payout back with a compare-and-swap on (id, Version).
	Update(ctx context.Context, aggregate *payout.Payout) error

	// Get loads the payout with its earnings.
	Get(ctx context.Context, id kernel.UUID) (*payout.Payout, error)

	// ListByStatus returns up to limit payouts in the given status, oldest first.
	ListByStatus(ctx context.Context, status payout.Status, limit int) ([]*payout.Payout, error)
}

// EarningRepository defines the persistence contract for earnings that are not yet claimed.
type EarningRepository interface {
	// Add persists a new, unclaimed earning. One earning per payment.
	Add(ctx context.Context, earning *payout.Earning) error

	// GetByPayment returns the earning created for a payment, or errs.ObjectNotFoundError.
	GetByPayment(ctx context.Context, paymentID kernel.UUID) (*payout.Earning, error)

	// ListUnclaimed returns the pro's earnings with no payout, oldest first.
	ListUnclaimed(ctx context.Context, proProfileID kernel.UUID) ([]*payout.Earning, error)

	// ListProsWithUnclaimed returns pro profile ids owning at least one unclaimed earning.
	ListProsWithUnclaimed(ctx context.Context, limit int) ([]kernel.UUID, error)
}
