// Package ports defines the contracts between the booking core and its adapters:
// repositories bound to a unit of work, the payment and payout gateways, the audit
// archive and the status notifier.
package ports

import (
	"context"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes the order back with a compare-and-swap on
	// (id, PersistedStatus, Version). When no row matches, it returns an
	// errs.ConflictError carrying the status currently stored.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id, or errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
