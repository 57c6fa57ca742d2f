package ports

import (
	"context"

	"booking/internal/core/domain/model/kernel"
)

// PayoutTransfer is a request to move money to a professional's account.
type PayoutTransfer struct {
	PayoutID       kernel.UUID
	ProProfileID   kernel.UUID
	AccountRef     string
	Amount         kernel.Money
	IdempotencyKey string
}

// PayoutGateway is the external payout provider. Failures are *errs.ProviderError.
type PayoutGateway interface {
	Name() string

	// Send submits the transfer and returns the provider's reference.
	Send(ctx context.Context, transfer PayoutTransfer) (string, error)
}
