package ports

import (
	"context"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payment"
)

// HoldRequest asks the gateway to open (or find) a hold for a local payment.
type HoldRequest struct {
	PaymentID   kernel.UUID
	OrderID     kernel.UUID
	Amount      kernel.Money
	Description string

	// Reference is set when a previous attempt already reached the gateway.
	Reference string

	// Card details tokenized by the client. Without a token the payer is sent to checkout.
	CardToken       string
	PaymentMethodID string
	PayerEmail      string
}

// ProviderPayment is the gateway's view of a payment.
type ProviderPayment struct {
	Reference string

	// LocalID is the local payment id echoed back by the gateway, when known.
	LocalID string

	Status        payment.Status
	Authorized    *kernel.Money
	Captured      *kernel.Money
	Refunded      *kernel.Money
	CheckoutURL   string
	FailureReason string
	UpdatedAt     time.Time
}

// PaymentGateway is the external payment provider. Every method returns an
// *errs.ProviderError on failure, classified as retryable or permanent.
// Implementations never retry internally.
type PaymentGateway interface {
	// Name identifies the provider in stored payments.
	Name() string

	// OpenHold opens an authorization-only hold. It must be safe to call again
	// for the same PaymentID.
	OpenHold(ctx context.Context, req HoldRequest) (ProviderPayment, error)

	// Capture charges amount against an authorized hold.
	Capture(ctx context.Context, reference string, amount kernel.Money) (ProviderPayment, error)

	// Cancel releases an uncaptured hold.
	Cancel(ctx context.Context, reference string) (ProviderPayment, error)

	// Refund returns a captured amount in full.
	Refund(ctx context.Context, reference string) (ProviderPayment, error)

	// Fetch reads the current provider state.
	Fetch(ctx context.Context, reference string) (ProviderPayment, error)
}
