package commands

import (
	"errors"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrSyncPaymentStatusCommandIsNotConstructed = errors.New(
	"SyncPaymentStatusCommand must be created via a NewSyncPaymentStatusCommand constructor",
)

// SyncPaymentStatusCommand merges one provider event into a payment. The payment
// is addressed by id, or by (provider, reference) when the event comes from a
// provider that does not echo our id back.
type SyncPaymentStatusCommand struct { //nolint:recvcheck //using for validation
	paymentID kernel.UUID
	provider  string
	reference string
	event     payment.Event

	guard guard.ConstructorGuard
}

func NewSyncPaymentStatusCommand(paymentID kernel.UUID, event payment.Event) (SyncPaymentStatusCommand, error) {
	if paymentID.Validate() != nil {
		return SyncPaymentStatusCommand{}, errs.NewValueIsRequiredError("paymentId")
	}
	if err := checkEvent(event); err != nil {
		return SyncPaymentStatusCommand{}, err
	}
	return SyncPaymentStatusCommand{paymentID: paymentID, event: event, guard: guard.NewConstructorGuard()}, nil
}

// NewSyncPaymentStatusCommandFromProvider builds the command from a payment as the
// gateway reports it. The event id is derived from the provider state, so the
// webhook and the reconciliation job agree on it.
func NewSyncPaymentStatusCommandFromProvider(provider string, pp ports.ProviderPayment) (SyncPaymentStatusCommand, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return SyncPaymentStatusCommand{}, errs.NewValueIsRequiredError("provider")
	}

	cmd := SyncPaymentStatusCommand{
		provider:  provider,
		reference: strings.TrimSpace(pp.Reference),
		event:     providerEvent(provider, pp),
		guard:     guard.NewConstructorGuard(),
	}
	if id, err := kernel.UUIDFromString(pp.LocalID); err == nil {
		cmd.paymentID = id
	}
	if cmd.paymentID.IsZero() && cmd.reference == "" {
		return SyncPaymentStatusCommand{}, errs.NewValueIsRequiredError("providerReference")
	}
	if err := checkEvent(cmd.event); err != nil {
		return SyncPaymentStatusCommand{}, err
	}
	return cmd, nil
}

func checkEvent(e payment.Event) error {
	if strings.TrimSpace(e.ID) == "" {
		return payment.ErrEventIDIsRequired
	}
	return e.Status.Validate()
}

func (c SyncPaymentStatusCommand) Validate() error {
	return c.guard.Validate(ErrSyncPaymentStatusCommandIsNotConstructed)
}

func (c SyncPaymentStatusCommand) PaymentID() kernel.UUID { return c.paymentID }
func (c SyncPaymentStatusCommand) Provider() string       { return c.provider }
func (c SyncPaymentStatusCommand) Reference() string      { return c.reference }
func (c SyncPaymentStatusCommand) Event() payment.Event   { return c.event }
