package commands

import (
	"errors"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payout"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrSyncPayoutStatusCommandIsNotConstructed = errors.New(
	"SyncPayoutStatusCommand must be created via NewSyncPayoutStatusCommand constructor",
)

// SyncPayoutStatusCommand applies a settlement report from the payout provider.
type SyncPayoutStatusCommand struct { //nolint:recvcheck //using for validation
	payoutID kernel.UUID
	event    payout.Event

	guard guard.ConstructorGuard
}

func NewSyncPayoutStatusCommand(payoutID kernel.UUID, event payout.Event) (SyncPayoutStatusCommand, error) {
	event.ID = strings.TrimSpace(event.ID)
	var idErr error
	if payoutID.Validate() != nil {
		idErr = errs.NewValueIsRequiredError("payoutId")
	}
	var eventErr error
	if event.ID == "" {
		eventErr = errs.NewValueIsRequiredError("eventId")
	}
	if err := errors.Join(idErr, eventErr, event.Status.Validate()); err != nil {
		return SyncPayoutStatusCommand{}, err
	}
	return SyncPayoutStatusCommand{payoutID: payoutID, event: event, guard: guard.NewConstructorGuard()}, nil
}

func (c SyncPayoutStatusCommand) Validate() error {
	return c.guard.Validate(ErrSyncPayoutStatusCommandIsNotConstructed)
}

func (c SyncPayoutStatusCommand) PayoutID() kernel.UUID { return c.payoutID }
func (c SyncPayoutStatusCommand) Event() payout.Event   { return c.event }
