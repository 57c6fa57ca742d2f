package commands

import (
	"errors"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var (
	ErrSendPayoutCommandIsNotConstructed = errors.New(
		"SendPayoutCommand must be created via NewSendPayoutCommand constructor",
	)
	ErrResendPayoutCommandIsNotConstructed = errors.New(
		"ResendPayoutCommand must be created via NewResendPayoutCommand constructor",
	)
)

// SendPayoutCommand hands a CREATED or FAILED payout to the payout provider.
type SendPayoutCommand struct { //nolint:recvcheck //using for validation
	payoutID kernel.UUID
	actor    order.Actor

	guard guard.ConstructorGuard
}

func NewSendPayoutCommand(payoutID kernel.UUID, actor order.Actor) (SendPayoutCommand, error) {
	if payoutID.Validate() != nil {
		return SendPayoutCommand{}, errs.NewValueIsRequiredError("payoutId")
	}
	if actor.Role() != order.RoleAdmin && actor.Role() != order.RoleSystem {
		return SendPayoutCommand{}, errs.NewForbiddenError(actor.IDString(), "payout", payoutID.String())
	}
	return SendPayoutCommand{payoutID: payoutID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c SendPayoutCommand) Validate() error {
	return c.guard.Validate(ErrSendPayoutCommandIsNotConstructed)
}

func (c SendPayoutCommand) PayoutID() kernel.UUID { return c.payoutID }
func (c SendPayoutCommand) Actor() order.Actor    { return c.actor }

// ResendPayoutCommand is the admin retry of a FAILED payout.
type ResendPayoutCommand struct { //nolint:recvcheck //using for validation
	payoutID kernel.UUID
	admin    order.Actor
	reason   string

	guard guard.ConstructorGuard
}

func NewResendPayoutCommand(payoutID kernel.UUID, admin order.Actor, reason string) (ResendPayoutCommand, error) {
	if payoutID.Validate() != nil {
		return ResendPayoutCommand{}, errs.NewValueIsRequiredError("payoutId")
	}
	if err := requireAdmin(admin); err != nil {
		return ResendPayoutCommand{}, err
	}
	return ResendPayoutCommand{
		payoutID: payoutID,
		admin:    admin,
		reason:   strings.TrimSpace(reason),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ResendPayoutCommand) Validate() error {
	return c.guard.Validate(ErrResendPayoutCommandIsNotConstructed)
}

func (c ResendPayoutCommand) PayoutID() kernel.UUID { return c.payoutID }
func (c ResendPayoutCommand) Admin() order.Actor    { return c.admin }
func (c ResendPayoutCommand) Reason() string        { return c.reason }
