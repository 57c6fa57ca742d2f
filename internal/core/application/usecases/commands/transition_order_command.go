package commands

import (
	"errors"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand asks for one role-scoped status change. Expected is the
// status the caller last saw; a stale value yields a ConflictError.
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	target        order.Status
	expected      order.Status
	actor         order.Actor
	finalHours    *kernel.Hours
	approvedHours *kernel.Hours
	reason        string

	guard guard.ConstructorGuard
}

// TransitionInput carries the optional data some targets need.
type TransitionInput struct {
	FinalHours    *kernel.Hours
	ApprovedHours *kernel.Hours
	Reason        string
}

func NewTransitionOrderCommand(
	orderID kernel.UUID,
	target, expected order.Status,
	actor order.Actor,
	input TransitionInput,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		actor:         actor,
		finalHours:    input.FinalHours,
		approvedHours: input.ApprovedHours,
		reason:        strings.TrimSpace(input.Reason),
		guard:         guard.NewConstructorGuard(),
	}

	if orderID.Validate() != nil {
		return TransitionOrderCommand{}, errs.NewValueIsRequiredError("orderId")
	}
	if err := errors.Join(target.Validate(), expected.Validate(), actor.Role().Validate()); err != nil {
		return TransitionOrderCommand{}, err
	}
	if actor.Role() == order.RoleSystem {
		return TransitionOrderCommand{}, errs.NewValueIsInvalidError("actorRole")
	}
	cmd.orderID, cmd.target, cmd.expected = orderID, target, expected

	return cmd, nil
}

func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) OrderID() kernel.UUID   { return c.orderID }
func (c TransitionOrderCommand) Target() order.Status   { return c.target }
func (c TransitionOrderCommand) Expected() order.Status { return c.expected }
func (c TransitionOrderCommand) Actor() order.Actor     { return c.actor }

func (c TransitionOrderCommand) request() order.TransitionRequest {
	return order.TransitionRequest{
		Target:        c.target,
		Expected:      c.expected,
		Actor:         c.actor,
		FinalHours:    c.finalHours,
		ApprovedHours: c.approvedHours,
		Reason:        c.reason,
	}
}
