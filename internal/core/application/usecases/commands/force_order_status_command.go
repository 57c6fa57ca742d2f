package commands

import (
	"errors"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrForceOrderStatusCommandIsNotConstructed = errors.New(
	"ForceOrderStatusCommand must be created via NewForceOrderStatusCommand constructor",
)

// ForceOrderStatusCommand is an admin override that bypasses the adjacency table.
type ForceOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status
	admin   order.Actor
	reason  string

	guard guard.ConstructorGuard
}

func NewForceOrderStatusCommand(
	orderID kernel.UUID,
	target order.Status,
	admin order.Actor,
	reason string,
) (ForceOrderStatusCommand, error) {
	if orderID.Validate() != nil {
		return ForceOrderStatusCommand{}, errs.NewValueIsRequiredError("orderId")
	}
	if err := target.Validate(); err != nil {
		return ForceOrderStatusCommand{}, err
	}
	if err := requireAdmin(admin); err != nil {
		return ForceOrderStatusCommand{}, err
	}

	return ForceOrderStatusCommand{
		orderID: orderID,
		target:  target,
		admin:   admin,
		reason:  strings.TrimSpace(reason),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ForceOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrForceOrderStatusCommandIsNotConstructed)
}

func (c ForceOrderStatusCommand) OrderID() kernel.UUID { return c.orderID }
func (c ForceOrderStatusCommand) Target() order.Status { return c.target }
func (c ForceOrderStatusCommand) Admin() order.Actor   { return c.admin }
func (c ForceOrderStatusCommand) Reason() string       { return c.reason }
