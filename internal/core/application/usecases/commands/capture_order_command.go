package commands

import (
	"errors"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrCaptureOrderCommandIsNotConstructed = errors.New(
	"CaptureOrderCommand must be created via NewCaptureOrderCommand constructor",
)

// CaptureOrderCommand charges the held payment of a COMPLETED order.
type CaptureOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   order.Actor

	guard guard.ConstructorGuard
}

func NewCaptureOrderCommand(orderID kernel.UUID, actor order.Actor) (CaptureOrderCommand, error) {
	if orderID.Validate() != nil {
		return CaptureOrderCommand{}, errs.NewValueIsRequiredError("orderId")
	}
	if err := actor.Role().Validate(); err != nil {
		return CaptureOrderCommand{}, err
	}
	return CaptureOrderCommand{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c CaptureOrderCommand) Validate() error {
	return c.guard.Validate(ErrCaptureOrderCommandIsNotConstructed)
}

func (c CaptureOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c CaptureOrderCommand) Actor() order.Actor   { return c.actor }
