package commands

import (
	"errors"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrCreatePreauthCommandIsNotConstructed = errors.New(
	"CreatePreauthCommand must be created via NewCreatePreauthCommand constructor",
)

// CardDetails are forwarded to the gateway untouched. All fields are optional:
// without a card token the payer is sent to the provider's checkout.
type CardDetails struct {
	Token           string
	PaymentMethodID string
	PayerEmail      string
}

// CreatePreauthCommand opens (or resumes) the payment hold of an ACCEPTED order.
type CreatePreauthCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   order.Actor
	card    CardDetails

	guard guard.ConstructorGuard
}

func NewCreatePreauthCommand(orderID kernel.UUID, actor order.Actor, card CardDetails) (CreatePreauthCommand, error) {
	if orderID.Validate() != nil {
		return CreatePreauthCommand{}, errs.NewValueIsRequiredError("orderId")
	}
	if err := actor.Role().Validate(); err != nil {
		return CreatePreauthCommand{}, err
	}

	card.Token = strings.TrimSpace(card.Token)
	card.PaymentMethodID = strings.TrimSpace(card.PaymentMethodID)
	card.PayerEmail = strings.TrimSpace(card.PayerEmail)

	return CreatePreauthCommand{
		orderID: orderID,
		actor:   actor,
		card:    card,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CreatePreauthCommand) Validate() error {
	return c.guard.Validate(ErrCreatePreauthCommandIsNotConstructed)
}

func (c CreatePreauthCommand) OrderID() kernel.UUID { return c.orderID }
func (c CreatePreauthCommand) Actor() order.Actor   { return c.actor }
func (c CreatePreauthCommand) Card() CardDetails    { return c.card }
