package commands

import (
	"errors"
	"strings"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrRefundPaymentCommandIsNotConstructed = errors.New(
	"RefundPaymentCommand must be created via NewRefundPaymentCommand constructor",
)

// RefundPaymentCommand is an admin request to return the money: a captured
// payment is refunded in full, an authorized hold is released.
type RefundPaymentCommand struct { //nolint:recvcheck //using for validation
	paymentID kernel.UUID
	admin     order.Actor
	reason    string

	guard guard.ConstructorGuard
}

func NewRefundPaymentCommand(paymentID kernel.UUID, admin order.Actor, reason string) (RefundPaymentCommand, error) {
	if paymentID.Validate() != nil {
		return RefundPaymentCommand{}, errs.NewValueIsRequiredError("paymentId")
	}
	if err := requireAdmin(admin); err != nil {
		return RefundPaymentCommand{}, err
	}
	return RefundPaymentCommand{
		paymentID: paymentID,
		admin:     admin,
		reason:    strings.TrimSpace(reason),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RefundPaymentCommand) Validate() error {
	return c.guard.Validate(ErrRefundPaymentCommandIsNotConstructed)
}

func (c RefundPaymentCommand) PaymentID() kernel.UUID { return c.paymentID }
func (c RefundPaymentCommand) Admin() order.Actor     { return c.admin }
func (c RefundPaymentCommand) Reason() string         { return c.reason }
