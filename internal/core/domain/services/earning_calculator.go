package services

import (
	"errors"
	"fmt"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/model/payout"
	"booking/internal/pkg/errs"
)

// ErrPaymentNotCaptured is returned when an earning is requested for a payment
// that has not been captured.
var ErrPaymentNotCaptured = errors.New("payment is not captured")

// EarningCalculator applies the platform fee to a captured payment.
//
// Business rules:
//   - The payment must be CAPTURED and belong to the order
//   - gross is the captured amount, fee is feeBasisPoints of gross rounded half up
//   - The earning belongs to the order's pro profile
type EarningCalculator struct {
	feeBasisPoints int64
}

// NewEarningCalculator validates the platform fee (0..10000 basis points).
func NewEarningCalculator(feeBasisPoints int64) (EarningCalculator, error) {
	if feeBasisPoints < 0 || feeBasisPoints > 10000 {
		return EarningCalculator{}, errs.NewValueIsOutOfRangeError("platformFeeBps", feeBasisPoints, 0, 10000)
	}
	return EarningCalculator{feeBasisPoints: feeBasisPoints}, nil
}

func (c EarningCalculator) FeeBasisPoints() int64 {
	return c.feeBasisPoints
}

// EarningFor builds the earning for a captured payment.
func (c EarningCalculator) EarningFor(o *order.Order, p *payment.Payment, now time.Time) (*payout.Earning, error) {
	if err := errors.Join(o.Validate(), p.Validate()); err != nil {
		return nil, err
	}
	if !p.OrderID().IsEqual(o.ID()) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"paymentId",
			fmt.Errorf("payment %s belongs to order %s", p.ID(), p.OrderID()),
		)
	}
	if p.Status() != payment.Captured {
		return nil, fmt.Errorf("%w: %s is %s", ErrPaymentNotCaptured, p.ID(), p.Status())
	}

	return payout.NewEarning(
		kernel.NewUUID(), o.ProProfileID(), o.ID(), p.ID(), p.AmountCaptured(), c.feeBasisPoints, now,
	)
}
