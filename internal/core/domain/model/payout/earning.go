package payout

import (
	"errors"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"
)

var (
	// ErrEarningIsNotConstructed is returned when the Earning was not built via NewEarning or RestoreEarning.
	ErrEarningIsNotConstructed = errors.New("Earning must be created via NewEarning constructor")

	// ErrEarningAlreadyClaimed is returned when another payout owns the earning.
	ErrEarningAlreadyClaimed = errors.New("earning already claimed by another payout")
)

// Earning is what a professional is owed for one captured order, after the
// platform fee.
//
// Key business rules:
//   - net = gross − fee, fee rounded half up to the cent
//   - Can be claimed by exactly one payout and is never released silently
//   - Claiming twice for the same payout is harmless
type Earning struct {
	id           kernel.UUID
	proProfileID kernel.UUID
	orderID      kernel.UUID
	paymentID    kernel.UUID
	gross        kernel.Money
	fee          kernel.Money
	net          kernel.Money
	payoutID     *kernel.UUID
	createdAt    time.Time

	isConstructed bool
}

// NewEarning splits a captured amount into fee and net using the platform fee in basis points.
//
// Example:
//
//	captured, _ := kernel.NewMoney(20000, "BRL")
//	e, err := NewEarning(kernel.NewUUID(), proID, orderID, paymentID, captured, 1500, time.Now())
//	// e.Fee() == 30.00 BRL, e.Net() == 170.00 BRL
func NewEarning(
	id, proProfileID, orderID, paymentID kernel.UUID,
	gross kernel.Money,
	feeBasisPoints int64,
	now time.Time,
) (*Earning, error) {
	if err := gross.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("grossAmount", err)
	}
	fee, err := gross.BasisPoints(feeBasisPoints)
	if err != nil {
		return nil, err
	}
	net, err := gross.Sub(fee)
	if err != nil {
		return nil, err
	}
	return RestoreEarning(id, proProfileID, orderID, paymentID, gross, fee, net, nil, now.UTC())
}

// RestoreEarning rebuilds an earning from storage and re-checks net = gross − fee.
func RestoreEarning(
	id, proProfileID, orderID, paymentID kernel.UUID,
	gross, fee, net kernel.Money,
	payoutID *kernel.UUID,
	createdAt time.Time,
) (*Earning, error) {
	e := &Earning{createdAt: createdAt, isConstructed: true}

	if err := errors.Join(
		requireID("earningId", id),
		requireID("proProfileId", proProfileID),
		requireID("orderId", orderID),
		requireID("paymentId", paymentID),
	); err != nil {
		return nil, err
	}

	sum, err := net.Add(fee)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("netAmount", err)
	}
	if !sum.IsEqual(gross) {
		return nil, errs.NewValueIsInvalidError("netAmount must equal grossAmount minus feeAmount")
	}
	if payoutID != nil {
		if err := payoutID.Validate(); err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("payoutId", err)
		}
		p := *payoutID
		e.payoutID = &p
	}

	e.id, e.proProfileID, e.orderID, e.paymentID = id, proProfileID, orderID, paymentID
	e.gross, e.fee, e.net = gross, fee, net
	return e, nil
}

func (e *Earning) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEarningIsNotConstructed
	}
	return nil
}

func (e *Earning) ID() kernel.UUID           { return e.id }
func (e *Earning) ProProfileID() kernel.UUID { return e.proProfileID }
func (e *Earning) OrderID() kernel.UUID      { return e.orderID }
func (e *Earning) PaymentID() kernel.UUID    { return e.paymentID }
func (e *Earning) Gross() kernel.Money       { return e.gross }
func (e *Earning) Fee() kernel.Money         { return e.fee }
func (e *Earning) Net() kernel.Money         { return e.net }
func (e *Earning) CreatedAt() time.Time      { return e.createdAt }

// PayoutID returns the owning payout, or nil while unclaimed.
func (e *Earning) PayoutID() *kernel.UUID {
	if e.payoutID == nil {
		return nil
	}
	id := *e.payoutID
	return &id
}

func (e *Earning) IsClaimed() bool {
	return e.payoutID != nil
}

// Claim assigns the earning to a payout.
func (e *Earning) Claim(payoutID kernel.UUID) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := payoutID.Validate(); err != nil {
		return err
	}
	if e.payoutID != nil {
		if e.payoutID.IsEqual(payoutID) {
			return nil
		}
		return ErrEarningAlreadyClaimed
	}
	e.payoutID = &payoutID
	return nil
}

func requireID(name string, id kernel.UUID) error {
	if id.Validate() != nil {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
