package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"
)

func paymentEventType(s payment.Status) audit.EventType {
	switch s {
	case payment.Authorized:
		return audit.PaymentAuthorized
	case payment.Captured:
		return audit.PaymentCaptured
	case payment.Failed:
		return audit.PaymentFailed
	case payment.Refunded:
		return audit.PaymentRefunded
	case payment.Cancelled:
		return audit.PaymentCancelled
	default:
		return audit.PaymentEventRecorded
	}
}

func paymentRecord(actor order.Actor, p *payment.Payment, eventType audit.EventType, previous payment.Status) audit.Record {
	r := statusRecord(actor, eventType, audit.EntityPayment, p.ID().String(), previous.String(), p.Status().String())
	r.Metadata["orderId"] = p.OrderID().String()
	r.Metadata["provider"] = p.Provider()
	switch p.Status() {
	case payment.Authorized:
		r.Metadata["amountCents"] = p.AmountAuthorized().Cents()
	case payment.Captured:
		r.Metadata["amountCents"] = p.AmountCaptured().Cents()
	case payment.Refunded:
		r.Metadata["amountCents"] = p.AmountRefunded().Cents()
	case payment.Failed:
		r.Metadata["reason"] = p.FailureReason()
	}
	return r
}

// ProviderEventID derives a stable event id from a provider snapshot, so the same
// provider state delivered twice (webhook plus reconciliation) is applied once.
func ProviderEventID(provider string, pp ports.ProviderPayment) string {
	return fmt.Sprintf("%s:%s:%s:%d", provider, pp.Reference, pp.Status, pp.UpdatedAt.UnixNano())
}

func providerEvent(provider string, pp ports.ProviderPayment) payment.Event {
	return payment.Event{
		ID:            ProviderEventID(provider, pp),
		Status:        pp.Status,
		Reference:     pp.Reference,
		Authorized:    pp.Authorized,
		Captured:      pp.Captured,
		Refunded:      pp.Refunded,
		FailureReason: pp.FailureReason,
	}
}

// paymentSettler advances the order and books the earning once the payment
// reached AUTHORIZED or CAPTURED. Used by every path that can observe those
// statuses: preauth, capture, webhook and reconciliation.
type paymentSettler struct {
	calculator services.EarningCalculator
}

// settle runs inside the caller's unit of work. It returns the order status
// before any change so the caller can publish after commit.
func (s paymentSettler) settle(
	ctx context.Context,
	uow ports.UnitOfWork,
	p *payment.Payment,
	now time.Time,
) (*order.Order, order.Status, error) {
	o, err := uow.OrderRepository().Get(ctx, p.OrderID())
	if err != nil {
		return nil, order.Unknown, err
	}
	previous := o.Status()

	switch {
	case p.Status() == payment.Authorized && o.Status() == order.Accepted:
		if err = o.Confirm(now); err != nil {
			return nil, previous, err
		}
	case p.Status() == payment.Captured && o.Status() == order.Completed:
		if err = o.MarkPaid(now); err != nil {
			return nil, previous, err
		}
	}

	if o.Status() != previous {
		if err = saveOrderTransition(ctx, uow, o, order.SystemActor(), previous, now); err != nil {
			return nil, previous, err
		}
	}

	if p.Status() == payment.Captured && o.Status() == order.Paid {
		if err = s.ensureEarning(ctx, uow, o, p, now); err != nil {
			return nil, previous, err
		}
	}
	return o, previous, nil
}

func (s paymentSettler) ensureEarning(ctx context.Context, uow ports.UnitOfWork, o *order.Order, p *payment.Payment, now time.Time) error {
	_, err := uow.EarningRepository().GetByPayment(ctx, p.ID())
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	earning, err := s.calculator.EarningFor(o, p, now)
	if err != nil {
		return err
	}
	return uow.EarningRepository().Add(ctx, earning)
}

// recordProviderFailure marks the payment FAILED with one PAYMENT_FAILED entry
// when the gateway reported a permanent error. Retryable errors and anything
// that is not a provider error are returned untouched. The original error is
// always returned.
func recordProviderFailure(
	ctx context.Context,
	uowFactory ports.UnitOfWorkFactory,
	paymentID kernel.UUID,
	actor order.Actor,
	cause error,
	now time.Time,
) error {
	var providerErr *errs.ProviderError
	if !errors.As(cause, &providerErr) || providerErr.Retryable {
		return cause
	}

	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return errors.Join(cause, err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.PaymentRepository().Get(ctx, paymentID)
	if err != nil {
		return errors.Join(cause, err)
	}
	previous := p.Status()
	if !previous.CanMoveTo(payment.Failed) {
		return cause
	}

	reason := providerErr.Operation
	if providerErr.Cause != nil {
		reason = providerErr.Cause.Error()
	}
	if err = p.Fail(reason, now); err != nil {
		return errors.Join(cause, err)
	}
	if err = uow.PaymentRepository().Update(ctx, p); err != nil {
		return errors.Join(cause, err)
	}

	record := paymentRecord(actor, p, audit.PaymentFailed, previous)
	record.Metadata["operation"] = providerErr.Operation
	if err = appendAudit(ctx, uow, record, now); err != nil {
		return errors.Join(cause, err)
	}

	if err = uow.Commit(ctx); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
