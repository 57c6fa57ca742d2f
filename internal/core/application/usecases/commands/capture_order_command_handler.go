package commands

import (
	"context"
	"errors"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"go.uber.org/zap"
)

// CaptureOrderCommandHandler captures min(final amount, authorized amount) for a
// COMPLETED order, then marks the order PAID and books the pro's earning in one
// transaction. An order that is already PAID with a CAPTURED payment returns that
// payment without charging again.
//
// The gateway call is guarded by a capture claim committed on the payment first,
// so concurrent captures of one order charge at most once; the losers get
// ErrConflict. A failed call is checked against the provider before the payment
// is failed, since the charge may have gone through anyway.
type CaptureOrderCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	gateway    ports.PaymentGateway
	settler    paymentSettler
	publisher  statusPublisher
	clock      Clock
}

func NewCaptureOrderCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	gateway ports.PaymentGateway,
	calculator services.EarningCalculator,
	notifier ports.StatusNotifier,
	logger *zap.Logger,
	clock Clock,
) CaptureOrderCommandHandler {
	return CaptureOrderCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		settler:    paymentSettler{calculator: calculator},
		publisher:  newStatusPublisher(notifier, logger),
		clock:      clock,
	}
}

func (h CaptureOrderCommandHandler) Handle(ctx context.Context, cmd CaptureOrderCommand) (*payment.Payment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, amount, proceed, err := h.prepare(ctx, cmd)
	if err != nil || !proceed {
		return p, err
	}

	captured, err := h.gateway.Capture(ctx, p.ProviderReference(), amount)
	if err != nil {
		return h.captureFailed(ctx, p, cmd.Actor(), amount, err)
	}

	return h.apply(ctx, p.ID(), cmd.Actor(), amount, captured)
}

func (h CaptureOrderCommandHandler) captureFailed(
	ctx context.Context,
	p *payment.Payment,
	actor order.Actor,
	amount kernel.Money,
	cause error,
) (*payment.Payment, error) {
	var providerErr *errs.ProviderError
	if !errors.As(cause, &providerErr) || providerErr.Retryable {
		if err := h.releaseClaim(ctx, p.ID()); err != nil {
			return nil, errors.Join(cause, err)
		}
		return nil, cause
	}

	current, err := h.gateway.Fetch(ctx, p.ProviderReference())
	if err == nil && current.Status == payment.Captured {
		return h.apply(ctx, p.ID(), actor, amount, current)
	}
	return nil, recordProviderFailure(ctx, h.uowFactory, p.ID(), actor, cause, h.clock())
}

func (h CaptureOrderCommandHandler) releaseClaim(ctx context.Context, paymentID kernel.UUID) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.PaymentRepository().Get(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.CaptureClaimedAt() == nil {
		return nil
	}
	p.ReleaseCapture(h.clock())
	if err = uow.PaymentRepository().Update(ctx, p); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (h CaptureOrderCommandHandler) prepare(
	ctx context.Context,
	cmd CaptureOrderCommand,
) (*payment.Payment, kernel.Money, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, kernel.Money{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, kernel.Money{}, false, err
	}
	if err = authorizeOrderActor(ctx, uow, cmd.Actor(), o); err != nil {
		return nil, kernel.Money{}, false, err
	}

	p, err := uow.PaymentRepository().GetActiveByOrder(ctx, o.ID())
	if err != nil {
		return nil, kernel.Money{}, false, err
	}

	if o.Status() == order.Paid && (p.Status() == payment.Captured || p.Status() == payment.Refunded) {
		return p, kernel.Money{}, false, nil
	}
	if o.Status() != order.Completed {
		return nil, kernel.Money{}, false, errs.NewInvalidTransitionError(
			"order", o.Status().String(), order.Paid.String(), cmd.Actor().Role().String(),
		)
	}

	switch p.Status() {
	case payment.Captured:
		now := h.clock()
		healed, previous, err := h.settler.settle(ctx, uow, p, now)
		if err != nil {
			return nil, kernel.Money{}, false, err
		}
		if err = uow.Commit(ctx); err != nil {
			return nil, kernel.Money{}, false, err
		}
		h.publisher.publish(ctx, healed, previous, false, now)
		return p, kernel.Money{}, false, nil
	case payment.Authorized:
	default:
		return nil, kernel.Money{}, false, errs.NewInvalidTransitionError(
			"payment", p.Status().String(), payment.Captured.String(), "",
		)
	}

	final, err := o.FinalAmount()
	if err != nil {
		return nil, kernel.Money{}, false, err
	}
	amount, err := final.Min(p.AmountAuthorized())
	if err != nil {
		return nil, kernel.Money{}, false, err
	}

	if err = p.ClaimCapture(h.clock()); err != nil {
		return nil, kernel.Money{}, false, err
	}
	if err = uow.PaymentRepository().Update(ctx, p); err != nil {
		return nil, kernel.Money{}, false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, kernel.Money{}, false, err
	}
	return p, amount, true, nil
}

func (h CaptureOrderCommandHandler) apply(
	ctx context.Context,
	paymentID kernel.UUID,
	actor order.Actor,
	requested kernel.Money,
	captured ports.ProviderPayment,
) (*payment.Payment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.PaymentRepository().Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	now := h.clock()
	previous := p.Status()
	if previous == payment.Authorized {
		amount := requested
		if captured.Captured != nil {
			amount = *captured.Captured
		}
		if err = p.Capture(amount, now); err != nil {
			return nil, err
		}
		if err = uow.PaymentRepository().Update(ctx, p); err != nil {
			return nil, err
		}
		if err = appendAudit(ctx, uow, paymentRecord(actor, p, audit.PaymentCaptured, previous), now); err != nil {
			return nil, err
		}
	}

	o, orderBefore, err := h.settler.settle(ctx, uow, p, now)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.publish(ctx, o, orderBefore, false, now)
	return p, nil
}
