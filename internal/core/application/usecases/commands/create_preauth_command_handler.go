package commands

import (
	"context"
	"errors"
	"fmt"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"go.uber.org/zap"
)

// CreatePreauthCommandHandler opens the payment hold for an ACCEPTED order.
//
// Flow:
//  1. tx: reuse the order's active payment, or store a new CREATED payment for
//     the estimated amount (quote if present, else ceil(rate × estimated hours))
//  2. no tx: ask the gateway for the hold, passing any stored reference so a
//     retry never opens a second provider payment
//  3. tx: apply the hold; AUTHORIZED confirms the order in the same transaction
//
// Re-invoking is safe: REQUIRES_ACTION is returned as is, AUTHORIZED heals an
// order still left in ACCEPTED, CREATED goes back to the gateway.
type CreatePreauthCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	gateway    ports.PaymentGateway
	settler    paymentSettler
	publisher  statusPublisher
	clock      Clock
}

func NewCreatePreauthCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	gateway ports.PaymentGateway,
	calculator services.EarningCalculator,
	notifier ports.StatusNotifier,
	logger *zap.Logger,
	clock Clock,
) CreatePreauthCommandHandler {
	return CreatePreauthCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		settler:    paymentSettler{calculator: calculator},
		publisher:  newStatusPublisher(notifier, logger),
		clock:      clock,
	}
}

func (h CreatePreauthCommandHandler) Handle(ctx context.Context, cmd CreatePreauthCommand) (*payment.Payment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, proceed, err := h.prepare(ctx, cmd)
	if err != nil || !proceed {
		return p, err
	}

	held, err := h.gateway.OpenHold(ctx, ports.HoldRequest{
		PaymentID:       p.ID(),
		OrderID:         p.OrderID(),
		Amount:          p.AmountEstimated(),
		Description:     fmt.Sprintf("Booking %s", p.OrderID()),
		Reference:       p.ProviderReference(),
		CardToken:       cmd.Card().Token,
		PaymentMethodID: cmd.Card().PaymentMethodID,
		PayerEmail:      cmd.Card().PayerEmail,
	})
	if err != nil {
		return nil, recordProviderFailure(ctx, h.uowFactory, p.ID(), cmd.Actor(), err, h.clock())
	}

	return h.apply(ctx, p.ID(), cmd.Actor(), held)
}

// prepare returns the payment to hold and whether the gateway must be called.
func (h CreatePreauthCommandHandler) prepare(ctx context.Context, cmd CreatePreauthCommand) (*payment.Payment, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, false, err
	}
	if err = authorizeOrderActor(ctx, uow, cmd.Actor(), o); err != nil {
		return nil, false, err
	}

	active, err := uow.PaymentRepository().GetActiveByOrder(ctx, o.ID())
	switch {
	case err == nil:
		return h.resume(ctx, uow, o, active)
	case !errors.Is(err, errs.ErrObjectNotFound):
		return nil, false, err
	}

	if o.Status() != order.Accepted {
		return nil, false, errs.NewInvalidTransitionError(
			"order", o.Status().String(), order.Confirmed.String(), cmd.Actor().Role().String(),
		)
	}

	estimate, err := o.EstimatedAmount()
	if err != nil {
		return nil, false, err
	}
	p, err := payment.NewPayment(kernel.NewUUID(), o.ID(), h.gateway.Name(), estimate, h.clock())
	if err != nil {
		return nil, false, err
	}
	if err = uow.PaymentRepository().Add(ctx, p); err != nil {
		return nil, false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (h CreatePreauthCommandHandler) resume(
	ctx context.Context,
	uow ports.UnitOfWork,
	o *order.Order,
	p *payment.Payment,
) (*payment.Payment, bool, error) {
	switch p.Status() {
	case payment.Created:
		if o.Status() != order.Accepted {
			return nil, false, errs.NewInvalidTransitionError(
				"order", o.Status().String(), order.Confirmed.String(), "",
			)
		}
		return p, true, nil
	case payment.Authorized:
		if o.Status() != order.Accepted {
			return p, false, nil
		}
		now := h.clock()
		healed, previous, err := h.settler.settle(ctx, uow, p, now)
		if err != nil {
			return nil, false, err
		}
		if err = uow.Commit(ctx); err != nil {
			return nil, false, err
		}
		h.publisher.publish(ctx, healed, previous, false, now)
		return p, false, nil
	default:
		return p, false, nil
	}
}

func (h CreatePreauthCommandHandler) apply(
	ctx context.Context,
	paymentID kernel.UUID,
	actor order.Actor,
	held ports.ProviderPayment,
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
	var declined error

	switch held.Status {
	case payment.Authorized, payment.RequiresAction:
		authorized := p.AmountEstimated()
		if held.Authorized != nil {
			authorized = *held.Authorized
		}
		if held.Status == payment.RequiresAction {
			authorized = kernel.Money{}
		}
		err = p.ApplyHold(payment.Hold{
			Reference:   held.Reference,
			Status:      held.Status,
			Authorized:  authorized,
			CheckoutURL: held.CheckoutURL,
		}, now)
	case payment.Failed:
		declined = errs.NewPermanentProviderError(p.Provider(), "hold", errors.New(held.FailureReason))
		err = p.Fail(held.FailureReason, now)
	default:
		_, err = p.ApplyEvent(providerEvent(p.Provider(), held), now)
	}
	if err != nil {
		return nil, err
	}

	if err = uow.PaymentRepository().Update(ctx, p); err != nil {
		return nil, err
	}
	if p.Status() != previous {
		if err = appendAudit(ctx, uow, paymentRecord(actor, p, paymentEventType(p.Status()), previous), now); err != nil {
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
	if declined != nil {
		return nil, declined
	}
	return p, nil
}
