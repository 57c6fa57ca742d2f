package commands

import (
	"context"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"
)

// RefundPaymentCommandHandler refunds a CAPTURED payment or cancels an AUTHORIZED
// hold at the provider, then records the result with one audit entry. Provider
// errors leave the payment as it was: money already taken is never marked FAILED.
// The order is not touched; an admin decides separately whether to force it.
type RefundPaymentCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	gateway    ports.PaymentGateway
	clock      Clock
}

func NewRefundPaymentCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	gateway ports.PaymentGateway,
	clock Clock,
) RefundPaymentCommandHandler {
	return RefundPaymentCommandHandler{uowFactory: uowFactory, gateway: gateway, clock: clock}
}

func (h RefundPaymentCommandHandler) Handle(ctx context.Context, cmd RefundPaymentCommand) (*payment.Payment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.load(ctx, cmd.PaymentID())
	if err != nil {
		return nil, err
	}

	switch p.Status() {
	case payment.Captured:
		_, err = h.gateway.Refund(ctx, p.ProviderReference())
	case payment.Authorized:
		_, err = h.gateway.Cancel(ctx, p.ProviderReference())
	case payment.Refunded, payment.Cancelled:
		return p, nil
	default:
		return nil, errs.NewInvalidTransitionError("payment", p.Status().String(), payment.Refunded.String(), cmd.Admin().Role().String())
	}
	if err != nil {
		return nil, err
	}

	return h.apply(ctx, cmd)
}

func (h RefundPaymentCommandHandler) load(ctx context.Context, id kernel.UUID) (*payment.Payment, error) {
	uow := h.uowFactory.Create()
	return uow.PaymentRepository().Get(ctx, id)
}

func (h RefundPaymentCommandHandler) apply(ctx context.Context, cmd RefundPaymentCommand) (*payment.Payment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.PaymentRepository().Get(ctx, cmd.PaymentID())
	if err != nil {
		return nil, err
	}

	now := h.clock()
	previous := p.Status()
	switch previous {
	case payment.Captured:
		err = p.Refund(now)
	case payment.Authorized:
		err = p.Cancel(now)
	default:
		// a provider event got here first
		return p, nil
	}
	if err != nil {
		return nil, err
	}

	if err = uow.PaymentRepository().Update(ctx, p); err != nil {
		return nil, err
	}

	record := paymentRecord(cmd.Admin(), p, paymentEventType(p.Status()), previous)
	record.Action = "admin_refund"
	if cmd.Reason() != "" {
		record.Metadata["reason"] = cmd.Reason()
	}
	if err = appendAudit(ctx, uow, record, now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}
