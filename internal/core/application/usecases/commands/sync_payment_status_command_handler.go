package commands

import (
	"context"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"

	"go.uber.org/zap"
)

// SyncPaymentStatusCommandHandler applies provider events delivered by webhook,
// by the events endpoint or by reconciliation.
//
// A repeated event id returns the payment untouched. A status change writes the
// matching PAYMENT_* entry; an event that changes nothing (late or out of order)
// is still recorded on the payment and audited as PAYMENT_EVENT_RECORDED.
// Reaching AUTHORIZED confirms an ACCEPTED order; reaching CAPTURED pays a
// COMPLETED order and books the earning.
type SyncPaymentStatusCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	settler    paymentSettler
	publisher  statusPublisher
	clock      Clock
}

func NewSyncPaymentStatusCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	calculator services.EarningCalculator,
	notifier ports.StatusNotifier,
	logger *zap.Logger,
	clock Clock,
) SyncPaymentStatusCommandHandler {
	return SyncPaymentStatusCommandHandler{
		uowFactory: uowFactory,
		settler:    paymentSettler{calculator: calculator},
		publisher:  newStatusPublisher(notifier, logger),
		clock:      clock,
	}
}

func (h SyncPaymentStatusCommandHandler) Handle(ctx context.Context, cmd SyncPaymentStatusCommand) (*payment.Payment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := h.load(ctx, uow, cmd)
	if err != nil {
		return nil, err
	}

	now := h.clock()
	outcome, err := p.ApplyEvent(cmd.Event(), now)
	if err != nil {
		return nil, err
	}
	if outcome.Duplicate {
		return p, nil
	}

	if err = uow.PaymentRepository().Update(ctx, p); err != nil {
		return nil, err
	}

	eventType := audit.PaymentEventRecorded
	if outcome.StatusChanged {
		eventType = paymentEventType(p.Status())
	}
	record := paymentRecord(order.SystemActor(), p, eventType, outcome.Previous)
	record.Action = "provider_event"
	record.Metadata["eventId"] = cmd.Event().ID
	record.Metadata["reportedStatus"] = cmd.Event().Status.String()
	if err = appendAudit(ctx, uow, record, now); err != nil {
		return nil, err
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

func (h SyncPaymentStatusCommandHandler) load(
	ctx context.Context,
	uow ports.UnitOfWork,
	cmd SyncPaymentStatusCommand,
) (*payment.Payment, error) {
	if !cmd.PaymentID().IsZero() {
		return uow.PaymentRepository().Get(ctx, cmd.PaymentID())
	}
	return uow.PaymentRepository().GetByProviderReference(ctx, cmd.Provider(), cmd.Reference())
}
