package commands

import (
	"context"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payout"
	"booking/internal/core/ports"
)

// SyncPayoutStatusCommandHandler merges a payout provider event. A repeated event
// id changes nothing and writes nothing.
type SyncPayoutStatusCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	clock      Clock
}

func NewSyncPayoutStatusCommandHandler(uowFactory ports.UnitOfWorkFactory, clock Clock) SyncPayoutStatusCommandHandler {
	return SyncPayoutStatusCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h SyncPayoutStatusCommandHandler) Handle(ctx context.Context, cmd SyncPayoutStatusCommand) (*payout.Payout, error) {
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

	p, err := uow.PayoutRepository().Get(ctx, cmd.PayoutID())
	if err != nil {
		return nil, err
	}

	now := h.clock()
	event := cmd.Event()
	outcome, err := p.ApplyEvent(event, now)
	if err != nil {
		return nil, err
	}
	if outcome.Duplicate {
		return p, nil
	}

	if err = uow.PayoutRepository().Update(ctx, p); err != nil {
		return nil, err
	}

	if outcome.StatusChanged {
		eventType := audit.PayoutSettled
		if p.Status() == payout.Failed {
			eventType = audit.PayoutFailed
		}
		record := statusRecord(order.SystemActor(), eventType, audit.EntityPayout, p.ID().String(),
			outcome.Previous.String(), p.Status().String())
		record.Metadata["eventId"] = event.ID
		if p.FailureReason() != "" {
			record.Metadata["reason"] = p.FailureReason()
		}
		if err = appendAudit(ctx, uow, record, now); err != nil {
			return nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}
