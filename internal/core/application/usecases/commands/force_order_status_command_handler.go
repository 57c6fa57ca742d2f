package commands

import (
	"context"
	"errors"
	"time"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"go.uber.org/zap"
)

// ForceOrderStatusCommandHandler moves an order to any status of the closed enum.
//
// Exactly one audit entry is written per call: ORDER_STATUS_FORCED when the
// status changed, ORDER_STATUS_FORCE_NOOP when the order was already there.
// A force that loses the compare-and-swap to a writer who reached the same
// target is a no-op as well.
type ForceOrderStatusCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	publisher  statusPublisher
	clock      Clock
}

func NewForceOrderStatusCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	notifier ports.StatusNotifier,
	logger *zap.Logger,
	clock Clock,
) ForceOrderStatusCommandHandler {
	return ForceOrderStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  newStatusPublisher(notifier, logger),
		clock:      clock,
	}
}

func (h ForceOrderStatusCommandHandler) Handle(ctx context.Context, cmd ForceOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.clock()
	o, previous, changed, err := h.force(ctx, cmd, now)
	if errors.Is(err, errs.ErrConflict) {
		return h.settleLostRace(ctx, cmd, now, err)
	}
	if err != nil {
		return nil, err
	}

	if changed {
		h.publisher.publish(ctx, o, previous, true, now)
	}
	return o, nil
}

func (h ForceOrderStatusCommandHandler) force(
	ctx context.Context,
	cmd ForceOrderStatusCommand,
	now time.Time,
) (*order.Order, order.Status, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, order.Unknown, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, order.Unknown, false, err
	}

	previous, changed, err := o.Force(cmd.Target(), now)
	if err != nil {
		return nil, order.Unknown, false, err
	}

	eventType := audit.OrderStatusForceNoop
	if changed {
		eventType = audit.OrderStatusForced
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return nil, order.Unknown, false, err
		}
	}

	if err = appendAudit(ctx, uow, forceRecord(cmd, o, eventType, previous), now); err != nil {
		return nil, order.Unknown, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, order.Unknown, false, err
	}
	return o, previous, changed, nil
}

// settleLostRace re-reads the order after a conflict. When the winner already
// put it at the target, the call is recorded as a no-op; otherwise the
// conflict stands.
func (h ForceOrderStatusCommandHandler) settleLostRace(
	ctx context.Context,
	cmd ForceOrderStatusCommand,
	now time.Time,
	conflict error,
) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if o.Status() != cmd.Target() {
		return nil, conflict
	}

	if err = appendAudit(ctx, uow, forceRecord(cmd, o, audit.OrderStatusForceNoop, o.Status()), now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func forceRecord(cmd ForceOrderStatusCommand, o *order.Order, eventType audit.EventType, previous order.Status) audit.Record {
	record := statusRecord(cmd.Admin(), eventType, audit.EntityOrder, o.ID().String(), previous.String(), cmd.Target().String())
	record.Action = "force_status"
	if cmd.Reason() != "" {
		record.Metadata["reason"] = cmd.Reason()
	}
	if eventType == audit.OrderStatusForced && (cmd.Target() == order.Completed || cmd.Target() == order.Paid) {
		record.Metadata["totalSettled"] = o.TotalAmount() != nil
	}
	return record
}
