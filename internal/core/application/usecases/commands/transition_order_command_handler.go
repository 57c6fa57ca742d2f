package commands

import (
	"context"
	"errors"
	"time"

	"booking/internal/core/domain/model/order"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"go.uber.org/zap"
)

// TransitionOrderCommandHandler applies a role-scoped status change.
//
// The order is loaded, checked against the expected status and the adjacency
// table, written back with a compare-and-swap on (id, status, version), and one
// ORDER_STATUS_CHANGED entry is appended in the same transaction. Cancelling an
// order that is already CANCELED returns it unchanged and writes nothing, also
// when a concurrent cancel committed first.
type TransitionOrderCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	publisher  statusPublisher
	clock      Clock
}

func NewTransitionOrderCommandHandler(
	uowFactory ports.UnitOfWorkFactory,
	notifier ports.StatusNotifier,
	logger *zap.Logger,
	clock Clock,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  newStatusPublisher(notifier, logger),
		clock:      clock,
	}
}

func (h TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.clock()
	o, previous, changed, err := h.transition(ctx, cmd, now)
	if errors.Is(err, errs.ErrConflict) && cmd.Target() == order.Canceled {
		return h.alreadyCanceled(ctx, cmd, err)
	}
	if err != nil || !changed {
		return o, err
	}

	h.publisher.publish(ctx, o, previous, false, now)
	return o, nil
}

func (h TransitionOrderCommandHandler) transition(
	ctx context.Context,
	cmd TransitionOrderCommand,
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
	if err = authorizeOrderActor(ctx, uow, cmd.Actor(), o); err != nil {
		return nil, order.Unknown, false, err
	}

	previous := o.Status()
	changed, err := o.Transition(cmd.request(), now)
	if err != nil {
		return nil, order.Unknown, false, err
	}
	if !changed {
		return o, previous, false, nil
	}

	if err = saveOrderTransition(ctx, uow, o, cmd.Actor(), previous, now); err != nil {
		return nil, order.Unknown, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, order.Unknown, false, err
	}
	return o, previous, true, nil
}

// alreadyCanceled resolves a cancel that lost the compare-and-swap: if the
// winner canceled the order too, the order is returned unchanged.
func (h TransitionOrderCommandHandler) alreadyCanceled(
	ctx context.Context,
	cmd TransitionOrderCommand,
	conflict error,
) (*order.Order, error) {
	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if o.Status() != order.Canceled {
		return nil, conflict
	}
	return o, nil
}
