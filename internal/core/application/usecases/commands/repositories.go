// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
//
// Every handler follows the same shape: validate the command, open a unit of
// work, load aggregates, mutate them, append the audit entries that describe the
// change through the same unit of work, commit. Gateway calls are never made
// inside an open transaction; handlers that talk to a provider commit their
// intent first, call out, then apply the result in a second transaction.
// Status notifications are published only after commit and never fail the
// operation.
package commands

import (
	"context"
	"errors"
	"time"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/services"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"

	"go.uber.org/zap"
)

// Clock returns the current time. Handlers take it as a dependency so tests can pin it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

func appendAudit(ctx context.Context, uow ports.UnitOfWork, record audit.Record, now time.Time) error {
	entry, err := audit.NewEntry(kernel.NewOrderedUUID(), record, now)
	if err != nil {
		return err
	}
	return uow.AuditRepository().Append(ctx, entry)
}

func actorRecord(actor order.Actor, eventType audit.EventType, entityType, entityID string) audit.Record {
	return audit.Record{
		EventType:  eventType,
		ActorID:    actor.IDString(),
		ActorRole:  actor.Role().String(),
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   map[string]any{},
	}
}

func statusRecord(actor order.Actor, eventType audit.EventType, entityType, entityID, previous, next string) audit.Record {
	r := actorRecord(actor, eventType, entityType, entityID)
	r.Metadata[audit.KeyPreviousStatus] = previous
	r.Metadata[audit.KeyNewStatus] = next
	return r
}

// saveOrderTransition writes the order and its ORDER_STATUS_CHANGED entry.
func saveOrderTransition(
	ctx context.Context,
	uow ports.UnitOfWork,
	o *order.Order,
	actor order.Actor,
	previous order.Status,
	now time.Time,
) error {
	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	return appendAudit(ctx, uow, statusRecord(
		actor, audit.OrderStatusChanged, audit.EntityOrder, o.ID().String(), previous.String(), o.Status().String(),
	), now)
}

// authorizeOrderActor checks that a client or pro is a party to the order.
// Admins and the system act on any order.
func authorizeOrderActor(ctx context.Context, uow ports.UnitOfWork, actor order.Actor, o *order.Order) error {
	switch actor.Role() {
	case order.RoleAdmin, order.RoleSystem:
		return nil
	case order.RoleClient:
		if actor.ID().IsEqual(o.ClientID()) {
			return nil
		}
	case order.RolePro:
		pro, err := uow.ProProfileRepository().Get(ctx, o.ProProfileID())
		if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}
		if pro != nil && actor.ID().IsEqual(pro.UserID()) {
			return nil
		}
	}
	return errs.NewForbiddenError(actor.IDString(), audit.EntityOrder, o.ID().String())
}

func requireAdmin(actor order.Actor) error {
	if actor.Role() != order.RoleAdmin {
		return errs.NewForbiddenError(actor.IDString(), "admin operation", actor.Role().String())
	}
	return nil
}

// statusPublisher sends committed order status changes to the notifier.
type statusPublisher struct {
	notifier ports.StatusNotifier
	logger   *zap.Logger
}

func newStatusPublisher(notifier ports.StatusNotifier, logger *zap.Logger) statusPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return statusPublisher{notifier: notifier, logger: logger}
}

func (p statusPublisher) publish(ctx context.Context, o *order.Order, previous order.Status, forced bool, now time.Time) {
	if p.notifier == nil || previous == o.Status() {
		return
	}
	change := ports.OrderStatusChange{
		OrderID:        o.ID().String(),
		PreviousStatus: previous.String(),
		NewStatus:      o.Status().String(),
		ChatOpen:       services.IsChatOpenStatus(o.Status()),
		Forced:         forced,
		OccurredAt:     now,
	}
	if err := p.notifier.OrderStatusChanged(ctx, change); err != nil {
		p.logger.Warn("status notification failed",
			zap.String("orderId", change.OrderID),
			zap.String("newStatus", change.NewStatus),
			zap.Error(err))
	}
}
