package commands

import (
	"context"
	"errors"
	"fmt"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/proprofile"
	"booking/internal/core/ports"
	"booking/internal/pkg/errs"
)

// ErrProIsNotBookable is returned when the pro is not approved.
var ErrProIsNotBookable = errs.NewValueIsInvalidErrorWithCause("proProfileId", errors.New("pro is not bookable"))

// CreateOrderCommandHandler creates a DRAFT booking with a pricing snapshot.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, SystemClock)
//	o, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrProIsNotBookable) {
//	    // pro is pending approval or suspended
//	}
type CreateOrderCommandHandler struct {
	uowFactory ports.UnitOfWorkFactory
	clock      Clock
}

func NewCreateOrderCommandHandler(uowFactory ports.UnitOfWorkFactory, clock Clock) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle loads the pro profile, snapshots its hourly rate into the order terms,
// and stores the order together with an ORDER_CREATED audit entry.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
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

	pro, err := uow.ProProfileRepository().Get(ctx, cmd.ProProfileID())
	if err != nil {
		return nil, err
	}
	if pro.Status() != proprofile.Approved {
		return nil, fmt.Errorf("%w: %s is %s", ErrProIsNotBookable, pro.ID(), pro.Status())
	}

	terms := order.Terms{Mode: cmd.PricingMode(), QuotedAmount: cmd.QuotedAmount()}
	if cmd.PricingMode() == order.PricingHourly {
		rate := pro.HourlyRate()
		terms.HourlyRate = &rate
		terms.EstimatedHours = cmd.EstimatedHours()
	}

	now := h.clock()
	o, err := order.NewOrder(cmd.OrderID(), cmd.Client().ID(), pro.ID(), cmd.CategoryID(), cmd.Window(), terms, now)
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}

	record := statusRecord(cmd.Client(), audit.OrderCreated, audit.EntityOrder, o.ID().String(), "", o.Status().String())
	record.Metadata["pricingMode"] = terms.Mode.String()
	if err = appendAudit(ctx, uow, record, now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
