package commands

import (
	"errors"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a client's request to book a professional.
// The hourly rate is not part of the command: it is snapshotted from the pro
// profile when the order is created.
//
// Example:
//
//	window, _ := kernel.NewTimeWindow(start, start.Add(3*time.Hour))
//	hours := kernel.MustHours("3")
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), client, proID, categoryID,
//	    window, order.PricingHourly, &hours, nil)
//	if err != nil {
//	    return fmt.Errorf("invalid booking: %w", err)
//	}
//	o, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	client         order.Actor
	proProfileID   kernel.UUID
	categoryID     kernel.UUID
	window         kernel.TimeWindow
	mode           order.PricingMode
	estimatedHours *kernel.Hours
	quotedAmount   *kernel.Money

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates identifiers and the pricing input. Terms
// completeness is checked again by the order aggregate.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	client order.Actor,
	proProfileID, categoryID kernel.UUID,
	window kernel.TimeWindow,
	mode order.PricingMode,
	estimatedHours *kernel.Hours,
	quotedAmount *kernel.Money,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		window:         window,
		mode:           mode,
		estimatedHours: estimatedHours,
		quotedAmount:   quotedAmount,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(orderID, proProfileID, categoryID),
		cmd.setClient(client),
		window.Validate(),
		cmd.checkPricing(),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID           { return c.orderID }
func (c CreateOrderCommand) Client() order.Actor            { return c.client }
func (c CreateOrderCommand) ProProfileID() kernel.UUID      { return c.proProfileID }
func (c CreateOrderCommand) CategoryID() kernel.UUID        { return c.categoryID }
func (c CreateOrderCommand) Window() kernel.TimeWindow      { return c.window }
func (c CreateOrderCommand) PricingMode() order.PricingMode { return c.mode }
func (c CreateOrderCommand) EstimatedHours() *kernel.Hours  { return c.estimatedHours }
func (c CreateOrderCommand) QuotedAmount() *kernel.Money    { return c.quotedAmount }

func (c *CreateOrderCommand) setIDs(orderID, proProfileID, categoryID kernel.UUID) error {
	var err error
	if orderID.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("orderId"))
	}
	if proProfileID.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("proProfileId"))
	}
	if categoryID.Validate() != nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("categoryId"))
	}
	if err != nil {
		return err
	}
	c.orderID, c.proProfileID, c.categoryID = orderID, proProfileID, categoryID
	return nil
}

func (c *CreateOrderCommand) setClient(client order.Actor) error {
	if client.Role() != order.RoleClient {
		return errs.NewValueIsInvalidError("actorRole")
	}
	c.client = client
	return nil
}

func (c *CreateOrderCommand) checkPricing() error {
	switch c.mode {
	case order.PricingHourly:
		if c.estimatedHours == nil {
			return errs.NewValueIsRequiredError("estimatedHours")
		}
	case order.PricingFixed:
		if c.quotedAmount == nil {
			return errs.NewValueIsRequiredError("quotedAmountCents")
		}
	default:
		return errs.NewValueIsInvalidError("pricingMode")
	}
	return nil
}
