package queries

import (
	"errors"
	"time"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New("GetOrderQuery must be created via NewGetOrderQuery constructor")

// GetOrderQuery reads one order as seen by one of its parties.
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID, actor)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetOrderQuery struct {
	orderID kernel.UUID
	actor   order.Actor
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID, actor order.Actor) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	if err := actor.Role().Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderQuery) Actor() order.Actor   { return q.actor }

// GetOrderQueryResponse is the order read model. Amounts are in cents of Currency;
// optional values are nil when the pricing mode or status does not set them.
type GetOrderQueryResponse struct {
	ID                  kernel.UUID
	ClientID            kernel.UUID
	ProProfileID        kernel.UUID
	Status              string
	PricingMode         string
	Currency            string
	WindowStart         time.Time
	WindowEnd           time.Time
	HourlyRateCents     *int64
	QuotedAmountCents   *int64
	EstimatedHours      *string
	FinalHoursSubmitted *string
	ApprovedHours       *string
	TotalAmountCents    *int64
	DisputeReason       *string
	ChatOpen            bool
	Payment             *OrderPaymentView
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int64
}

// OrderPaymentView summarises the order's active payment.
type OrderPaymentView struct {
	ID              kernel.UUID
	Status          string
	AuthorizedCents int64
	CapturedCents   int64
	RefundedCents   int64
	CheckoutURL     string
}
