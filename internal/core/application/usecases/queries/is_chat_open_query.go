package queries

import (
	"errors"

	"booking/internal/core/domain/model/kernel"
	"booking/internal/pkg/errs"
	"booking/internal/pkg/guard"
)

var ErrIsChatOpenQueryIsNotConstructed = errors.New("IsChatOpenQuery must be created via NewIsChatOpenQuery constructor")

// IsChatOpenQuery asks whether the order's chat currently accepts messages.
type IsChatOpenQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewIsChatOpenQuery(orderID kernel.UUID) (IsChatOpenQuery, error) {
	if err := orderID.Validate(); err != nil {
		return IsChatOpenQuery{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	return IsChatOpenQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q IsChatOpenQuery) Validate() error {
	return q.guard.Validate(ErrIsChatOpenQueryIsNotConstructed)
}

func (q IsChatOpenQuery) OrderID() kernel.UUID {
	return q.orderID
}

type IsChatOpenQueryResponse struct {
	OrderID kernel.UUID
	Status  string
	Open    bool
}
