package queries

import (
	"context"
	"database/sql"
	"errors"

	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/services"
	"booking/internal/pkg/errs"

	"gorm.io/gorm"
)

// IsChatOpenQueryHandler reads the persisted status on every call. Nothing is
// cached, so a transition is visible to the next call.
type IsChatOpenQueryHandler struct {
	db *gorm.DB
}

func NewIsChatOpenQueryHandler(db *gorm.DB) IsChatOpenQueryHandler {
	return IsChatOpenQueryHandler{db: db}
}

func (h IsChatOpenQueryHandler) Handle(ctx context.Context, query IsChatOpenQuery) (IsChatOpenQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return IsChatOpenQueryResponse{}, err
	}

	var raw string
	err := h.db.WithContext(ctx).
		Raw(`SELECT status FROM orders WHERE id = ?`, query.OrderID().Bytes()).
		Row().Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return IsChatOpenQueryResponse{}, errs.NewObjectNotFoundError("orderId", query.OrderID())
	}
	if err != nil {
		return IsChatOpenQueryResponse{}, err
	}

	status, err := order.ParseStatus(raw)
	if err != nil {
		return IsChatOpenQueryResponse{}, err
	}
	return IsChatOpenQueryResponse{
		OrderID: query.OrderID(),
		Status:  status.String(),
		Open:    services.IsChatOpenStatus(status),
	}, nil
}
