package queries

import (
	"context"
	"database/sql"
	"errors"

	"booking/internal/core/domain/model/audit"
	"booking/internal/core/domain/model/kernel"
	"booking/internal/core/domain/model/order"
	"booking/internal/core/domain/model/payment"
	"booking/internal/core/domain/services"
	"booking/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads the order row directly, bypassing the aggregate.
// Only the client, the pro's user and admins may see an order.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var (
		resp                         GetOrderQueryResponse
		id, clientID, proID, proUser uuid.UUID
	)
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id, o.client_id, o.pro_profile_id, p.user_id,
			o.status, o.pricing_mode, o.currency,
			o.window_start, o.window_end,
			o.hourly_rate_cents, o.quoted_amount_cents, o.estimated_hours,
			o.final_hours_submitted, o.approved_hours, o.total_amount_cents,
			o.dispute_reason,
			o.created_at, o.updated_at, o.version
		FROM orders o
		JOIN pro_profiles p ON p.id = o.pro_profile_id
		WHERE o.id = ?
	`, query.OrderID().Bytes()).Row().Scan(
		&id, &clientID, &proID, &proUser,
		&resp.Status, &resp.PricingMode, &resp.Currency,
		&resp.WindowStart, &resp.WindowEnd,
		&resp.HourlyRateCents, &resp.QuotedAmountCents, &resp.EstimatedHours,
		&resp.FinalHoursSubmitted, &resp.ApprovedHours, &resp.TotalAmountCents,
		&resp.DisputeReason,
		&resp.CreatedAt, &resp.UpdatedAt, &resp.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewObjectNotFoundError("orderId", query.OrderID())
	}
	if err != nil {
		return nil, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return nil, err
	}
	if resp.ClientID, err = kernel.UUIDFromBytes(clientID[:]); err != nil {
		return nil, err
	}
	if resp.ProProfileID, err = kernel.UUIDFromBytes(proID[:]); err != nil {
		return nil, err
	}

	if !canView(query.Actor(), resp.ClientID, proUser) {
		return nil, errs.NewForbiddenError(query.Actor().IDString(), audit.EntityOrder, resp.ID.String())
	}

	status, err := order.ParseStatus(resp.Status)
	if err != nil {
		return nil, err
	}
	resp.ChatOpen = services.IsChatOpenStatus(status)

	if resp.Payment, err = h.activePayment(ctx, resp.ID); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h GetOrderQueryHandler) activePayment(ctx context.Context, orderID kernel.UUID) (*OrderPaymentView, error) {
	var (
		view OrderPaymentView
		id   uuid.UUID
	)
	err := h.db.WithContext(ctx).Raw(`
		SELECT id, status, authorized_cents, captured_cents, refunded_cents, checkout_url
		FROM payments
		WHERE order_id = ? AND status NOT IN (?, ?)
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID.Bytes(), payment.Failed.String(), payment.Cancelled.String()).Row().Scan(
		&id, &view.Status, &view.AuthorizedCents, &view.CapturedCents, &view.RefundedCents, &view.CheckoutURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no active payment
	}
	if err != nil {
		return nil, err
	}
	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return nil, err
	}
	return &view, nil
}

func canView(actor order.Actor, clientID kernel.UUID, proUser uuid.UUID) bool {
	switch actor.Role() {
	case order.RoleAdmin, order.RoleSystem:
		return true
	case order.RoleClient:
		return actor.ID().IsEqual(clientID)
	case order.RolePro:
		return actor.ID().Bytes() == proUser
	default:
		return false
	}
}
