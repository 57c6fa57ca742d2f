package ports

import (
	"context"
	"time"
)

// OrderStatusChange is published after a status change is committed.
type OrderStatusChange struct {
	OrderID        string    `json:"orderId"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	ChatOpen       bool      `json:"chatOpen"`
	Forced         bool      `json:"forced"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// StatusNotifier fans status changes out to the chat transport and other
// listeners. Delivery is best effort; callers log failures and move on.
type StatusNotifier interface {
	OrderStatusChanged(ctx context.Context, change OrderStatusChange) error
}
