// Package redisnotify publishes order status changes on a Redis channel so chat
// and other realtime services can open or close conversations without polling.
// The last change per order is also kept under a key for late subscribers.
package redisnotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"booking/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultChannel = "booking.order-status"
	keyPrefix      = "booking:order-status:"
)

type Notifier struct {
	client  *redis.Client
	channel string
	ttl     time.Duration
}

func NewNotifier(client *redis.Client, channel string, ttl time.Duration) *Notifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Notifier{client: client, channel: channel, ttl: ttl}
}

func (n *Notifier) OrderStatusChanged(ctx context.Context, change ports.OrderStatusChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}

	pipe := n.client.TxPipeline()
	pipe.Set(ctx, LatestKey(change.OrderID), payload, n.ttl)
	pipe.Publish(ctx, n.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish status change for order %s: %w", change.OrderID, err)
	}
	return nil
}

// Latest returns the last published change for an order, or false if none is cached.
func (n *Notifier) Latest(ctx context.Context, orderID string) (ports.OrderStatusChange, bool, error) {
	var change ports.OrderStatusChange
	raw, err := n.client.Get(ctx, LatestKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return change, false, nil
	}
	if err != nil {
		return change, false, err
	}
	if err := json.Unmarshal(raw, &change); err != nil {
		return change, false, err
	}
	return change, true, nil
}

func LatestKey(orderID string) string {
	return keyPrefix + orderID
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) OrderStatusChanged(context.Context, ports.OrderStatusChange) error { return nil }
