package order

import (
	"context"
	"time"
)

type EventType string

const (
	EventStatusUpdated EventType = "order.status_updated"
	EventDeleted       EventType = "order.deleted"
)

type Event struct {
	Type    EventType `json:"type"`
	OrderID string    `json:"order_id"`
	Status  Status    `json:"status,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
