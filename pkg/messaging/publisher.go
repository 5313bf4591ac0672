// Package messaging defines the events the inventory publishes and the publisher abstraction.
package messaging

import (
	"context"
)

const (
	// AlertsStream is the JetStream stream holding inventory alerts.
	AlertsStream = "INVENTORY_ALERTS"
	// LowStockSubject carries a LowStockEvent for every mutation that leaves a product at high risk.
	LowStockSubject = "inventory.alerts.low_stock"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
