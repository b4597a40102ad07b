// Package events fans state changes out to kitchen displays and table
// boards. Delivery is best effort: the publishing operation has already
// committed, and a failed or missed broadcast is never surfaced to it.
package events

import "time"

const (
	TypeSessionStarted   = "session.started"
	TypeSessionCancelled = "session.cancelled"
	TypeTableChanged     = "table.changed"
	TypeOrderPlaced      = "order.placed"
	TypeOrderConfirmed   = "order.confirmed"
	TypeOrderChanged     = "order.changed"
	TypeKitchenChanged   = "kitchen.changed"
	TypeBillFinalized    = "bill.finalized"
	TypeBillPaid         = "bill.paid"
)

// Event is one broadcast state change.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// Publisher is the fire-and-forget sink handed to domain services.
type Publisher interface {
	Publish(eventType string, payload map[string]any)
}
