package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/faya/preorder-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user_registered"
	EventOrderPlaced        EventType = "order_placed"
	EventOrderStatusChanged EventType = "order_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ActorID   string    `json:"actor_id"`
	OrderID   string    `json:"order_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserRegisteredPayload payload. The email is not carried.
type UserRegisteredPayload struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	VendorID         string `json:"vendor_id"`
	StudentID        string `json:"student_id"`
	ItemCount        int    `json:"item_count"`
	TotalAmountCents int64  `json:"total_amount_cents"`
}

// OrderStatusChangedPayload payload.
type OrderStatusChangedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
}
