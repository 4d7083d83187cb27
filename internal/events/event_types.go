package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/deskops/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketReopened EventType = "ticket_reopened"
	EventUpdateAdded    EventType = "update_added"
	EventTagAttached    EventType = "tag_attached"
	EventTagDetached    EventType = "tag_detached"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketReopened,
	EventUpdateAdded,
	EventTagAttached,
	EventTagDetached,
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	TicketID    int64       `json:"ticket_id"`
	ActorUserID *int64      `json:"actor_user_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, ticketID int64, actorUserID *int64, payload interface{}) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		TicketID:    ticketID,
		ActorUserID: actorUserID,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID int64                 `json:"customer_id"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	Subject    string                `json:"subject"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	PreviousStatus domain.TicketStatus `json:"previous_status"`
	UpdateID       int64               `json:"update_id"`
}

// UpdateAddedPayload payload.
type UpdateAddedPayload struct {
	UpdateID    int64                   `json:"update_id"`
	UpdateType  domain.TicketUpdateType `json:"update_type"`
	BodyPreview string                  `json:"body_preview"`
}

// TagPayload payload for attach and detach.
type TagPayload struct {
	TagID   int64  `json:"tag_id"`
	TagName string `json:"tag_name"`
}
