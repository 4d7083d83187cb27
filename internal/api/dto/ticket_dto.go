package dto

import (
	"time"

	"github.com/deskops/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID     int64  `json:"customer_id" validate:"required,gt=0"`
	Subject        string `json:"subject" validate:"required,max=255"`
	Description    string `json:"description" validate:"required"`
	Status         string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
	Priority       string `json:"priority" validate:"required,oneof=low medium high urgent"`
	AssignedUserID *int64 `json:"assigned_user_id" validate:"omitnil,gt=0"`
}

// UpdateTicketRequest is a partial update; absent fields are left unchanged.
type UpdateTicketRequest struct {
	Subject        *string       `json:"subject" validate:"omitnil,min=1,max=255"`
	Description    *string       `json:"description" validate:"omitnil,min=1"`
	Status         *string       `json:"status" validate:"omitnil,oneof=open in_progress resolved closed"`
	Priority       *string       `json:"priority" validate:"omitnil,oneof=low medium high urgent"`
	AssignedUserID NullableInt64 `json:"assigned_user_id"`
}

// CreateTicketUpdateRequest payload.
type CreateTicketUpdateRequest struct {
	Body string `json:"body" validate:"required"`
	Type string `json:"type" validate:"required,oneof=comment internal_note status_change"`
}

// TicketResponse mirrors a ticket with whichever relations were loaded.
type TicketResponse struct {
	ID             int64                   `json:"id"`
	Customer       *CustomerResponse       `json:"customer,omitempty"`
	Subject        string                  `json:"subject"`
	Description    string                  `json:"description"`
	Status         domain.TicketStatus     `json:"status"`
	Priority       domain.TicketPriority   `json:"priority"`
	AssignedUser   *UserResponse           `json:"assigned_user"`
	AssignedUserID *int64                  `json:"assigned_user_id"`
	OpenedAt       time.Time               `json:"opened_at"`
	ResolvedAt     *time.Time              `json:"resolved_at"`
	Tags           []TagResponse           `json:"tags"`
	Updates        *[]TicketUpdateResponse `json:"updates,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// TicketUpdateResponse represents a thread entry.
type TicketUpdateResponse struct {
	ID              int64                   `json:"id"`
	TicketID        int64                   `json:"ticket_id"`
	CreatedBy       *UserResponse           `json:"created_by,omitempty"`
	CreatedByUserID int64                   `json:"created_by_user_id"`
	Body            string                  `json:"body"`
	Type            domain.TicketUpdateType `json:"type"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// TagResponse represents a tag.
type TagResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Colour string `json:"colour"`
}

// UserResponse represents an agent.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TagActionResponse is returned by attach and detach.
type TagActionResponse struct {
	Message string         `json:"message"`
	Ticket  TicketResponse `json:"ticket"`
}

// PageMeta carries pagination counters.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// PageLinks carries navigation URLs; prev and next are null at the edges.
type PageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// TicketListResponse is the paginated listing envelope.
type TicketListResponse struct {
	Data  []TicketResponse `json:"data"`
	Meta  PageMeta         `json:"meta"`
	Links PageLinks        `json:"links"`
}
