package domain

import (
	"errors"
	"time"
)

// TicketUpdateType differentiates the entries of a ticket thread.
type TicketUpdateType string

const (
	UpdateTypeComment      TicketUpdateType = "comment"
	UpdateTypeInternalNote TicketUpdateType = "internal_note"
	UpdateTypeStatusChange TicketUpdateType = "status_change"
)

var ErrUnknownUpdateType = errors.New("unknown ticket update type")

// TicketUpdateTypes lists every update type.
var TicketUpdateTypes = []TicketUpdateType{
	UpdateTypeComment,
	UpdateTypeInternalNote,
	UpdateTypeStatusChange,
}

// ParseTicketUpdateType fails for anything outside TicketUpdateTypes.
func ParseTicketUpdateType(s string) (TicketUpdateType, error) {
	for _, t := range TicketUpdateTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", ErrUnknownUpdateType
}

// TicketUpdate is an append-only entry in a ticket thread.
type TicketUpdate struct {
	ID              int64
	TicketID        int64
	CreatedByUserID int64
	Body            string
	Type            TicketUpdateType
	CreatedAt       time.Time
	UpdatedAt       time.Time

	CreatedBy *User
	Ticket    *Ticket
}

// IsInternalNote reports whether the update is hidden from external viewers.
func (u *TicketUpdate) IsInternalNote() bool {
	return u.Type == UpdateTypeInternalNote
}

// IsComment reports whether the update can reopen a ticket.
func (u *TicketUpdate) IsComment() bool {
	return u.Type == UpdateTypeComment
}
