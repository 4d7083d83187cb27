package domain

import (
	"errors"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates ticket urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

var (
	ErrUnknownStatus   = errors.New("unknown ticket status")
	ErrUnknownPriority = errors.New("unknown ticket priority")
)

// TicketStatuses lists every status in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// TicketPriorities lists every priority from least to most severe.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// ParseTicketStatus is the strict parser used when mutating tickets.
func ParseTicketStatus(s string) (TicketStatus, error) {
	status, ok := LookupTicketStatus(s)
	if !ok {
		return "", ErrUnknownStatus
	}
	return status, nil
}

// LookupTicketStatus reports whether s names a known status. Query filters use
// it so that unknown values are dropped instead of failing the request.
func LookupTicketStatus(s string) (TicketStatus, bool) {
	for _, status := range TicketStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// ParseTicketPriority is the strict parser used when mutating tickets.
func ParseTicketPriority(s string) (TicketPriority, error) {
	priority, ok := LookupTicketPriority(s)
	if !ok {
		return "", ErrUnknownPriority
	}
	return priority, nil
}

// LookupTicketPriority is the lenient counterpart of ParseTicketPriority.
func LookupTicketPriority(s string) (TicketPriority, bool) {
	for _, priority := range TicketPriorities {
		if string(priority) == s {
			return priority, true
		}
	}
	return "", false
}

// Rank orders statuses along the lifecycle, open first.
func (s TicketStatus) Rank() int {
	for i, status := range TicketStatuses {
		if status == s {
			return i + 1
		}
	}
	return 0
}

// Rank orders priorities by severity, low first.
func (p TicketPriority) Rank() int {
	for i, priority := range TicketPriorities {
		if priority == p {
			return i + 1
		}
	}
	return 0
}

// Ticket is the aggregate for customer support requests.
type Ticket struct {
	ID             int64
	CustomerID     int64
	Subject        string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	AssignedUserID *int64
	OpenedAt       time.Time
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Customer     *Customer
	AssignedUser *User
	Tags         []Tag
	Updates      []TicketUpdate
}

// IsResolvedOrClosed reports whether a new comment would reopen the ticket.
func (t *Ticket) IsResolvedOrClosed() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusClosed
}

// DeriveResolvedAt computes resolved_at for a status write. Entering resolved
// stamps now, staying resolved keeps the existing stamp, and any other status
// clears it.
func DeriveResolvedAt(oldStatus, newStatus TicketStatus, oldResolvedAt *time.Time, now time.Time) *time.Time {
	if newStatus != TicketStatusResolved {
		return nil
	}
	if oldStatus != TicketStatusResolved {
		stamp := now
		return &stamp
	}
	return oldResolvedAt
}
