package service

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/deskops/support-desk/internal/domain"
	"github.com/deskops/support-desk/internal/repository"
)

const (
	MinPerPage      = 1
	MaxPerPage      = 100
	maxSearchLength = 255
)

// ListFilters is the raw, untrusted listing input. Values that do not
// sanitize are dropped rather than reported.
type ListFilters struct {
	Status         string
	Priority       string
	Tag            string
	CustomerID     string
	AssignedUserID string
	Search         string
	SortBy         string
	SortOrder      string
}

// TicketPage is one page of a ticket listing.
type TicketPage struct {
	Tickets     []domain.Ticket
	Total       int
	PerPage     int
	CurrentPage int
	LastPage    int
}

// ClampPerPage bounds the page size to [MinPerPage, MaxPerPage].
func ClampPerPage(perPage int) int {
	if perPage < MinPerPage {
		return MinPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// BuildTicketQuery sanitizes filters into a repository query.
func BuildTicketQuery(filters ListFilters, perPage, page int) repository.TicketQuery {
	perPage = ClampPerPage(perPage)
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / perPage; page > maxPage {
		page = maxPage
	}

	q := repository.TicketQuery{
		SortBy:   repository.SortByCreatedAt,
		SortDesc: true,
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}

	if status, ok := domain.LookupTicketStatus(filters.Status); ok {
		q.Status = &status
	}
	if priority, ok := domain.LookupTicketPriority(filters.Priority); ok {
		q.Priority = &priority
	}
	if id, ok := positiveID(filters.CustomerID); ok {
		q.CustomerID = &id
	}
	if id, ok := positiveID(filters.AssignedUserID); ok {
		q.AssignedUserID = &id
	}

	if tag := strings.TrimSpace(filters.Tag); tag != "" {
		if id, ok := numericTagID(tag); ok {
			q.TagID = &id
		} else {
			name := filters.Tag
			q.TagName = &name
		}
	}

	if search := strings.TrimSpace(filters.Search); search != "" && utf8.RuneCountInString(search) <= maxSearchLength {
		q.Search = &search
	}

	switch repository.TicketSortField(filters.SortBy) {
	case repository.SortByCreatedAt, repository.SortByPriority, repository.SortByStatus:
		q.SortBy = repository.TicketSortField(filters.SortBy)
	}
	if strings.EqualFold(filters.SortOrder, "asc") {
		q.SortDesc = false
	}

	return q
}

var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// numericTagID reports whether the tag filter is a number and, if so, the id
// it selects. Numbers with a fraction or out of range select id 0, which
// matches no tag.
func numericTagID(raw string) (int64, bool) {
	if !numericPattern.MatchString(raw) {
		return 0, false
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, true
	}
	return int64(f), true
}

func positiveID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListTickets returns one page of tickets with customer, assignee and tags.
func (s *TicketService) ListTickets(ctx context.Context, filters ListFilters, perPage, page int) (*TicketPage, error) {
	q := BuildTicketQuery(filters, perPage, page)

	tickets, total, err := s.store.Tickets().List(ctx, q)
	if err != nil {
		return nil, s.storeError("list tickets", err)
	}

	ids := make([]int64, 0, len(tickets))
	for _, ticket := range tickets {
		ids = append(ids, ticket.ID)
	}
	tags, err := s.store.Tags().ListByTickets(ctx, ids)
	if err != nil {
		return nil, s.storeError("list ticket tags", err)
	}
	for i := range tickets {
		tickets[i].Tags = tags[tickets[i].ID]
		if tickets[i].Tags == nil {
			tickets[i].Tags = []domain.Tag{}
		}
	}

	lastPage := (total + q.Limit - 1) / q.Limit
	if lastPage < 1 {
		lastPage = 1
	}
	return &TicketPage{
		Tickets:     tickets,
		Total:       total,
		PerPage:     q.Limit,
		CurrentPage: q.Offset/q.Limit + 1,
		LastPage:    lastPage,
	}, nil
}
