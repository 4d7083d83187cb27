package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deskops/support-desk/internal/domain"
)

func TestBuildTicketWhereBindsEveryValue(t *testing.T) {
	status := domain.TicketStatusOpen
	priority := domain.TicketPriorityHigh
	customerID := int64(4)
	assigned := int64(9)
	tagName := "bug'; DROP TABLE tickets; --"
	search := "50%_off"

	where, args := buildTicketWhere(TicketQuery{
		Status:         &status,
		Priority:       &priority,
		CustomerID:     &customerID,
		AssignedUserID: &assigned,
		TagName:        &tagName,
		Search:         &search,
	})

	assert.NotContains(t, where, "DROP TABLE")
	assert.NotContains(t, where, "50")
	assert.Contains(t, where, "t.status=$1")
	assert.Contains(t, where, "t.priority=$2")
	assert.Contains(t, where, "t.customer_id=$3")
	assert.Contains(t, where, "t.assigned_user_id=$4")
	assert.Contains(t, where, "g.name = $5")
	assert.Contains(t, where, "t.subject ILIKE $6")
	assert.Equal(t, []any{"open", "high", int64(4), int64(9), tagName, `%50\%\_off%`}, args)
}

func TestBuildTicketWhereEmpty(t *testing.T) {
	where, args := buildTicketWhere(TicketQuery{})
	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
}

func TestBuildTicketWherePrefersTagID(t *testing.T) {
	id := int64(3)
	name := "bug"
	where, args := buildTicketWhere(TicketQuery{TagID: &id, TagName: &name})
	assert.Contains(t, where, "tt.tag_id = $1")
	assert.NotContains(t, where, "g.name")
	assert.Equal(t, []any{int64(3)}, args)
}

func TestBuildTicketOrder(t *testing.T) {
	tests := []struct {
		name   string
		query  TicketQuery
		prefix string
		suffix string
	}{
		{"default created_at desc", TicketQuery{SortDesc: true}, "t.created_at DESC", ", t.id ASC"},
		{"created_at asc", TicketQuery{SortBy: SortByCreatedAt}, "t.created_at ASC", ", t.id ASC"},
		{"priority by rank", TicketQuery{SortBy: SortByPriority, SortDesc: true}, "CASE t.priority WHEN 'low' THEN 1", "END DESC, t.id ASC"},
		{"status by rank", TicketQuery{SortBy: SortByStatus}, "CASE t.status WHEN 'open' THEN 1", "END ASC, t.id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := buildTicketOrder(tt.query)
			assert.True(t, strings.HasPrefix(order, tt.prefix), order)
			assert.True(t, strings.HasSuffix(order, tt.suffix), order)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, EscapeLike(`a%b_c\d`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
