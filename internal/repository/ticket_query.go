package repository

import (
	"fmt"
	"strings"

	"github.com/deskops/support-desk/internal/domain"
)

// TicketSortField is a column the listing may be ordered by.
type TicketSortField string

const (
	SortByCreatedAt TicketSortField = "created_at"
	SortByPriority  TicketSortField = "priority"
	SortByStatus    TicketSortField = "status"
)

// TicketQuery is a sanitized listing request. Nil filters are not applied.
type TicketQuery struct {
	Status         *domain.TicketStatus
	Priority       *domain.TicketPriority
	CustomerID     *int64
	AssignedUserID *int64
	TagID          *int64
	TagName        *string
	Search         *string
	SortBy         TicketSortField
	SortDesc       bool
	Limit          int
	Offset         int
}

// buildTicketWhere renders the WHERE clause and its positional arguments.
// Every user-supplied value is bound as an argument.
func buildTicketWhere(q TicketQuery) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if q.Status != nil {
		args = append(args, string(*q.Status))
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if q.Priority != nil {
		args = append(args, string(*q.Priority))
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if q.CustomerID != nil {
		args = append(args, *q.CustomerID)
		clauses = append(clauses, fmt.Sprintf("t.customer_id=$%d", len(args)))
	}
	if q.AssignedUserID != nil {
		args = append(args, *q.AssignedUserID)
		clauses = append(clauses, fmt.Sprintf("t.assigned_user_id=$%d", len(args)))
	}
	if q.TagID != nil {
		args = append(args, *q.TagID)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM ticket_tag tt WHERE tt.ticket_id = t.id AND tt.tag_id = $%d)", len(args)))
	} else if q.TagName != nil {
		args = append(args, *q.TagName)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM ticket_tag tt JOIN tags g ON g.id = tt.tag_id WHERE tt.ticket_id = t.id AND g.name = $%d)", len(args)))
	}
	if q.Search != nil && *q.Search != "" {
		args = append(args, "%"+EscapeLike(*q.Search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(t.subject ILIKE %s ESCAPE '\' OR t.description ILIKE %s ESCAPE '\')`, placeholder, placeholder))
	}

	return strings.Join(clauses, " AND "), args
}

// buildTicketOrder renders ORDER BY. Only constant expressions reach the SQL.
func buildTicketOrder(q TicketQuery) string {
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	var expr string
	switch q.SortBy {
	case SortByPriority:
		expr = rankExpression("t.priority", priorityValues())
	case SortByStatus:
		expr = rankExpression("t.status", statusValues())
	default:
		expr = "t.created_at"
	}
	return fmt.Sprintf("%s %s, t.id ASC", expr, direction)
}

func rankExpression(column string, ordered []string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for i, value := range ordered {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", value, i+1)
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

func priorityValues() []string {
	values := make([]string, 0, len(domain.TicketPriorities))
	for _, p := range domain.TicketPriorities {
		values = append(values, string(p))
	}
	return values
}

func statusValues() []string {
	values := make([]string, 0, len(domain.TicketStatuses))
	for _, s := range domain.TicketStatuses {
		values = append(values, string(s))
	}
	return values
}

// EscapeLike escapes LIKE metacharacters so the term matches literally.
func EscapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
