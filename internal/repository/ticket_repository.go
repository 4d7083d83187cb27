package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/deskops/support-desk/internal/domain"
)

const ticketSelect = `
        SELECT t.id, t.customer_id, t.subject, t.description, t.status, t.priority, t.assigned_user_id,
               t.opened_at, t.resolved_at, t.created_at, t.updated_at,
               c.id, c.name, c.email, c.external_reference, c.created_at, c.updated_at,
               u.id, u.name, u.email, u.created_at, u.updated_at
        FROM tickets t
        JOIN customers c ON c.id = t.customer_id
        LEFT JOIN users u ON u.id = t.assigned_user_id`

type ticketRepository struct {
	db DBTX
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_id, subject, description, status, priority, assigned_user_id, opened_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.CustomerID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedUserID,
		ticket.OpenedAt,
		ticket.ResolvedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return mapError(err)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, status=$3, priority=$4,
            assigned_user_id=$5, resolved_at=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedUserID,
		ticket.ResolvedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return mapError(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE t.id=$1`, id)
}

func (r *ticketRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE t.id=$1 FOR UPDATE OF t`, id)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, q TicketQuery) ([]domain.Ticket, int, error) {
	where, args := buildTicketWhere(q)

	var total int
	countQuery := `SELECT COUNT(*) FROM tickets t WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 15
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		ticketSelect, where, buildTicketOrder(q), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

type assignedUserColumns struct {
	id        *int64
	name      *string
	email     *string
	createdAt *time.Time
	updatedAt *time.Time
}

func (a assignedUserColumns) user() *domain.User {
	if a.id == nil {
		return nil
	}
	user := &domain.User{ID: *a.id}
	if a.name != nil {
		user.Name = *a.name
	}
	if a.email != nil {
		user.Email = *a.email
	}
	if a.createdAt != nil {
		user.CreatedAt = *a.createdAt
	}
	if a.updatedAt != nil {
		user.UpdatedAt = *a.updatedAt
	}
	return user
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		customer domain.Customer
		assigned assignedUserColumns
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedUserID,
		&ticket.OpenedAt,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.ExternalReference,
		&customer.CreatedAt,
		&customer.UpdatedAt,
		&assigned.id,
		&assigned.name,
		&assigned.email,
		&assigned.createdAt,
		&assigned.updatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Customer = &customer
	ticket.AssignedUser = assigned.user()
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
