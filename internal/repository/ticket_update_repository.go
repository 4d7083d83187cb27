package repository

import (
	"context"

	"github.com/deskops/support-desk/internal/domain"
)

type ticketUpdateRepository struct {
	db DBTX
}

func (r *ticketUpdateRepository) Create(ctx context.Context, update *domain.TicketUpdate) error {
	const query = `
        INSERT INTO ticket_updates (ticket_id, created_by_user_id, body, type)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		update.TicketID,
		update.CreatedByUserID,
		update.Body,
		update.Type,
	).Scan(&update.ID, &update.CreatedAt, &update.UpdatedAt)
	return mapError(err)
}

func (r *ticketUpdateRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketUpdate, error) {
	const query = `
        SELECT tu.id, tu.ticket_id, tu.created_by_user_id, tu.body, tu.type, tu.created_at, tu.updated_at,
               u.id, u.name, u.email, u.created_at, u.updated_at
        FROM ticket_updates tu
        JOIN users u ON u.id = tu.created_by_user_id
        WHERE tu.ticket_id=$1
        ORDER BY tu.created_at ASC, tu.id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketUpdate{}
	for rows.Next() {
		var (
			update  domain.TicketUpdate
			creator domain.User
		)
		if err := rows.Scan(
			&update.ID,
			&update.TicketID,
			&update.CreatedByUserID,
			&update.Body,
			&update.Type,
			&update.CreatedAt,
			&update.UpdatedAt,
			&creator.ID,
			&creator.Name,
			&creator.Email,
			&creator.CreatedAt,
			&creator.UpdatedAt,
		); err != nil {
			return nil, err
		}
		update.CreatedBy = &creator
		result = append(result, update)
	}
	return result, rows.Err()
}
