package repository

import (
	"context"

	"github.com/deskops/support-desk/internal/domain"
)

type tagRepository struct {
	db DBTX
}

func (r *tagRepository) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	const query = `SELECT id, name, colour, created_at, updated_at FROM tags WHERE id=$1`

	var tag domain.Tag
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&tag.ID,
		&tag.Name,
		&tag.Colour,
		&tag.CreatedAt,
		&tag.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &tag, nil
}

func (r *tagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	const query = `SELECT id, name, colour, created_at, updated_at FROM tags ORDER BY name ASC, id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Colour, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}

func (r *tagRepository) Upsert(ctx context.Context, tag *domain.Tag) error {
	const query = `
        INSERT INTO tags (name, colour)
        VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET colour=EXCLUDED.colour, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, tag.Name, tag.Colour).Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	return mapError(err)
}

func (r *tagRepository) Attach(ctx context.Context, ticketID, tagID int64) (bool, error) {
	const query = `
        INSERT INTO ticket_tag (ticket_id, tag_id)
        VALUES ($1, $2)
        ON CONFLICT (ticket_id, tag_id) DO NOTHING`
	cmd, err := r.db.Exec(ctx, query, ticketID, tagID)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, mapError(err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *tagRepository) Detach(ctx context.Context, ticketID, tagID int64) (bool, error) {
	const query = `DELETE FROM ticket_tag WHERE ticket_id=$1 AND tag_id=$2`
	cmd, err := r.db.Exec(ctx, query, ticketID, tagID)
	if err != nil {
		return false, mapError(err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *tagRepository) ListByTickets(ctx context.Context, ticketIDs []int64) (map[int64][]domain.Tag, error) {
	result := make(map[int64][]domain.Tag, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT tt.ticket_id, g.id, g.name, g.colour, g.created_at, g.updated_at
        FROM ticket_tag tt
        JOIN tags g ON g.id = tt.tag_id
        WHERE tt.ticket_id = ANY($1)
        ORDER BY g.name ASC, g.id ASC`
	rows, err := r.db.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ticketID int64
			tag      domain.Tag
		)
		if err := rows.Scan(&ticketID, &tag.ID, &tag.Name, &tag.Colour, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, err
		}
		result[ticketID] = append(result[ticketID], tag)
	}
	return result, rows.Err()
}
