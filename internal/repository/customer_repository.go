package repository

import (
	"context"

	"github.com/deskops/support-desk/internal/domain"
)

type customerRepository struct {
	db DBTX
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, email, external_reference)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		customer.Name,
		customer.Email,
		customer.ExternalReference,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	return mapError(err)
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const query = `
        SELECT id, name, email, external_reference, created_at, updated_at
        FROM customers WHERE id=$1`

	var customer domain.Customer
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.ExternalReference,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &customer, nil
}
