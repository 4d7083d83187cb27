package dto

import "time"

// CreateCustomerRequest payload.
type CreateCustomerRequest struct {
	Name              string  `json:"name" validate:"required,max=255"`
	Email             string  `json:"email" validate:"required,email,max=255"`
	ExternalReference *string `json:"external_reference" validate:"omitnil,max=255"`
}

// CustomerResponse represents a customer.
type CustomerResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	ExternalReference *string   `json:"external_reference"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
