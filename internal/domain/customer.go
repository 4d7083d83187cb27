package domain

import "time"

// Customer owns the tickets they report.
type Customer struct {
	ID                int64
	Name              string
	Email             string
	ExternalReference *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
