package domain

import "time"

// User is an internal agent. Agents author ticket updates and get tickets
// assigned to them.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
