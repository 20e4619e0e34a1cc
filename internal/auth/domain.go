package auth

import "time"

// User represents an authenticated user account. The role is assigned by
// the identity provider at account creation and is fixed for each session
// issued against it.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
