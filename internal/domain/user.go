package domain

import "time"

// User is an account that can log in with a username and password.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	// Roles are ordered; the first one is what tokens carry.
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
