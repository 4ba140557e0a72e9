package dto

import "time"

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdentityResponse describes the caller.
type IdentityResponse struct {
	Username      string   `json:"username"`
	Roles         []string `json:"roles"`
	Kind          string   `json:"kind"`
	Authenticated bool     `json:"authenticated"`
}
