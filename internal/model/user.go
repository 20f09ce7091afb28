package model

import "time"

// User represents a quiz host account.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HostLoginRequest is the payload for host authentication.
type HostLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// HostLoginResponse is returned after successful host login.
type HostLoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
