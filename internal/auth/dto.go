package auth

import (
	"github.com/angelmondragon/storefront/internal/users"
)

// RegisterRequest captures the payload for creating a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the session token and user produced by a successful
// registration or login.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
