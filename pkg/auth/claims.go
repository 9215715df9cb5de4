package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTokenPayload captures the data available when minting a JWT.
type SessionTokenPayload struct {
	UserID uuid.UUID
}

// SessionTokenClaims represents the typed JWT issued to clients. The token is
// an opaque bearer credential carrying only the user identifier.
type SessionTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}
