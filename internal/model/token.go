package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager generates and validates session tokens.
type TokenManager interface {
	GenerateSessionToken(userID uuid.UUID) (token string, jti string, expiresAt time.Time, err error)
	ParseSessionToken(token string) (userID uuid.UUID, jti string, err error)
}
