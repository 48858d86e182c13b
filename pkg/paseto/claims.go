package pasetotoken

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/pkg/reqctx"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the app-facing token payload.
type Claims struct {
	Type TokenType

	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      enum.UserType

	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string // jti
}

// Identity is the caller these claims authenticate.
func (c *Claims) Identity() reqctx.Identity {
	return reqctx.Identity{UserID: c.UserID, SessionID: c.SessionID, Role: c.Role}
}
