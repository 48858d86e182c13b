package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	pasetotoken "github.com/Alijeyrad/pms_backend/pkg/paseto"
	"github.com/Alijeyrad/pms_backend/pkg/reqctx"
)

const (
	MsgNotAuthenticated = "Authentication credentials were not provided."
	MsgInvalidToken     = "Given token not valid for any token type"
)

// SessionChecker reports whether a login session is still live.
type SessionChecker interface {
	Exists(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// AuthRequired validates a Bearer PASETO access token and checks its session.
// On success the caller's reqctx.Identity is attached to the request context.
func AuthRequired(mgr *pasetotoken.Manager, sessions SessionChecker) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		if h == "" {
			return fiber.NewError(fiber.StatusUnauthorized, MsgNotAuthenticated)
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, MsgNotAuthenticated)
		}

		// Only access tokens are accepted on protected routes
		claims, err := mgr.Verify(strings.TrimSpace(parts[1]), pasetotoken.TokenTypeAccess)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, MsgInvalidToken)
		}

		live, err := sessions.Exists(c.Context(), claims.SessionID)
		if err != nil {
			return err
		}
		if !live {
			return fiber.NewError(fiber.StatusUnauthorized, MsgInvalidToken)
		}

		c.SetContext(reqctx.WithIdentity(c.Context(), claims.Identity()))
		return c.Next()
	}
}

// IdentityFromFiber returns the caller attached by AuthRequired.
func IdentityFromFiber(c fiber.Ctx) (reqctx.Identity, bool) {
	return reqctx.IdentityFromContext(c.Context())
}
