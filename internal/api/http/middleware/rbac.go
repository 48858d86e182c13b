package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/pms_backend/pkg/authorize"
)

// MsgAccessDenied is returned by every role or policy refusal.
const MsgAccessDenied = "You currently do not have access to this resource"

func denied(err error) error {
	if errors.Is(err, authorize.ErrForbidden) {
		return fiber.NewError(fiber.StatusForbidden, MsgAccessDenied)
	}
	return err
}

// RequirePermission checks the caller's role against the casbin policy for
// (resource, action).
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, ok := IdentityFromFiber(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, MsgNotAuthenticated)
		}
		if err := authorize.RequireIdentity(c.Context(), auth, id, resource, action); err != nil {
			return denied(err)
		}
		return c.Next()
	}
}

// RequireRole lets only callers holding exactly role through.
func RequireRole(role authorize.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, _ := IdentityFromFiber(c)
		if err := authorize.RequireRole(c.Context(), id, role); err != nil {
			return denied(err)
		}
		return c.Next()
	}
}

func PractitionerOnly() fiber.Handler { return RequireRole(authorize.RolePractitioner) }

func PatientOnly() fiber.Handler { return RequireRole(authorize.RoleUser) }
