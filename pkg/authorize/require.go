package authorize

import (
	"context"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/pkg/reqctx"
)

// RequireRole fails with ErrForbidden unless the caller holds exactly role.
// It is the predicate behind the practitioner-only and patient-only guards.
func RequireRole(_ context.Context, id reqctx.Identity, role Role) error {
	if id.UserID == uuid.Nil || RoleFor(id.Role) != role {
		return ErrForbidden
	}
	return nil
}

// RequireIdentity enforces (caller role, object, action) against the policy.
func RequireIdentity(ctx context.Context, auth IAuthorization, id reqctx.Identity, object Resource, action Action) error {
	if id.UserID == uuid.Nil {
		return ErrForbidden
	}
	return auth.MustEnforce(ctx, RoleFor(id.Role), object, action)
}
