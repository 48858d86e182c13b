package reqctx

import (
	"context"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/enum"
)

// Identity is the authenticated caller. It is built from a verified access
// token and never from client-supplied fields.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      enum.UserType
}

func (i Identity) IsPractitioner() bool { return i.Role == enum.UserTypePractitioner }
func (i Identity) IsPatient() bool      { return i.Role == enum.UserTypeUser }
func (i Identity) IsAdmin() bool        { return i.Role == enum.UserTypeAdmin }

// WithIdentity stores the caller in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, keyIdentity, id)
}

// IdentityFromContext returns the caller, or false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(keyIdentity).(Identity)
	return id, ok && id.UserID != uuid.Nil
}

// UserIDFromContext returns the caller's user id.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}
