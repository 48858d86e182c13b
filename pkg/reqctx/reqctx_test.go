package reqctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Alijeyrad/pms_backend/internal/enum"
)

func TestIdentity(t *testing.T) {
	ctx := context.Background()

	_, ok := IdentityFromContext(ctx)
	assert.False(t, ok)

	_, ok = IdentityFromContext(WithIdentity(ctx, Identity{}))
	assert.False(t, ok, "zero identity is anonymous")

	id := Identity{UserID: uuid.New(), SessionID: uuid.New(), Role: enum.UserTypePractitioner}
	got, ok := IdentityFromContext(WithIdentity(ctx, id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.True(t, got.IsPractitioner())
	assert.False(t, got.IsPatient())

	uid, ok := UserIDFromContext(WithIdentity(ctx, id))
	assert.True(t, ok)
	assert.Equal(t, id.UserID, uid)
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "abc"})
	assert.Equal(t, "abc", RequestIDFromContext(ctx))
}
