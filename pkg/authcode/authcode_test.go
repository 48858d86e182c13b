package authcode

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	s, err := New([]byte("test-secret"), "pms", time.Minute)
	require.NoError(t, err)

	uid, sid := uuid.New(), uuid.New()
	code, id, err := s.Issue(uid, sid)
	require.NoError(t, err)

	claims, err := s.Parse(code)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.UserID())
	assert.Equal(t, sid, claims.Session())
	assert.Equal(t, id, claims.ID)
}

func TestParseRejects(t *testing.T) {
	s, err := New([]byte("test-secret"), "pms", time.Minute)
	require.NoError(t, err)
	code, _, err := s.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	other, err := New([]byte("other-secret"), "pms", time.Minute)
	require.NoError(t, err)
	_, err = other.Parse(code)
	assert.ErrorIs(t, err, ErrInvalid)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = s.Parse(code)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = s.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(nil, "pms", 0)
	assert.ErrorIs(t, err, ErrNoSecret)

	s, err := New([]byte("x"), "pms", 0)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, s.TTL())
}
