package pasetotoken

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/internal/enum"
)

func newManager(t *testing.T, keys Keys) *Manager {
	t.Helper()
	m, err := New(Config{Mode: keys.Mode, Issuer: "pms", Audience: "pms"}, keys)
	require.NoError(t, err)
	return m
}

func TestIssueAndVerify(t *testing.T) {
	for _, keys := range []Keys{NewLocalKeys(), NewPublicKeys()} {
		t.Run(string(keys.Mode), func(t *testing.T) {
			m := newManager(t, keys)
			uid, sid := uuid.New(), uuid.New()

			tok, err := m.IssueAccess(uid, sid, enum.UserTypePractitioner)
			require.NoError(t, err)

			claims, err := m.Verify(tok, TokenTypeAccess)
			require.NoError(t, err)
			assert.Equal(t, uid, claims.UserID)
			assert.Equal(t, sid, claims.SessionID)
			assert.Equal(t, enum.UserTypePractitioner, claims.Role)
			assert.NotEmpty(t, claims.TokenID)

			id := claims.Identity()
			assert.True(t, id.IsPractitioner())
			assert.Equal(t, uid, id.UserID)
		})
	}
}

func TestVerifyRejectsWrongType(t *testing.T) {
	m := newManager(t, NewLocalKeys())
	tok, err := m.IssueRefresh(uuid.New(), uuid.New(), enum.UserTypeUser)
	require.NoError(t, err)

	_, err = m.Verify(tok, TokenTypeAccess)
	assert.True(t, errors.Is(err, ErrWrongTokenType))

	_, err = m.Verify(tok, TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := newManager(t, NewLocalKeys())
	tok, err := m.IssueAccess(uuid.New(), uuid.New(), enum.UserTypeUser)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = m.Verify(tok, TokenTypeAccess)
	var invalid ErrInvalidToken
	assert.ErrorAs(t, err, &invalid)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	tok, err := newManager(t, NewLocalKeys()).IssueAccess(uuid.New(), uuid.New(), enum.UserTypeUser)
	require.NoError(t, err)

	_, err = newManager(t, NewLocalKeys()).Verify(tok, TokenTypeAccess)
	assert.Error(t, err)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Mode: ModePublic, Issuer: "a", Audience: "b"}, NewLocalKeys())
	assert.Error(t, err)
	_, err = New(Config{Mode: ModeLocal, Audience: "b"}, NewLocalKeys())
	assert.Error(t, err)

	_, err = LoadKeys(KeyStrings{Mode: ModeLocal})
	assert.Error(t, err)

	hex := NewLocalKeys().ExportLocalHex()
	keys, err := LoadKeys(KeyStrings{Mode: ModeLocal, SymmetricHex: hex})
	require.NoError(t, err)
	assert.Equal(t, hex, keys.ExportLocalHex())
}
