package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestEncryptRoundTrip(t *testing.T) {
	key, err := KeyFromHex(testKey)
	require.NoError(t, err)

	a, err := Encrypt(key, "A1234567")
	require.NoError(t, err)
	b, err := Encrypt(key, "A1234567")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must differ")

	plain, err := Decrypt(key, a)
	require.NoError(t, err)
	assert.Equal(t, "A1234567", plain)
}

func TestDecryptRejectsTampering(t *testing.T) {
	key, err := KeyFromHex(testKey)
	require.NoError(t, err)

	other, err := KeyFromHex(strings.Repeat("ff", 32))
	require.NoError(t, err)

	sealed, err := Encrypt(key, "secret")
	require.NoError(t, err)

	_, err = Decrypt(other, sealed)
	assert.Error(t, err)
	_, err = Decrypt(key, "AAAA")
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestKeyFromHex(t *testing.T) {
	_, err := KeyFromHex("")
	assert.ErrorIs(t, err, ErrNoKey)
	_, err = KeyFromHex("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = KeyFromHex("zz")
	assert.Error(t, err)
}
