package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/config"
)

func TestGenerate(t *testing.T) {
	for _, n := range []int{4, 6, 10} {
		code, err := Generate(n)
		require.NoError(t, err)
		assert.Len(t, code, n)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', code)
		}
	}

	_, err := Generate(3)
	assert.ErrorIs(t, err, ErrInvalidLength)
	_, err = Generate(11)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestHashAndVerify(t *testing.T) {
	h := Hash("123456")
	assert.Equal(t, h, Hash(" 123456 "))
	assert.NoError(t, Verify(h, "123456"))
	assert.ErrorIs(t, Verify(h, "654321"), ErrMismatch)
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(config.OTPConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLength, g.Length)

	g, err = NewGenerator(config.OTPConfig{DefaultLength: 8, MinLength: 4, MaxLength: 10})
	require.NoError(t, err)
	code, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, code, 8)

	_, err = NewGenerator(config.OTPConfig{DefaultLength: 12})
	assert.ErrorIs(t, err, ErrInvalidLength)
}
