package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw, region, want string
	}{
		{"+234 803 123 4567", "", "+2348031234567"},
		{"0803 123 4567", "NG", "+2348031234567"},
		{"(202) 456-1111", "us", "+12024561111"},
		{"", "NG", ""},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.raw, tt.region)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}

	_, err := Normalize("12", "NG")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Normalize("not a number", "NG")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLooks(t *testing.T) {
	assert.True(t, Looks("+2348031234567"))
	assert.True(t, Looks("0803 123 4567"))
	assert.False(t, Looks("jdoe"))
	assert.False(t, Looks("jdoe@example.com"))
	assert.False(t, Looks("12345"))
	assert.False(t, Looks("080+3123"))
}
