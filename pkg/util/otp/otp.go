// Package otp generates the numeric one-time codes used for account
// verification and password reset, and the digests they are stored as.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Alijeyrad/pms_backend/config"
)

var (
	ErrInvalidLength = errors.New("OTP length out of range")
	ErrMismatch      = errors.New("OTP does not match")
)

const (
	DefaultLength = 6
	MinLength     = 4
	MaxLength     = 10
)

// Generator produces codes of a configured length.
type Generator struct {
	Length int
}

// NewGenerator validates the configured length against the allowed range.
func NewGenerator(c config.OTPConfig) (Generator, error) {
	lo, hi := c.MinLength, c.MaxLength
	if lo <= 0 {
		lo = MinLength
	}
	if hi <= 0 {
		hi = MaxLength
	}
	n := c.DefaultLength
	if n == 0 {
		n = DefaultLength
	}
	if n < lo || n > hi || lo < MinLength || hi > MaxLength {
		return Generator{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidLength, n, lo, hi)
	}
	return Generator{Length: n}, nil
}

func (g Generator) Generate() (string, error) {
	return Generate(g.Length)
}

// Generate creates a cryptographically secure numeric code of length digits,
// keeping leading zeros.
func Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", ErrInvalidLength
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// Hash returns the hex SHA-256 digest of the trimmed code.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}

// Verify compares a plaintext code against a digest in constant time.
func Verify(hash, code string) error {
	if subtle.ConstantTimeCompare([]byte(hash), []byte(Hash(code))) != 1 {
		return ErrMismatch
	}
	return nil
}
