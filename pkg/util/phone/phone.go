// Package phone normalizes phone numbers to E.164.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalid = errors.New("enter a valid phone number")

// Normalize parses raw, using region for numbers without a country prefix,
// and returns the E.164 form. An empty input normalizes to "".
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Looks reports whether s is plausibly a phone number rather than a
// username or an email, for identifier-based login.
func Looks(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "@") {
		return false
	}
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0, r == ' ', r == '-', r == '(', r == ')':
		default:
			return false
		}
	}
	return digits >= 7
}
