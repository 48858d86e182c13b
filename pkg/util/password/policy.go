package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrTooShort   = errors.New("this password is too short")
	ErrNumeric    = errors.New("this password is entirely numeric")
	ErrTooCommon  = errors.New("this password is too common")
	ErrTooSimilar = errors.New("the password is too similar to your personal information")
)

// common holds passwords rejected outright.
var common = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {},
	"123456789": {}, "qwerty123": {}, "iloveyou": {}, "admin123": {},
	"welcome1": {}, "letmein1": {}, "abc12345": {}, "football": {},
	"baseball": {}, "sunshine": {}, "princess": {}, "passw0rd": {},
}

// Policy validates new passwords.
type Policy struct {
	MinLength int
}

// Validate reports every rule the password breaks. attrs are personal
// values (username, email, names) the password must not contain.
func (p Policy) Validate(password string, attrs ...string) error {
	var errs []error

	min := p.MinLength
	if min <= 0 {
		min = 8
	}
	if len([]rune(password)) < min {
		errs = append(errs, fmt.Errorf("%w: it must contain at least %d characters", ErrTooShort, min))
	}

	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		errs = append(errs, ErrNumeric)
	}

	lower := strings.ToLower(password)
	if _, ok := common[lower]; ok {
		errs = append(errs, ErrTooCommon)
	}

	for _, a := range attrs {
		a = strings.ToLower(strings.TrimSpace(a))
		if at := strings.IndexByte(a, '@'); at > 0 {
			a = a[:at]
		}
		if len(a) >= 3 && strings.Contains(lower, a) {
			errs = append(errs, ErrTooSimilar)
			break
		}
	}

	return errors.Join(errs...)
}
