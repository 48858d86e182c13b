package pasetotoken

import (
	"errors"
	"fmt"
)

// ErrWrongTokenType is returned when a refresh token is presented as an
// access token or the other way round.
var ErrWrongTokenType = errors.New("wrong token type")

type ErrConfig struct{ Msg string }

func (e ErrConfig) Error() string { return "paseto config error: " + e.Msg }

type ErrInvalidToken struct{ Err error }

func (e ErrInvalidToken) Error() string { return fmt.Sprintf("invalid token: %v", e.Err) }
func (e ErrInvalidToken) Unwrap() error { return e.Err }
