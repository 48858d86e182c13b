package auth

import (
	"errors"

	"github.com/Alijeyrad/pms_backend/internal/service/validation"
)

var (
	ErrEmailExists        = errors.New("user with this email already exists")
	ErrUsernameExists     = errors.New("user with this username already exists")
	ErrPhoneAlreadyExists = errors.New("user with this phone number already exists")
	ErrTermsNotAccepted   = errors.New("terms and conditions must be accepted")
	ErrInvalidCredentials = errors.New("invalid credentials. Please provide valid credentials")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrAccountLocked      = errors.New("account temporarily locked due to repeated login failures")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrInvalidCode        = errors.New("invalid authorization code")
	ErrCodeExpired        = errors.New("authorization code expired")
	ErrUnknownEmail       = errors.New("supplied credential not associated to any user")
	ErrAlreadyVerified    = errors.New("account is already verified")
	ErrRequired           = validation.ErrRequired
	ErrInvalidEmail       = errors.New("enter a valid email address")
)

type ValidationError = validation.Error
