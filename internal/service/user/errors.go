package user

import (
	"errors"

	"github.com/Alijeyrad/pms_backend/internal/service/validation"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrInvalidGender      = errors.New("invalid gender")
	ErrFutureDateOfBirth  = errors.New("date of birth cannot be in the future")
	ErrPhoneAlreadyExists = errors.New("phone number is already in use")
	ErrCannotDeleteSelf   = errors.New("you cannot delete your own account")
	ErrRequiredField      = validation.ErrRequired
)

type ValidationError = validation.Error
