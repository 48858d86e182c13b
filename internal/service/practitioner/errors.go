package practitioner

import (
	"errors"

	"github.com/Alijeyrad/pms_backend/internal/service/validation"
)

var (
	ErrPractitionerNotFound   = errors.New("practitioner not found")
	ErrSpecializationNotFound = errors.New("one or more selected specializations do not exist")
	ErrSpecializationCount    = errors.New("you must select between 1 and 2 specializations")
	ErrSpecializationTaken    = errors.New("a specialization with this name already exists")
	ErrLicenseTaken           = errors.New("this license number is already registered")
	ErrInvalidCategory        = errors.New("invalid practitioner category")
	ErrInvalidIDType          = errors.New("invalid means of identification")
	ErrEncryptionDisabled     = errors.New("identification numbers cannot be stored: no encryption key configured")
	ErrNoDocuments            = errors.New("no files were uploaded")
	ErrRequired               = validation.ErrRequired
)

type ValidationError = validation.Error
