package patient

import (
	"errors"

	"github.com/Alijeyrad/pms_backend/internal/service/validation"
)

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrInvalidBloodGroup  = errors.New("invalid blood group")
	ErrInvalidGenotype    = errors.New("invalid genotype")
	ErrInvalidPhone       = errors.New("enter a valid phone number")
	ErrAllergyNotFound    = errors.New("one or more selected allergies do not exist")
	ErrMedicationNotFound = errors.New("one or more selected medications do not exist")
	ErrAllergyTaken       = errors.New("an allergy with this name already exists")
	ErrMedicationTaken    = errors.New("a medication with this name already exists")
	ErrRequired           = validation.ErrRequired
)

type ValidationError = validation.Error
