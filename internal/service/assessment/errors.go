package assessment

import (
	"errors"

	"github.com/Alijeyrad/pms_backend/internal/service/validation"
)

var (
	ErrAssessmentNotFound     = errors.New("assessment not found")
	ErrAssessmentTypeNotFound = errors.New("assessment type not found")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrAnswerNotFound         = errors.New("answer not found")
	ErrPatientNotFound        = errors.New("patient not found")
	ErrAnswerNotForQuestion   = errors.New("answer does not belong to the question")
	ErrQuestionNotForType     = errors.New("question does not belong to the assessment type")
	ErrDuplicateQuestion      = errors.New("question is answered more than once")
	ErrTypeNameTaken          = errors.New("an assessment type with this name already exists")
	ErrRequired               = validation.ErrRequired
	ErrUnknownPolicy          = errors.New("unknown scoring policy")
)

// ValidationError collects every field problem of one request.
type ValidationError = validation.Error
