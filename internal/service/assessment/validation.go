package assessment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/repo"
)

// ResultInput is one submitted (question, answer) pair.
type ResultInput struct {
	QuestionID uuid.UUID `json:"question"`
	AnswerID   uuid.UUID `json:"answer"`
}

// validateResults checks a submission against the catalog and reports every
// problem at once, keyed by results[i].question and results[i].answer.
func validateResults(ctx context.Context, stores repo.Stores, typeID uuid.UUID, in []ResultInput, verr *ValidationError) error {
	if len(in) == 0 {
		return nil
	}

	qids := make([]uuid.UUID, 0, len(in))
	aids := make([]uuid.UUID, 0, len(in))
	for _, r := range in {
		if r.QuestionID != uuid.Nil {
			qids = append(qids, r.QuestionID)
		}
		if r.AnswerID != uuid.Nil {
			aids = append(aids, r.AnswerID)
		}
	}

	questions, err := stores.Questions.GetMany(ctx, qids)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	answers, err := stores.Answers.GetMany(ctx, aids)
	if err != nil {
		return fmt.Errorf("load answers: %w", err)
	}

	seen := make(map[uuid.UUID]int, len(in))
	for i, r := range in {
		qField := fmt.Sprintf("results[%d].question", i)
		aField := fmt.Sprintf("results[%d].answer", i)

		switch q, ok := questions[r.QuestionID]; {
		case r.QuestionID == uuid.Nil:
			verr.Add(qField, ErrRequired)
		case !ok:
			verr.Add(qField, ErrQuestionNotFound)
		case q.AssessmentTypeID != typeID:
			verr.Add(qField, ErrQuestionNotForType)
		default:
			if first, dup := seen[r.QuestionID]; dup {
				verr.Add(qField, fmt.Errorf("%w (first at results[%d])", ErrDuplicateQuestion, first))
			} else {
				seen[r.QuestionID] = i
			}
		}

		switch a, ok := answers[r.AnswerID]; {
		case r.AnswerID == uuid.Nil:
			verr.Add(aField, ErrRequired)
		case !ok:
			verr.Add(aField, ErrAnswerNotFound)
		case a.QuestionID != r.QuestionID:
			verr.Add(aField, ErrAnswerNotForQuestion)
		}
	}
	return nil
}
