package assessment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/repo"
)

// reconciler replaces an assessment's result set and rescores it. It runs
// inside the caller's transaction and assumes the submission was validated
// and the assessment row is already locked or freshly inserted.
type reconciler struct {
	scorer Scorer
}

func (r reconciler) replace(ctx context.Context, tx *repo.Tx, assessmentID uuid.UUID, in []ResultInput) ([]repo.AssessmentResult, float64, error) {
	if _, err := tx.Results.DeleteByAssessment(ctx, assessmentID); err != nil {
		return nil, 0, fmt.Errorf("delete results: %w", err)
	}

	rows := make([]repo.AssessmentResult, len(in))
	for i, res := range in {
		rows[i] = repo.AssessmentResult{AssessmentID: assessmentID, QuestionID: res.QuestionID, AnswerID: res.AnswerID}
	}
	if err := tx.Results.InsertBatch(ctx, rows); err != nil {
		return nil, 0, fmt.Errorf("insert results: %w", err)
	}

	return r.rescore(ctx, tx, assessmentID)
}

// rescore reads back the recorded results with their answers' correctness
// and persists the resulting final score.
func (r reconciler) rescore(ctx context.Context, tx *repo.Tx, assessmentID uuid.UUID) ([]repo.AssessmentResult, float64, error) {
	recorded, err := tx.Results.ListScored(ctx, assessmentID)
	if err != nil {
		return nil, 0, fmt.Errorf("read results: %w", err)
	}

	scored := make([]ScoredResult, len(recorded))
	for i, res := range recorded {
		scored[i] = ScoredResult{Correct: res.IsCorrect}
	}
	score := r.scorer.Score(scored)

	if err := tx.Assessments.SetFinalScore(ctx, assessmentID, score); err != nil {
		return nil, 0, fmt.Errorf("store final score: %w", err)
	}
	return recorded, score, nil
}
