package assessment

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeNameIsUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "percentage")

	_, err := f.catalog.CreateType(ctx, CreateTypeRequest{Name: " Mood Screening "})
	assert.ErrorIs(t, err, ErrTypeNameTaken)

	other, err := f.catalog.CreateType(ctx, CreateTypeRequest{Name: "Memory"})
	require.NoError(t, err)
	name := "Mood Screening"
	_, err = f.catalog.UpdateType(ctx, other.ID, UpdateTypeRequest{Name: &name})
	assert.ErrorIs(t, err, ErrTypeNameTaken)
}

func TestTypeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "percentage")

	_, err := f.catalog.CreateType(ctx, CreateTypeRequest{Name: "  "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Map(), "name")

	_, err = f.catalog.CreateType(ctx, CreateTypeRequest{Name: strings.Repeat("x", 256)})
	assert.ErrorAs(t, err, &verr)

	_, err = f.catalog.UpdateType(ctx, uuid.New(), UpdateTypeRequest{})
	assert.ErrorIs(t, err, ErrAssessmentTypeNotFound)
}

func TestSingleCorrectAnswer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "percentage")

	yes := true
	_, err := f.catalog.UpdateAnswer(ctx, f.typ.ID, f.question.ID, f.yes.ID, UpdateAnswerRequest{IsCorrect: &yes})
	require.NoError(t, err)

	answers, err := f.catalog.ListAnswers(ctx, f.typ.ID, f.question.ID)
	require.NoError(t, err)
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
			assert.Equal(t, f.yes.ID, a.ID)
		}
	}
	assert.Equal(t, 1, correct)

	maybe, err := f.catalog.CreateAnswer(ctx, f.typ.ID, f.question.ID, CreateAnswerRequest{Text: "Sometimes", IsCorrect: true})
	require.NoError(t, err)
	answers, err = f.catalog.ListAnswers(ctx, f.typ.ID, f.question.ID)
	require.NoError(t, err)
	for _, a := range answers {
		assert.Equal(t, a.ID == maybe.ID, a.IsCorrect, a.Text)
	}
}

func TestCatalogScopesChildrenToParents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "percentage")

	other, err := f.catalog.CreateType(ctx, CreateTypeRequest{Name: "Memory"})
	require.NoError(t, err)

	_, err = f.catalog.UpdateQuestion(ctx, other.ID, f.question.ID, QuestionRequest{Text: "moved"})
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	assert.ErrorIs(t, f.catalog.DeleteQuestion(ctx, other.ID, f.question.ID), ErrQuestionNotFound)
	_, err = f.catalog.ListAnswers(ctx, other.ID, f.question.ID)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	q2, err := f.catalog.CreateQuestion(ctx, f.typ.ID, QuestionRequest{Text: "Second"})
	require.NoError(t, err)
	assert.ErrorIs(t, f.catalog.DeleteAnswer(ctx, f.typ.ID, q2.ID, f.yes.ID), ErrAnswerNotFound)

	_, err = f.catalog.CreateQuestion(ctx, uuid.New(), QuestionRequest{Text: "x"})
	assert.ErrorIs(t, err, ErrAssessmentTypeNotFound)
}

func TestDeleteQuestionCascadesAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "percentage")

	require.NoError(t, f.catalog.DeleteQuestion(ctx, f.typ.ID, f.question.ID))
	found, err := f.db.Answers.GetMany(ctx, []uuid.UUID{f.yes.ID, f.no.ID})
	require.NoError(t, err)
	assert.Empty(t, found)

	qs, err := f.catalog.ListQuestions(ctx, f.typ.ID)
	require.NoError(t, err)
	assert.Empty(t, qs)
}

func (f *fixture) score(t *testing.T, id uuid.UUID) float64 {
	t.Helper()
	v, err := f.svc.Get(context.Background(), f.practitioner.ID, id)
	require.NoError(t, err)
	return v.FinalScore
}

func TestAnswerCorrectnessChangeRescores(t *testing.T) {
	tests := []struct {
		policy      string
		right, zero float64
	}{
		{"percentage", 100, 0},
		{"fixed_weight", 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, tt.policy)
			v := f.create(t, ResultInput{QuestionID: f.question.ID, AnswerID: f.no.ID})
			require.Equal(t, tt.right, v.FinalScore)

			yes := true
			_, err := f.catalog.UpdateAnswer(ctx, f.typ.ID, f.question.ID, f.yes.ID, UpdateAnswerRequest{IsCorrect: &yes})
			require.NoError(t, err)
			assert.Equal(t, tt.zero, f.score(t, v.ID))

			_, err = f.catalog.CreateAnswer(ctx, f.typ.ID, f.question.ID, CreateAnswerRequest{Text: "Sometimes"})
			require.NoError(t, err)
			assert.Equal(t, tt.zero, f.score(t, v.ID))

			_, err = f.catalog.UpdateAnswer(ctx, f.typ.ID, f.question.ID, f.no.ID, UpdateAnswerRequest{IsCorrect: &yes})
			require.NoError(t, err)
			assert.Equal(t, tt.right, f.score(t, v.ID))

			_, err = f.catalog.CreateAnswer(ctx, f.typ.ID, f.question.ID, CreateAnswerRequest{Text: "Never", IsCorrect: true})
			require.NoError(t, err)
			assert.Equal(t, tt.zero, f.score(t, v.ID))
		})
	}
}

func TestDeletingRecordedCatalogRowsRescores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "percentage")

	q2, err := f.catalog.CreateQuestion(ctx, f.typ.ID, QuestionRequest{Text: "Do you sleep well?"})
	require.NoError(t, err)
	wrong, err := f.catalog.CreateAnswer(ctx, f.typ.ID, q2.ID, CreateAnswerRequest{Text: "Rarely"})
	require.NoError(t, err)

	v := f.create(t,
		ResultInput{QuestionID: f.question.ID, AnswerID: f.no.ID},
		ResultInput{QuestionID: q2.ID, AnswerID: wrong.ID},
	)
	require.Equal(t, float64(50), v.FinalScore)

	require.NoError(t, f.catalog.DeleteAnswer(ctx, f.typ.ID, q2.ID, wrong.ID))
	assert.Equal(t, 1, f.resultCount(t, v.ID))
	assert.Equal(t, float64(100), f.score(t, v.ID))

	require.NoError(t, f.catalog.DeleteQuestion(ctx, f.typ.ID, f.question.ID))
	assert.Zero(t, f.resultCount(t, v.ID))
	assert.Zero(t, f.score(t, v.ID))
}

func TestDeleteUnknownAnswerLeavesScores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "percentage")
	v := f.create(t, ResultInput{QuestionID: f.question.ID, AnswerID: f.no.ID})

	assert.ErrorIs(t, f.catalog.DeleteAnswer(ctx, f.typ.ID, f.question.ID, uuid.New()), ErrAnswerNotFound)
	assert.ErrorIs(t, f.catalog.DeleteQuestion(ctx, f.typ.ID, uuid.New()), ErrQuestionNotFound)
	assert.Equal(t, float64(100), f.score(t, v.ID))
	assert.Equal(t, 1, f.resultCount(t, v.ID))
}
