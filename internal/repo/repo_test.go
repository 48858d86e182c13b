package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/repo/repotest"
)

func TestUserStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)

	phone := "+2348031234567"
	g := enum.GenderFemale
	u := &repo.User{
		Username:     "ada",
		Email:        "Ada@Example.com",
		PhoneNumber:  &phone,
		PasswordHash: "hash",
		FirstName:    "Ada",
		UserRole:     enum.UserTypePractitioner,
		Gender:       &g,
		IsActive:     true,
	}
	require.NoError(t, c.Users.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)

	got, err := c.Users.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, enum.UserTypePractitioner, got.UserRole)
	require.NotNil(t, got.Gender)
	assert.Equal(t, enum.GenderFemale, *got.Gender)
	require.NotNil(t, got.PhoneNumber)
	assert.Equal(t, phone, *got.PhoneNumber)
	assert.Nil(t, got.LastLogin)

	_, err = c.Users.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestUserStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)

	phone := "+2348030000000"
	first := &repo.User{Username: "one", Email: "one@example.com", PhoneNumber: &phone, PasswordHash: "x"}
	require.NoError(t, c.Users.Create(ctx, first))

	err := c.Users.Create(ctx, &repo.User{Username: "two", Email: "two@example.com", PhoneNumber: &phone, PasswordHash: "x"})
	require.Error(t, err)
	assert.True(t, repo.IsConstraint(err))
	assert.True(t, repo.IsUnique(err))

	// Users without a phone number do not collide.
	require.NoError(t, c.Users.Create(ctx, &repo.User{Username: "three", Email: "three@example.com", PasswordHash: "x"}))
	require.NoError(t, c.Users.Create(ctx, &repo.User{Username: "four", Email: "four@example.com", PasswordHash: "x"}))

	taken, err := c.Users.PhoneTaken(ctx, phone, first.ID)
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = c.Users.PhoneTaken(ctx, phone, uuid.New())
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUserStoreLoginCounters(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	u := repotest.User(t, c, enum.UserTypeUser)

	until := time.Now().Add(time.Hour).UTC()
	require.NoError(t, c.Users.RecordFailedLogin(ctx, u.ID, 5, &until))

	got, err := c.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.FailedLoginAttempts)
	require.NotNil(t, got.LockedUntil)

	require.NoError(t, c.Users.RecordLogin(ctx, u.ID, time.Now().UTC()))
	got, err = c.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, got.FailedLoginAttempts)
	assert.Nil(t, got.LockedUntil)
	assert.False(t, got.FirstLogin)
	assert.NotNil(t, got.LastLogin)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)

	boom := errors.New("boom")
	err := c.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.AssessmentTypes.Create(ctx, &repo.AssessmentType{Name: "Mood Screening"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	types, err := c.AssessmentTypes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)

	assert.Panics(t, func() {
		_ = c.WithTx(ctx, func(tx *repo.Tx) error {
			require.NoError(t, tx.AssessmentTypes.Create(ctx, &repo.AssessmentType{Name: "Memory"}))
			panic("unexpected")
		})
	})

	types, err := c.AssessmentTypes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestAssessmentOwnership(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)

	practitioner := repotest.User(t, c, enum.UserTypePractitioner)
	patient := repotest.User(t, c, enum.UserTypeUser)
	stranger := repotest.User(t, c, enum.UserTypeUser)

	typ := &repo.AssessmentType{Name: "Cognitive Test"}
	require.NoError(t, c.AssessmentTypes.Create(ctx, typ))

	a := &repo.Assessment{
		PractitionerID:   practitioner.ID,
		PatientID:        patient.ID,
		AssessmentTypeID: typ.ID,
		Date:             time.Now().UTC(),
	}
	require.NoError(t, c.Assessments.Create(ctx, a))

	for _, owner := range []uuid.UUID{practitioner.ID, patient.ID} {
		got, err := c.Assessments.Get(ctx, owner, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)

		list, total, err := c.Assessments.List(ctx, owner, repo.AssessmentFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, list, 1)
	}

	_, err := c.Assessments.Get(ctx, stranger.ID, a.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	list, total, err := c.Assessments.List(ctx, stranger.ID, repo.AssessmentFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	assert.ErrorIs(t, c.Assessments.Delete(ctx, stranger.ID, a.ID), repo.ErrNotFound)
	assert.ErrorIs(t, c.Assessments.Lock(ctx, stranger.ID, a.ID), repo.ErrNotFound)
}

func TestResultsCascadeAndScoredJoin(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)

	practitioner := repotest.User(t, c, enum.UserTypePractitioner)
	patient := repotest.User(t, c, enum.UserTypeUser)

	typ := &repo.AssessmentType{Name: "Mood Screening"}
	require.NoError(t, c.AssessmentTypes.Create(ctx, typ))
	q := &repo.Question{AssessmentTypeID: typ.ID, Text: "Do you feel low?"}
	require.NoError(t, c.Questions.Create(ctx, q))
	yes := &repo.Answer{QuestionID: q.ID, Text: "Yes"}
	no := &repo.Answer{QuestionID: q.ID, Text: "No", IsCorrect: true}
	require.NoError(t, c.Answers.Create(ctx, yes))
	require.NoError(t, c.Answers.Create(ctx, no))

	a := &repo.Assessment{PractitionerID: practitioner.ID, PatientID: patient.ID, AssessmentTypeID: typ.ID, Date: time.Now().UTC()}
	require.NoError(t, c.Assessments.Create(ctx, a))
	require.NoError(t, c.Results.InsertBatch(ctx, []repo.AssessmentResult{
		{AssessmentID: a.ID, QuestionID: q.ID, AnswerID: no.ID},
	}))

	scored, err := c.Results.ListScored(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.True(t, scored[0].IsCorrect)
	assert.Equal(t, no.ID, scored[0].AnswerID)

	require.NoError(t, c.Assessments.Delete(ctx, patient.ID, a.ID))
	scored, err = c.Results.ListScored(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestQuestionsListWithAnswers(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)

	typ := &repo.AssessmentType{Name: "Sleep"}
	require.NoError(t, c.AssessmentTypes.Create(ctx, typ))
	q1 := &repo.Question{AssessmentTypeID: typ.ID, Text: "Q1"}
	q2 := &repo.Question{AssessmentTypeID: typ.ID, Text: "Q2"}
	require.NoError(t, c.Questions.Create(ctx, q1))
	require.NoError(t, c.Questions.Create(ctx, q2))
	require.NoError(t, c.Answers.Create(ctx, &repo.Answer{QuestionID: q1.ID, Text: "A"}))

	qs, err := c.Questions.ListByType(ctx, typ.ID, true)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Len(t, qs[0].Answers, 1)
	assert.Empty(t, qs[1].Answers)

	// Deleting the type removes its questions.
	require.NoError(t, c.AssessmentTypes.Delete(ctx, typ.ID))
	found, err := c.Questions.GetMany(ctx, []uuid.UUID{q1.ID, q2.ID})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestAuthTokenIssueSupersedesPending(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	u := repotest.User(t, c, enum.UserTypeUser)

	exp := time.Now().Add(time.Hour).UTC()
	first := &repo.AuthToken{UserID: u.ID, TokenType: enum.AuthTokenVerification, TokenHash: "h1", ExpiresAt: exp}
	second := &repo.AuthToken{UserID: u.ID, TokenType: enum.AuthTokenVerification, TokenHash: "h2", ExpiresAt: exp}
	require.NoError(t, c.AuthTokens.Issue(ctx, first))
	require.NoError(t, c.AuthTokens.Issue(ctx, second))

	_, err := c.AuthTokens.FindPending(ctx, enum.AuthTokenVerification, "h1")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	got, err := c.AuthTokens.FindPending(ctx, enum.AuthTokenVerification, "h2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	require.NoError(t, c.AuthTokens.MarkUsed(ctx, got.ID))
	assert.ErrorIs(t, c.AuthTokens.MarkUsed(ctx, got.ID), repo.ErrNotFound)
}

func TestPatientLinks(t *testing.T) {
	ctx := context.Background()
	c := repotest.Open(t)
	u := repotest.User(t, c, enum.UserTypeUser)

	p, err := c.Patients.Create(ctx, u.ID)
	require.NoError(t, err)

	peanut := &repo.Allergy{Name: "Peanut"}
	require.NoError(t, c.Catalog.CreateAllergy(ctx, peanut))
	require.NoError(t, c.Patients.SetAllergies(ctx, p.ID, []uuid.UUID{peanut.ID, peanut.ID}))

	got, err := c.Patients.GetByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.Allergies, 1)
	assert.Equal(t, "Peanut", got.Allergies[0].Name)
	assert.Empty(t, got.Medications)

	require.NoError(t, c.Patients.SetAllergies(ctx, p.ID, nil))
	got, err = c.Patients.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Allergies)
}
