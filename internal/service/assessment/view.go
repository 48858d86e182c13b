package assessment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/repo"
)

type UserMini struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

type QuestionRef struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

type AnswerRef struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question"`
	Text       string    `json:"text"`
}

type ResultView struct {
	ID           uuid.UUID   `json:"id"`
	AssessmentID uuid.UUID   `json:"assessment"`
	Question     QuestionRef `json:"question"`
	Answer       AnswerRef   `json:"answer"`
}

// View is an assessment expanded for rendering.
type View struct {
	ID             uuid.UUID           `json:"id"`
	AssessmentType repo.AssessmentType `json:"assessment_type"`
	Patient        UserMini            `json:"patient"`
	PractitionerID uuid.UUID           `json:"practitioner"`
	Date           string              `json:"date"`
	FinalScore     float64             `json:"final_score"`
	Results        []ResultView        `json:"results"`
}

const dateLayout = "2006-01-02"

// expand loads the types, patients, questions and answers referenced by
// the given assessments and builds their views.
func expand(ctx context.Context, stores repo.Stores, list []repo.Assessment) ([]View, error) {
	if len(list) == 0 {
		return []View{}, nil
	}

	ids := make([]uuid.UUID, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}
	results, err := stores.Results.ListScored(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}

	var qids, aids []uuid.UUID
	byAssessment := make(map[uuid.UUID][]repo.AssessmentResult, len(list))
	for _, r := range results {
		byAssessment[r.AssessmentID] = append(byAssessment[r.AssessmentID], r)
		qids = append(qids, r.QuestionID)
		aids = append(aids, r.AnswerID)
	}
	questions, err := stores.Questions.GetMany(ctx, qids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	answers, err := stores.Answers.GetMany(ctx, aids)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	types := map[uuid.UUID]repo.AssessmentType{}
	patients := map[uuid.UUID]UserMini{}
	out := make([]View, len(list))
	for i, a := range list {
		t, ok := types[a.AssessmentTypeID]
		if !ok {
			got, err := stores.AssessmentTypes.Get(ctx, a.AssessmentTypeID)
			if err != nil {
				return nil, fmt.Errorf("load assessment type: %w", err)
			}
			t = *got
			types[t.ID] = t
		}
		p, ok := patients[a.PatientID]
		if !ok {
			u, err := stores.Users.Get(ctx, a.PatientID)
			if err != nil {
				return nil, fmt.Errorf("load patient: %w", err)
			}
			p = UserMini{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
			patients[p.ID] = p
		}

		v := View{
			ID:             a.ID,
			AssessmentType: t,
			Patient:        p,
			PractitionerID: a.PractitionerID,
			Date:           a.Date.Format(dateLayout),
			FinalScore:     a.FinalScore,
			Results:        []ResultView{},
		}
		for _, r := range byAssessment[a.ID] {
			q, ans := questions[r.QuestionID], answers[r.AnswerID]
			v.Results = append(v.Results, ResultView{
				ID:           r.ID,
				AssessmentID: a.ID,
				Question:     QuestionRef{ID: q.ID, Text: q.Text},
				Answer:       AnswerRef{ID: ans.ID, QuestionID: ans.QuestionID, Text: ans.Text},
			})
		}
		out[i] = v
	}
	return out, nil
}
