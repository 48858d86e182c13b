package repo

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var assessmentColumns = []string{
	"id", "practitioner_id", "patient_id", "assessment_type_id", "date", "final_score", "created_at", "updated_at",
}

func scanAssessment(rows *entsql.Rows, a *Assessment) error {
	return rows.Scan(&a.ID, &a.PractitionerID, &a.PatientID, &a.AssessmentTypeID, &a.Date, &a.FinalScore, &a.CreatedAt, &a.UpdatedAt)
}

// Owned matches assessments where userID is the patient or the practitioner.
func Owned(userID uuid.UUID) *entsql.Predicate {
	return entsql.Or(entsql.EQ("patient_id", userID), entsql.EQ("practitioner_id", userID))
}

type AssessmentStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

func (s *AssessmentStore) Create(ctx context.Context, a *Assessment) error {
	now := time.Now().UTC()
	a.ID, a.CreatedAt, a.UpdatedAt = NewID(), now, now
	_, err := exec(ctx, s.q, s.b.Insert("assessments").
		Columns(assessmentColumns...).
		Values(a.ID, a.PractitionerID, a.PatientID, a.AssessmentTypeID, a.Date, a.FinalScore, a.CreatedAt, a.UpdatedAt))
	return err
}

// Get returns the assessment only when userID owns it.
func (s *AssessmentStore) Get(ctx context.Context, userID, id uuid.UUID) (*Assessment, error) {
	a := &Assessment{}
	err := queryOne(ctx, s.q, s.b.Select(assessmentColumns...).
		From(s.b.Table("assessments")).
		Where(entsql.And(entsql.EQ("id", id), Owned(userID))), func(rows *entsql.Rows) error {
		return scanAssessment(rows, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

type AssessmentFilter struct {
	PatientID        *uuid.UUID
	AssessmentTypeID *uuid.UUID
	Page             Page
}

// List returns the assessments userID owns, newest first.
func (s *AssessmentStore) List(ctx context.Context, userID uuid.UUID, f AssessmentFilter) ([]Assessment, int, error) {
	ps := []*entsql.Predicate{Owned(userID)}
	if f.PatientID != nil {
		ps = append(ps, entsql.EQ("patient_id", *f.PatientID))
	}
	if f.AssessmentTypeID != nil {
		ps = append(ps, entsql.EQ("assessment_type_id", *f.AssessmentTypeID))
	}
	pred := entsql.And(ps...)
	t := s.b.Table("assessments")

	total, err := count(ctx, s.q, s.b.Select(entsql.Count("*")).From(t).Where(pred))
	if err != nil {
		return nil, 0, err
	}

	out := []Assessment{}
	err = query(ctx, s.q, f.Page.apply(s.b.Select(assessmentColumns...).
		From(t).
		Where(pred).
		OrderBy(entsql.Desc("date"), entsql.Desc("id"))), func(rows *entsql.Rows) error {
		var a Assessment
		if err := scanAssessment(rows, &a); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, total, err
}

// Lock touches the owned row so concurrent writers of the same assessment
// queue behind this transaction. It must be the first write of the
// transaction.
func (s *AssessmentStore) Lock(ctx context.Context, userID, id uuid.UUID) error {
	return mustAffect(exec(ctx, s.q, s.b.Update("assessments").
		Set("updated_at", time.Now().UTC()).
		Where(entsql.And(entsql.EQ("id", id), Owned(userID)))))
}

func (s *AssessmentStore) SetDate(ctx context.Context, id uuid.UUID, date time.Time) error {
	return mustAffect(exec(ctx, s.q, s.b.Update("assessments").
		Set("date", date).
		Where(entsql.EQ("id", id))))
}

func (s *AssessmentStore) SetFinalScore(ctx context.Context, id uuid.UUID, score float64) error {
	return mustAffect(exec(ctx, s.q, s.b.Update("assessments").
		Set("final_score", score).
		Where(entsql.EQ("id", id))))
}

// Delete removes an owned assessment; its results go with it.
func (s *AssessmentStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return mustAffect(exec(ctx, s.q, s.b.Delete("assessments").
		Where(entsql.And(entsql.EQ("id", id), Owned(userID)))))
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

type ResultStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

func (s *ResultStore) DeleteByAssessment(ctx context.Context, assessmentID uuid.UUID) (int64, error) {
	return exec(ctx, s.q, s.b.Delete("assessment_results").Where(entsql.EQ("assessment_id", assessmentID)))
}

// AssessmentsByQuestion returns the assessments with a result on questionID.
func (s *ResultStore) AssessmentsByQuestion(ctx context.Context, questionID uuid.UUID) ([]uuid.UUID, error) {
	return s.assessmentIDs(ctx, entsql.EQ("question_id", questionID))
}

// AssessmentsByAnswer returns the assessments with a result on answerID.
func (s *ResultStore) AssessmentsByAnswer(ctx context.Context, answerID uuid.UUID) ([]uuid.UUID, error) {
	return s.assessmentIDs(ctx, entsql.EQ("answer_id", answerID))
}

func (s *ResultStore) assessmentIDs(ctx context.Context, pred *entsql.Predicate) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	err := query(ctx, s.q, s.b.Select("assessment_id").
		Distinct().
		From(s.b.Table("assessment_results")).
		Where(pred), func(rows *entsql.Rows) error {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		out = append(out, id)
		return nil
	})
	return out, err
}

// InsertBatch writes all results in one multi-row INSERT and assigns IDs.
func (s *ResultStore) InsertBatch(ctx context.Context, results []AssessmentResult) error {
	if len(results) == 0 {
		return nil
	}
	ins := s.b.Insert("assessment_results").Columns("id", "assessment_id", "question_id", "answer_id")
	for i := range results {
		results[i].ID = NewID()
		ins.Values(results[i].ID, results[i].AssessmentID, results[i].QuestionID, results[i].AnswerID)
	}
	_, err := exec(ctx, s.q, ins)
	return err
}

// ListScored returns the recorded results of the given assessments with the
// correctness of each referenced answer.
func (s *ResultStore) ListScored(ctx context.Context, assessmentIDs ...uuid.UUID) ([]AssessmentResult, error) {
	out := []AssessmentResult{}
	if len(assessmentIDs) == 0 {
		return out, nil
	}
	r, a := s.b.Table("assessment_results").As("r"), s.b.Table("answers").As("a")
	err := query(ctx, s.q, s.b.Select(r.C("id"), r.C("assessment_id"), r.C("question_id"), r.C("answer_id"), a.C("is_correct")).
		From(r).
		Join(a).On(r.C("answer_id"), a.C("id")).
		Where(entsql.In(r.C("assessment_id"), uuidArgs(assessmentIDs)...)).
		OrderBy(r.C("id")), func(rows *entsql.Rows) error {
		var res AssessmentResult
		if err := rows.Scan(&res.ID, &res.AssessmentID, &res.QuestionID, &res.AnswerID, &res.IsCorrect); err != nil {
			return err
		}
		out = append(out, res)
		return nil
	})
	return out, err
}
