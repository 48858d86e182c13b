package repo

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Assessment types
// ---------------------------------------------------------------------------

var assessmentTypeColumns = []string{"id", "name", "description", "created_at", "updated_at"}

type AssessmentTypeStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

func (s *AssessmentTypeStore) Create(ctx context.Context, t *AssessmentType) error {
	now := time.Now().UTC()
	t.ID, t.CreatedAt, t.UpdatedAt = NewID(), now, now
	_, err := exec(ctx, s.q, s.b.Insert("assessment_types").
		Columns(assessmentTypeColumns...).
		Values(t.ID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt))
	return err
}

func (s *AssessmentTypeStore) Get(ctx context.Context, id uuid.UUID) (*AssessmentType, error) {
	t := &AssessmentType{}
	err := queryOne(ctx, s.q, s.b.Select(assessmentTypeColumns...).
		From(s.b.Table("assessment_types")).
		Where(entsql.EQ("id", id)), func(rows *entsql.Rows) error {
		return rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *AssessmentTypeStore) List(ctx context.Context) ([]AssessmentType, error) {
	out := []AssessmentType{}
	err := query(ctx, s.q, s.b.Select(assessmentTypeColumns...).
		From(s.b.Table("assessment_types")).
		OrderBy("name"), func(rows *entsql.Rows) error {
		var t AssessmentType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	return out, err
}

func (s *AssessmentTypeStore) Update(ctx context.Context, t *AssessmentType) error {
	t.UpdatedAt = time.Now().UTC()
	return mustAffect(exec(ctx, s.q, s.b.Update("assessment_types").
		Set("name", t.Name).
		Set("description", t.Description).
		Set("updated_at", t.UpdatedAt).
		Where(entsql.EQ("id", t.ID))))
}

func (s *AssessmentTypeStore) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(exec(ctx, s.q, s.b.Delete("assessment_types").Where(entsql.EQ("id", id))))
}

// ---------------------------------------------------------------------------
// Questions
// ---------------------------------------------------------------------------

var questionColumns = []string{"id", "assessment_type_id", "text", "created_at", "updated_at"}

func scanQuestion(rows *entsql.Rows, q *Question) error {
	return rows.Scan(&q.ID, &q.AssessmentTypeID, &q.Text, &q.CreatedAt, &q.UpdatedAt)
}

type QuestionStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

func (s *QuestionStore) Create(ctx context.Context, q *Question) error {
	now := time.Now().UTC()
	q.ID, q.CreatedAt, q.UpdatedAt = NewID(), now, now
	_, err := exec(ctx, s.q, s.b.Insert("questions").
		Columns(questionColumns...).
		Values(q.ID, q.AssessmentTypeID, q.Text, q.CreatedAt, q.UpdatedAt))
	return err
}

// Get returns the question only when it belongs to typeID.
func (s *QuestionStore) Get(ctx context.Context, typeID, id uuid.UUID) (*Question, error) {
	q := &Question{}
	err := queryOne(ctx, s.q, s.b.Select(questionColumns...).
		From(s.b.Table("questions")).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("assessment_type_id", typeID))), func(rows *entsql.Rows) error {
		return scanQuestion(rows, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetMany returns the questions among ids that exist, keyed by id.
func (s *QuestionStore) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Question, error) {
	out := make(map[uuid.UUID]Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := query(ctx, s.q, s.b.Select(questionColumns...).
		From(s.b.Table("questions")).
		Where(entsql.In("id", uuidArgs(ids)...)), func(rows *entsql.Rows) error {
		var q Question
		if err := scanQuestion(rows, &q); err != nil {
			return err
		}
		out[q.ID] = q
		return nil
	})
	return out, err
}

// ListByType returns the type's questions, each with its answers when
// withAnswers is set.
func (s *QuestionStore) ListByType(ctx context.Context, typeID uuid.UUID, withAnswers bool) ([]Question, error) {
	out := []Question{}
	err := query(ctx, s.q, s.b.Select(questionColumns...).
		From(s.b.Table("questions")).
		Where(entsql.EQ("assessment_type_id", typeID)).
		OrderBy("created_at", "id"), func(rows *entsql.Rows) error {
		var q Question
		if err := scanQuestion(rows, &q); err != nil {
			return err
		}
		out = append(out, q)
		return nil
	})
	if err != nil || !withAnswers || len(out) == 0 {
		return out, err
	}

	ids := make([]uuid.UUID, len(out))
	index := make(map[uuid.UUID]int, len(out))
	for i, q := range out {
		ids[i] = q.ID
		index[q.ID] = i
		out[i].Answers = []Answer{}
	}
	err = query(ctx, s.q, s.b.Select(answerColumns...).
		From(s.b.Table("answers")).
		Where(entsql.In("question_id", uuidArgs(ids)...)).
		OrderBy("created_at", "id"), func(rows *entsql.Rows) error {
		var a Answer
		if err := scanAnswer(rows, &a); err != nil {
			return err
		}
		i := index[a.QuestionID]
		out[i].Answers = append(out[i].Answers, a)
		return nil
	})
	return out, err
}

func (s *QuestionStore) Update(ctx context.Context, q *Question) error {
	q.UpdatedAt = time.Now().UTC()
	return mustAffect(exec(ctx, s.q, s.b.Update("questions").
		Set("text", q.Text).
		Set("updated_at", q.UpdatedAt).
		Where(entsql.And(entsql.EQ("id", q.ID), entsql.EQ("assessment_type_id", q.AssessmentTypeID)))))
}

func (s *QuestionStore) Delete(ctx context.Context, typeID, id uuid.UUID) error {
	return mustAffect(exec(ctx, s.q, s.b.Delete("questions").
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("assessment_type_id", typeID)))))
}

// ---------------------------------------------------------------------------
// Answers
// ---------------------------------------------------------------------------

var answerColumns = []string{"id", "question_id", "text", "is_correct", "created_at", "updated_at"}

func scanAnswer(rows *entsql.Rows, a *Answer) error {
	return rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect, &a.CreatedAt, &a.UpdatedAt)
}

type AnswerStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

func (s *AnswerStore) Create(ctx context.Context, a *Answer) error {
	now := time.Now().UTC()
	a.ID, a.CreatedAt, a.UpdatedAt = NewID(), now, now
	_, err := exec(ctx, s.q, s.b.Insert("answers").
		Columns(answerColumns...).
		Values(a.ID, a.QuestionID, a.Text, a.IsCorrect, a.CreatedAt, a.UpdatedAt))
	return err
}

// Get returns the answer only when it belongs to questionID.
func (s *AnswerStore) Get(ctx context.Context, questionID, id uuid.UUID) (*Answer, error) {
	a := &Answer{}
	err := queryOne(ctx, s.q, s.b.Select(answerColumns...).
		From(s.b.Table("answers")).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("question_id", questionID))), func(rows *entsql.Rows) error {
		return scanAnswer(rows, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AnswerStore) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Answer, error) {
	out := make(map[uuid.UUID]Answer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := query(ctx, s.q, s.b.Select(answerColumns...).
		From(s.b.Table("answers")).
		Where(entsql.In("id", uuidArgs(ids)...)), func(rows *entsql.Rows) error {
		var a Answer
		if err := scanAnswer(rows, &a); err != nil {
			return err
		}
		out[a.ID] = a
		return nil
	})
	return out, err
}

func (s *AnswerStore) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]Answer, error) {
	out := []Answer{}
	err := query(ctx, s.q, s.b.Select(answerColumns...).
		From(s.b.Table("answers")).
		Where(entsql.EQ("question_id", questionID)).
		OrderBy("created_at", "id"), func(rows *entsql.Rows) error {
		var a Answer
		if err := scanAnswer(rows, &a); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

func (s *AnswerStore) Update(ctx context.Context, a *Answer) error {
	a.UpdatedAt = time.Now().UTC()
	return mustAffect(exec(ctx, s.q, s.b.Update("answers").
		Set("text", a.Text).
		Set("is_correct", a.IsCorrect).
		Set("updated_at", a.UpdatedAt).
		Where(entsql.And(entsql.EQ("id", a.ID), entsql.EQ("question_id", a.QuestionID)))))
}

// ClearCorrect unsets is_correct on every answer of questionID except keep.
func (s *AnswerStore) ClearCorrect(ctx context.Context, questionID, keep uuid.UUID) error {
	_, err := exec(ctx, s.q, s.b.Update("answers").
		Set("is_correct", false).
		Where(entsql.And(
			entsql.EQ("question_id", questionID),
			entsql.NEQ("id", keep),
			entsql.EQ("is_correct", true),
		)))
	return err
}

func (s *AnswerStore) Delete(ctx context.Context, questionID, id uuid.UUID) error {
	return mustAffect(exec(ctx, s.q, s.b.Delete("answers").
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("question_id", questionID)))))
}
