package assessment

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/repo"
)

const maxTypeNameLen = 255

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateTypeRequest struct {
	Name        string
	Description string
}

type UpdateTypeRequest struct {
	Name        *string
	Description *string
}

type QuestionRequest struct {
	Text string
}

type CreateAnswerRequest struct {
	Text      string
	IsCorrect bool
}

type UpdateAnswerRequest struct {
	Text      *string
	IsCorrect *bool
}

// ---------------------------------------------------------------------------
// Catalog interface
// ---------------------------------------------------------------------------

// Catalog manages assessment types and their questions and answers.
// Questions are addressed under their type and answers under their question;
// an id outside its parent is reported as not found. Changes that alter the
// correctness of recorded results rescore the affected assessments in the
// same transaction.
type Catalog interface {
	ListTypes(ctx context.Context) ([]repo.AssessmentType, error)
	CreateType(ctx context.Context, req CreateTypeRequest) (*repo.AssessmentType, error)
	UpdateType(ctx context.Context, id uuid.UUID, req UpdateTypeRequest) (*repo.AssessmentType, error)
	DeleteType(ctx context.Context, id uuid.UUID) error

	ListQuestions(ctx context.Context, typeID uuid.UUID) ([]repo.Question, error)
	CreateQuestion(ctx context.Context, typeID uuid.UUID, req QuestionRequest) (*repo.Question, error)
	UpdateQuestion(ctx context.Context, typeID, id uuid.UUID, req QuestionRequest) (*repo.Question, error)
	DeleteQuestion(ctx context.Context, typeID, id uuid.UUID) error

	ListAnswers(ctx context.Context, typeID, questionID uuid.UUID) ([]repo.Answer, error)
	CreateAnswer(ctx context.Context, typeID, questionID uuid.UUID, req CreateAnswerRequest) (*repo.Answer, error)
	UpdateAnswer(ctx context.Context, typeID, questionID, id uuid.UUID, req UpdateAnswerRequest) (*repo.Answer, error)
	DeleteAnswer(ctx context.Context, typeID, questionID, id uuid.UUID) error
}

type catalog struct {
	db  *repo.Client
	rec reconciler
}

func NewCatalog(db *repo.Client, cfg *config.Config) (Catalog, error) {
	scorer, err := NewScorer(cfg.Assessment.Scoring.Policy, cfg.Assessment.Scoring.PointsPerCorrect)
	if err != nil {
		return nil, fmt.Errorf("assessment catalog: %w", err)
	}
	return &catalog{db: db, rec: reconciler{scorer: scorer}}, nil
}

func (c *catalog) rescoreAll(ctx context.Context, tx *repo.Tx, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, _, err := c.rec.rescore(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

func validateTypeName(name string, verr *ValidationError) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		verr.Add("name", ErrRequired)
	case utf8.RuneCountInString(name) > maxTypeNameLen:
		verr.Add("name", fmt.Errorf("ensure this field has no more than %d characters", maxTypeNameLen))
	}
	return name
}

func (c *catalog) ListTypes(ctx context.Context) ([]repo.AssessmentType, error) {
	return c.db.AssessmentTypes.List(ctx)
}

func (c *catalog) CreateType(ctx context.Context, req CreateTypeRequest) (*repo.AssessmentType, error) {
	verr := &ValidationError{}
	name := validateTypeName(req.Name, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	t := &repo.AssessmentType{Name: name, Description: strings.TrimSpace(req.Description)}
	if err := c.db.AssessmentTypes.Create(ctx, t); err != nil {
		if repo.IsUnique(err) {
			return nil, ErrTypeNameTaken
		}
		return nil, fmt.Errorf("create assessment type: %w", err)
	}
	return t, nil
}

func (c *catalog) getType(ctx context.Context, id uuid.UUID) (*repo.AssessmentType, error) {
	t, err := c.db.AssessmentTypes.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrAssessmentTypeNotFound
		}
		return nil, fmt.Errorf("get assessment type: %w", err)
	}
	return t, nil
}

func (c *catalog) UpdateType(ctx context.Context, id uuid.UUID, req UpdateTypeRequest) (*repo.AssessmentType, error) {
	t, err := c.getType(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if req.Name != nil {
		t.Name = validateTypeName(*req.Name, verr)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}

	if err := c.db.AssessmentTypes.Update(ctx, t); err != nil {
		switch {
		case repo.IsUnique(err):
			return nil, ErrTypeNameTaken
		case repo.IsNotFound(err):
			return nil, ErrAssessmentTypeNotFound
		}
		return nil, fmt.Errorf("update assessment type: %w", err)
	}
	return t, nil
}

// DeleteType removes the type with its questions, answers and every
// assessment recorded against it.
func (c *catalog) DeleteType(ctx context.Context, id uuid.UUID) error {
	if err := c.db.AssessmentTypes.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrAssessmentTypeNotFound
		}
		return fmt.Errorf("delete assessment type: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Questions
// ---------------------------------------------------------------------------

func validateText(text string, verr *ValidationError) string {
	text = strings.TrimSpace(text)
	if text == "" {
		verr.Add("text", ErrRequired)
	}
	return text
}

func (c *catalog) ListQuestions(ctx context.Context, typeID uuid.UUID) ([]repo.Question, error) {
	if _, err := c.getType(ctx, typeID); err != nil {
		return nil, err
	}
	return c.db.Questions.ListByType(ctx, typeID, true)
}

func (c *catalog) CreateQuestion(ctx context.Context, typeID uuid.UUID, req QuestionRequest) (*repo.Question, error) {
	if _, err := c.getType(ctx, typeID); err != nil {
		return nil, err
	}
	verr := &ValidationError{}
	text := validateText(req.Text, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	q := &repo.Question{AssessmentTypeID: typeID, Text: text}
	if err := c.db.Questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

func (c *catalog) getQuestion(ctx context.Context, typeID, id uuid.UUID) (*repo.Question, error) {
	q, err := c.db.Questions.Get(ctx, typeID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

func (c *catalog) UpdateQuestion(ctx context.Context, typeID, id uuid.UUID, req QuestionRequest) (*repo.Question, error) {
	q, err := c.getQuestion(ctx, typeID, id)
	if err != nil {
		return nil, err
	}
	verr := &ValidationError{}
	q.Text = validateText(req.Text, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}
	if err := c.db.Questions.Update(ctx, q); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// DeleteQuestion removes the question with its answers and the results
// recorded against it.
func (c *catalog) DeleteQuestion(ctx context.Context, typeID, id uuid.UUID) error {
	return c.db.WithTx(ctx, func(tx *repo.Tx) error {
		affected, err := tx.Results.AssessmentsByQuestion(ctx, id)
		if err != nil {
			return fmt.Errorf("find scored assessments: %w", err)
		}
		if err := tx.Questions.Delete(ctx, typeID, id); err != nil {
			if repo.IsNotFound(err) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("delete question: %w", err)
		}
		return c.rescoreAll(ctx, tx, affected)
	})
}

// ---------------------------------------------------------------------------
// Answers
// ---------------------------------------------------------------------------

func (c *catalog) ListAnswers(ctx context.Context, typeID, questionID uuid.UUID) ([]repo.Answer, error) {
	if _, err := c.getQuestion(ctx, typeID, questionID); err != nil {
		return nil, err
	}
	return c.db.Answers.ListByQuestion(ctx, questionID)
}

// CreateAnswer adds an answer. Marking it correct clears the flag on the
// question's other answers in the same transaction.
func (c *catalog) CreateAnswer(ctx context.Context, typeID, questionID uuid.UUID, req CreateAnswerRequest) (*repo.Answer, error) {
	if _, err := c.getQuestion(ctx, typeID, questionID); err != nil {
		return nil, err
	}
	verr := &ValidationError{}
	text := validateText(req.Text, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	a := &repo.Answer{QuestionID: questionID, Text: text, IsCorrect: req.IsCorrect}
	err := c.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.Answers.Create(ctx, a); err != nil {
			return fmt.Errorf("create answer: %w", err)
		}
		if !a.IsCorrect {
			return nil
		}
		if err := tx.Answers.ClearCorrect(ctx, questionID, a.ID); err != nil {
			return err
		}
		return c.rescoreQuestion(ctx, tx, questionID)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (c *catalog) UpdateAnswer(ctx context.Context, typeID, questionID, id uuid.UUID, req UpdateAnswerRequest) (*repo.Answer, error) {
	if _, err := c.getQuestion(ctx, typeID, questionID); err != nil {
		return nil, err
	}
	a, err := c.db.Answers.Get(ctx, questionID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("get answer: %w", err)
	}

	verr := &ValidationError{}
	if req.Text != nil {
		a.Text = validateText(*req.Text, verr)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	if req.IsCorrect != nil {
		a.IsCorrect = *req.IsCorrect
	}

	err = c.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.Answers.Update(ctx, a); err != nil {
			if repo.IsNotFound(err) {
				return ErrAnswerNotFound
			}
			return fmt.Errorf("update answer: %w", err)
		}
		if req.IsCorrect == nil {
			return nil
		}
		if a.IsCorrect {
			if err := tx.Answers.ClearCorrect(ctx, questionID, a.ID); err != nil {
				return err
			}
		}
		return c.rescoreQuestion(ctx, tx, questionID)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (c *catalog) DeleteAnswer(ctx context.Context, typeID, questionID, id uuid.UUID) error {
	if _, err := c.getQuestion(ctx, typeID, questionID); err != nil {
		return err
	}
	return c.db.WithTx(ctx, func(tx *repo.Tx) error {
		affected, err := tx.Results.AssessmentsByAnswer(ctx, id)
		if err != nil {
			return fmt.Errorf("find scored assessments: %w", err)
		}
		if err := tx.Answers.Delete(ctx, questionID, id); err != nil {
			if repo.IsNotFound(err) {
				return ErrAnswerNotFound
			}
			return fmt.Errorf("delete answer: %w", err)
		}
		return c.rescoreAll(ctx, tx, affected)
	})
}

// rescoreQuestion rescores every assessment with a result on questionID,
// after the correctness of its answers changed.
func (c *catalog) rescoreQuestion(ctx context.Context, tx *repo.Tx, questionID uuid.UUID) error {
	affected, err := tx.Results.AssessmentsByQuestion(ctx, questionID)
	if err != nil {
		return fmt.Errorf("find scored assessments: %w", err)
	}
	return c.rescoreAll(ctx, tx, affected)
}
