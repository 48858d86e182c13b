// Package assessment records administered assessments, scores them and
// manages the question catalog they draw from.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/event"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/service/paging"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	PatientID        uuid.UUID
	AssessmentTypeID uuid.UUID
	Date             *time.Time
	Results          []ResultInput
}

// UpdateRequest changes the date and, when Results is non-nil, replaces the
// whole result set. A non-nil empty slice clears it.
type UpdateRequest struct {
	Date    *time.Time
	Results *[]ResultInput
}

type ListRequest struct {
	paging.Params
	PatientID        *uuid.UUID
	AssessmentTypeID *uuid.UUID
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

// Service manages assessments. Every call is scoped to the caller: an
// assessment is visible only to its patient and its practitioner.
type Service interface {
	Create(ctx context.Context, practitionerID uuid.UUID, req CreateRequest) (*View, error)
	Get(ctx context.Context, callerID, id uuid.UUID) (*View, error)
	List(ctx context.Context, callerID uuid.UUID, req ListRequest) (*paging.Result[View], error)
	Update(ctx context.Context, callerID, id uuid.UUID, req UpdateRequest) (*View, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	Questions(ctx context.Context, callerID, id uuid.UUID) ([]repo.Question, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type service struct {
	db      *repo.Client
	rec     reconciler
	events  event.Publisher
	pageDef int
	pageMax int
	now     func() time.Time
}

func New(db *repo.Client, events event.Publisher, cfg *config.Config) (Service, error) {
	scorer, err := NewScorer(cfg.Assessment.Scoring.Policy, cfg.Assessment.Scoring.PointsPerCorrect)
	if err != nil {
		return nil, fmt.Errorf("assessment service: %w", err)
	}
	if events == nil {
		events = event.Noop{}
	}
	return &service{
		db:      db,
		rec:     reconciler{scorer: scorer},
		events:  events,
		pageDef: cfg.Assessment.DefaultPageSize,
		pageMax: cfg.Assessment.MaxPageSize,
		now:     time.Now,
	}, nil
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func (s *service) Create(ctx context.Context, practitionerID uuid.UUID, req CreateRequest) (*View, error) {
	verr := &ValidationError{}

	if req.PatientID == uuid.Nil {
		verr.Add("patient", ErrRequired)
	} else if err := s.checkPatient(ctx, req.PatientID); err != nil {
		if !errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		verr.Add("patient", err)
	}

	typeOK := false
	if req.AssessmentTypeID == uuid.Nil {
		verr.Add("assessment_type", ErrRequired)
	} else if _, err := s.db.AssessmentTypes.Get(ctx, req.AssessmentTypeID); err != nil {
		if !repo.IsNotFound(err) {
			return nil, fmt.Errorf("get assessment type: %w", err)
		}
		verr.Add("assessment_type", ErrAssessmentTypeNotFound)
	} else {
		typeOK = true
	}

	if typeOK {
		if err := validateResults(ctx, s.db.Stores, req.AssessmentTypeID, req.Results, verr); err != nil {
			return nil, err
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	a := &repo.Assessment{
		PractitionerID:   practitionerID,
		PatientID:        req.PatientID,
		AssessmentTypeID: req.AssessmentTypeID,
		Date:             s.day(req.Date),
	}
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		if err := tx.Assessments.Create(ctx, a); err != nil {
			return fmt.Errorf("create assessment: %w", err)
		}
		_, score, err := s.rec.replace(ctx, tx, a.ID, req.Results)
		a.FinalScore = score
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "assessment created",
		"assessment_id", a.ID,
		"practitioner_id", practitionerID,
		"results", len(req.Results),
		"final_score", a.FinalScore,
	)
	s.publish(ctx, event.AssessmentCreated, a)

	return s.Get(ctx, practitionerID, a.ID)
}

func (s *service) checkPatient(ctx context.Context, id uuid.UUID) error {
	u, err := s.db.Users.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("get patient: %w", err)
	}
	if u.UserRole != enum.UserTypeUser {
		return ErrPatientNotFound
	}
	return nil
}

// day truncates t (or now) to a UTC calendar date.
func (s *service) day(t *time.Time) time.Time {
	d := s.now()
	if t != nil {
		d = *t
	}
	d = d.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

func (s *service) get(ctx context.Context, callerID, id uuid.UUID) (*repo.Assessment, error) {
	a, err := s.db.Assessments.Get(ctx, callerID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, callerID, id uuid.UUID) (*View, error) {
	a, err := s.get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	views, err := expand(ctx, s.db.Stores, []repo.Assessment{*a})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *service) List(ctx context.Context, callerID uuid.UUID, req ListRequest) (*paging.Result[View], error) {
	p := req.Params.Normalize(s.pageDef, s.pageMax)
	list, total, err := s.db.Assessments.List(ctx, callerID, repo.AssessmentFilter{
		PatientID:        req.PatientID,
		AssessmentTypeID: req.AssessmentTypeID,
		Page:             p.Repo(),
	})
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	views, err := expand(ctx, s.db.Stores, list)
	if err != nil {
		return nil, err
	}
	return paging.NewResult(views, total, p), nil
}

// Questions returns the catalog questions, with answers, of the
// assessment's type.
func (s *service) Questions(ctx context.Context, callerID, id uuid.UUID) ([]repo.Question, error) {
	a, err := s.get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	qs, err := s.db.Questions.ListByType(ctx, a.AssessmentTypeID, true)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return qs, nil
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (s *service) Update(ctx context.Context, callerID, id uuid.UUID, req UpdateRequest) (*View, error) {
	a, err := s.get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if req.Results != nil {
		verr := &ValidationError{}
		if err := validateResults(ctx, s.db.Stores, a.AssessmentTypeID, *req.Results, verr); err != nil {
			return nil, err
		}
		if err := verr.Err(); err != nil {
			return nil, err
		}
	}

	err = s.db.WithTx(ctx, func(tx *repo.Tx) error {
		// Serializes concurrent writers of this assessment.
		if err := tx.Assessments.Lock(ctx, callerID, id); err != nil {
			if repo.IsNotFound(err) {
				return ErrAssessmentNotFound
			}
			return fmt.Errorf("lock assessment: %w", err)
		}
		if req.Date != nil {
			if err := tx.Assessments.SetDate(ctx, id, s.day(req.Date)); err != nil {
				return fmt.Errorf("update date: %w", err)
			}
		}
		if req.Results == nil {
			return nil
		}
		_, score, err := s.rec.replace(ctx, tx, id, *req.Results)
		a.FinalScore = score
		return err
	})
	if err != nil {
		return nil, err
	}

	if req.Results != nil {
		slog.InfoContext(ctx, "assessment results replaced",
			"assessment_id", id,
			"results", len(*req.Results),
			"final_score", a.FinalScore,
		)
	}
	s.publish(ctx, event.AssessmentUpdated, a)

	return s.Get(ctx, callerID, id)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func (s *service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	a, err := s.get(ctx, callerID, id)
	if err != nil {
		return err
	}
	if err := s.db.Assessments.Delete(ctx, callerID, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrAssessmentNotFound
		}
		return fmt.Errorf("delete assessment: %w", err)
	}
	s.publish(ctx, event.AssessmentDeleted, a)
	return nil
}

func (s *service) publish(ctx context.Context, kind event.Kind, a *repo.Assessment) {
	err := s.events.PublishAssessment(ctx, event.Assessment{
		Kind:           kind,
		ID:             a.ID,
		PatientID:      a.PatientID,
		PractitionerID: a.PractitionerID,
		FinalScore:     a.FinalScore,
		At:             s.now().UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "publish assessment event failed", "kind", kind, "assessment_id", a.ID, "err", err)
	}
}
