package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/service/assessment"
	"github.com/Alijeyrad/pms_backend/internal/service/paging"
)

type AssessmentHandler struct {
	svc     assessment.Service
	catalog assessment.Catalog
}

func NewAssessmentHandler(svc assessment.Service, catalog assessment.Catalog) *AssessmentHandler {
	return &AssessmentHandler{svc: svc, catalog: catalog}
}

func mapAssessmentError(c fiber.Ctx, err error) error {
	switch {
	case isInvalid(err):
		return fail(c, err)
	case errors.Is(err, assessment.ErrAssessmentNotFound):
		return message(c, fiber.StatusNotFound, "Assessment not found")
	case errors.Is(err, assessment.ErrAssessmentTypeNotFound):
		return message(c, fiber.StatusNotFound, "Assessment type not found")
	case errors.Is(err, assessment.ErrQuestionNotFound):
		return message(c, fiber.StatusNotFound, "Question not found")
	case errors.Is(err, assessment.ErrAnswerNotFound):
		return message(c, fiber.StatusNotFound, "Answer not found")
	case errors.Is(err, assessment.ErrTypeNameTaken):
		return conflict(c, err)
	default:
		return fail(c, err)
	}
}

// optionalID parses an optional uuid query value. A malformed value is a
// field error on name.
func optionalID(raw, name string, verr *assessment.ValidationError) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		verr.Add(name, errors.New("must be a valid UUID"))
		return nil
	}
	return &id
}

// ---------------------------------------------------------------------------
// Assessments
// ---------------------------------------------------------------------------

// GET /api/v1/assessment?page=&per_page=&patient=&assessment_type=
func (h *AssessmentHandler) List(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var q struct {
		paging.Params
		Patient        string `query:"patient"`
		AssessmentType string `query:"assessment_type"`
	}
	_ = c.Bind().Query(&q)

	verr := &assessment.ValidationError{}
	req := assessment.ListRequest{
		Params:           q.Params,
		PatientID:        optionalID(q.Patient, "patient", verr),
		AssessmentTypeID: optionalID(q.AssessmentType, "assessment_type", verr),
	}
	if len(verr.Fields) > 0 {
		return invalid(c, verr)
	}

	res, err := h.svc.List(c.Context(), id.UserID, req)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, res, "")
}

// POST /api/v1/assessment
func (h *AssessmentHandler) Create(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var body struct {
		Patient        uuid.UUID                `json:"patient"`
		AssessmentType uuid.UUID                `json:"assessment_type"`
		Date           *string                  `json:"date"`
		Results        []assessment.ResultInput `json:"results"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	verr := &assessment.ValidationError{}
	date := parseDate(body.Date, "date", verr)
	if len(verr.Fields) > 0 {
		return invalid(c, verr)
	}

	v, err := h.svc.Create(c.Context(), id.UserID, assessment.CreateRequest{
		PatientID:        body.Patient,
		AssessmentTypeID: body.AssessmentType,
		Date:             date,
		Results:          body.Results,
	})
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return created(c, v, "Assessment created successfully")
}

// GET /api/v1/assessment/:id
func (h *AssessmentHandler) Get(c fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	v, err := h.svc.Get(c.Context(), caller.UserID, id)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, v, "")
}

// PUT /api/v1/assessment/:id
func (h *AssessmentHandler) Update(c fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var body struct {
		Date    *string                   `json:"date"`
		Results *[]assessment.ResultInput `json:"results"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	verr := &assessment.ValidationError{}
	date := parseDate(body.Date, "date", verr)
	if len(verr.Fields) > 0 {
		return invalid(c, verr)
	}

	v, err := h.svc.Update(c.Context(), caller.UserID, id, assessment.UpdateRequest{
		Date:    date,
		Results: body.Results,
	})
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, v, "Assessment updated successfully")
}

// DELETE /api/v1/assessment/:id
func (h *AssessmentHandler) Delete(c fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Context(), caller.UserID, id); err != nil {
		return mapAssessmentError(c, err)
	}
	return message(c, fiber.StatusOK, "Assessment deleted successfully")
}

// GET /api/v1/assessment/:id/questions
func (h *AssessmentHandler) Questions(c fiber.Ctx) error {
	caller, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	qs, err := h.svc.Questions(c.Context(), caller.UserID, id)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, qs, "")
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// GET /api/v1/assessment/types
func (h *AssessmentHandler) ListTypes(c fiber.Ctx) error {
	out, err := h.catalog.ListTypes(c.Context())
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, out, "")
}

// POST /api/v1/assessment/types
func (h *AssessmentHandler) CreateType(c fiber.Ctx) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	t, err := h.catalog.CreateType(c.Context(), assessment.CreateTypeRequest{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return created(c, t, "Assessment type created successfully")
}

// PUT /api/v1/assessment/types/:type_id
func (h *AssessmentHandler) UpdateType(c fiber.Ctx) error {
	typeID, err := pathID(c, "type_id")
	if err != nil {
		return err
	}
	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	t, err := h.catalog.UpdateType(c.Context(), typeID, assessment.UpdateTypeRequest{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, t, "Assessment type updated successfully")
}

// DELETE /api/v1/assessment/types/:type_id
func (h *AssessmentHandler) DeleteType(c fiber.Ctx) error {
	typeID, err := pathID(c, "type_id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteType(c.Context(), typeID); err != nil {
		return mapAssessmentError(c, err)
	}
	return message(c, fiber.StatusOK, "Assessment type deleted successfully")
}

// ---------------------------------------------------------------------------
// Questions
// ---------------------------------------------------------------------------

// GET /api/v1/assessment/types/:type_id/questions
func (h *AssessmentHandler) ListQuestions(c fiber.Ctx) error {
	typeID, err := pathID(c, "type_id")
	if err != nil {
		return err
	}
	out, err := h.catalog.ListQuestions(c.Context(), typeID)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, out, "")
}

type questionBody struct {
	Text string `json:"text"`
}

// POST /api/v1/assessment/types/:type_id/questions
func (h *AssessmentHandler) CreateQuestion(c fiber.Ctx) error {
	typeID, err := pathID(c, "type_id")
	if err != nil {
		return err
	}
	var body questionBody
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	q, err := h.catalog.CreateQuestion(c.Context(), typeID, assessment.QuestionRequest{Text: body.Text})
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return created(c, q, "Question added successfully")
}

// PUT /api/v1/assessment/types/:type_id/questions/:qid
func (h *AssessmentHandler) UpdateQuestion(c fiber.Ctx) error {
	typeID, err := pathID(c, "type_id")
	if err != nil {
		return err
	}
	qid, err := pathID(c, "qid")
	if err != nil {
		return err
	}
	var body questionBody
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	q, err := h.catalog.UpdateQuestion(c.Context(), typeID, qid, assessment.QuestionRequest{Text: body.Text})
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, q, "Question updated successfully")
}

// DELETE /api/v1/assessment/types/:type_id/questions/:qid
func (h *AssessmentHandler) DeleteQuestion(c fiber.Ctx) error {
	typeID, err := pathID(c, "type_id")
	if err != nil {
		return err
	}
	qid, err := pathID(c, "qid")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteQuestion(c.Context(), typeID, qid); err != nil {
		return mapAssessmentError(c, err)
	}
	return message(c, fiber.StatusOK, "Question deleted successfully")
}

// ---------------------------------------------------------------------------
// Answers
// ---------------------------------------------------------------------------

func questionPath(c fiber.Ctx) (typeID, qid uuid.UUID, err error) {
	if typeID, err = pathID(c, "type_id"); err != nil {
		return
	}
	qid, err = pathID(c, "qid")
	return
}

// GET /api/v1/assessment/types/:type_id/questions/:qid/answers
func (h *AssessmentHandler) ListAnswers(c fiber.Ctx) error {
	typeID, qid, err := questionPath(c)
	if err != nil {
		return err
	}
	out, err := h.catalog.ListAnswers(c.Context(), typeID, qid)
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, out, "")
}

// POST /api/v1/assessment/types/:type_id/questions/:qid/answers
func (h *AssessmentHandler) CreateAnswer(c fiber.Ctx) error {
	typeID, qid, err := questionPath(c)
	if err != nil {
		return err
	}
	var body struct {
		Text      string `json:"text"`
		IsCorrect bool   `json:"is_correct"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	a, err := h.catalog.CreateAnswer(c.Context(), typeID, qid, assessment.CreateAnswerRequest{
		Text:      body.Text,
		IsCorrect: body.IsCorrect,
	})
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return created(c, a, "Answer submitted successfully")
}

// PUT /api/v1/assessment/types/:type_id/questions/:qid/answers/:aid
func (h *AssessmentHandler) UpdateAnswer(c fiber.Ctx) error {
	typeID, qid, err := questionPath(c)
	if err != nil {
		return err
	}
	aid, err := pathID(c, "aid")
	if err != nil {
		return err
	}
	var body struct {
		Text      *string `json:"text"`
		IsCorrect *bool   `json:"is_correct"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	a, err := h.catalog.UpdateAnswer(c.Context(), typeID, qid, aid, assessment.UpdateAnswerRequest{
		Text:      body.Text,
		IsCorrect: body.IsCorrect,
	})
	if err != nil {
		return mapAssessmentError(c, err)
	}
	return ok(c, a, "Answer updated successfully")
}

// DELETE /api/v1/assessment/types/:type_id/questions/:qid/answers/:aid
func (h *AssessmentHandler) DeleteAnswer(c fiber.Ctx) error {
	typeID, qid, err := questionPath(c)
	if err != nil {
		return err
	}
	aid, err := pathID(c, "aid")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteAnswer(c.Context(), typeID, qid, aid); err != nil {
		return mapAssessmentError(c, err)
	}
	return message(c, fiber.StatusOK, "Answer deleted successfully")
}
