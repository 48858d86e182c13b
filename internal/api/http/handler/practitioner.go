package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/service/paging"
	"github.com/Alijeyrad/pms_backend/internal/service/practitioner"
	"github.com/Alijeyrad/pms_backend/pkg/s3"
)

type PractitionerHandler struct {
	svc practitioner.Service
}

func NewPractitionerHandler(svc practitioner.Service) *PractitionerHandler {
	return &PractitionerHandler{svc: svc}
}

// GET /api/v1/practitioners?page=&per_page=
func (h *PractitionerHandler) List(c fiber.Ctx) error {
	var q paging.Params
	_ = c.Bind().Query(&q)

	res, err := h.svc.List(c.Context(), q)
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return ok(c, res, "")
}

// GET /api/v1/practitioners/:id
func (h *PractitionerHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return ok(c, p, "")
}

// DELETE /api/v1/practitioners/:id
func (h *PractitionerHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return mapPractitionerError(c, err)
	}
	return message(c, fiber.StatusOK, "Account deleted successfully")
}

// GET /api/v1/practitioners/settings
func (h *PractitionerHandler) Settings(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetProfile(c.Context(), id.UserID)
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return ok(c, p, "")
}

// PUT /api/v1/practitioners/settings
func (h *PractitionerHandler) Update(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var body struct {
		LicenseNumber         *string      `json:"license_number"`
		Category              *string      `json:"category"`
		MeansOfIdentification *string      `json:"means_of_identification"`
		IdentificationNumber  *string      `json:"identification_number"`
		Specializations       *[]uuid.UUID `json:"specializations"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	p, err := h.svc.UpdateProfile(c.Context(), id.UserID, practitioner.UpdateRequest{
		LicenseNumber:         body.LicenseNumber,
		Category:              body.Category,
		MeansOfIdentification: body.MeansOfIdentification,
		IdentificationNumber:  body.IdentificationNumber,
		Specializations:       body.Specializations,
	})
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return ok(c, p, "Profile updated successfully")
}

// PUT /api/v1/practitioners/upload
// Multipart fields: certificate, means_of_identification (files) and
// means_of_identification_type.
func (h *PractitionerHandler) Upload(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var closers []multipart.File
	defer func() { closeAll(closers...) }()

	docs := practitioner.Documents{}
	for field, dst := range map[string]**s3.File{
		"means_of_identification": &docs.Identification,
		"certificate":             &docs.Certificate,
	} {
		f, closer, err := formFile(c, field)
		if err != nil {
			return err
		}
		closers = append(closers, closer)
		*dst = f
	}
	if t := c.FormValue("means_of_identification_type"); t != "" {
		docs.IdentificationType = &t
	}

	p, err := h.svc.UploadDocuments(c.Context(), id.UserID, docs)
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return ok(c, p, "Documents uploaded successfully")
}

// GET /api/v1/practitioners/specializations
func (h *PractitionerHandler) ListSpecializations(c fiber.Ctx) error {
	out, err := h.svc.ListSpecializations(c.Context())
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return ok(c, out, "")
}

// POST /api/v1/practitioners/specializations
func (h *PractitionerHandler) CreateSpecialization(c fiber.Ctx) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	sp, err := h.svc.CreateSpecialization(c.Context(), practitioner.SpecializationRequest{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		return mapPractitionerError(c, err)
	}
	return created(c, sp, "Specialization created successfully")
}

func mapPractitionerError(c fiber.Ctx, err error) error {
	switch {
	case isInvalid(err):
		return fail(c, err)
	case errors.Is(err, practitioner.ErrPractitionerNotFound):
		return message(c, fiber.StatusNotFound, "Practitioner not found.")
	case errors.Is(err, practitioner.ErrNoDocuments):
		return badRequest(c, "No files were uploaded.")
	case errors.Is(err, practitioner.ErrLicenseTaken),
		errors.Is(err, practitioner.ErrSpecializationTaken):
		return conflict(c, err)
	case errors.Is(err, s3.ErrDisabled):
		return message(c, fiber.StatusServiceUnavailable, "File uploads are not available.")
	case errors.Is(err, s3.ErrContentType), errors.Is(err, s3.ErrTooLarge):
		return badRequest(c, sentence(err))
	default:
		return fail(c, err)
	}
}
