package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/service/paging"
	"github.com/Alijeyrad/pms_backend/internal/service/patient"
)

type PatientHandler struct {
	svc patient.Service
}

func NewPatientHandler(svc patient.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

type catalogItemBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func catalogItems(in []catalogItemBody) []patient.CatalogItem {
	out := make([]patient.CatalogItem, len(in))
	for i, it := range in {
		out[i] = patient.CatalogItem{Name: it.Name, Description: it.Description}
	}
	return out
}

func mapPatientError(c fiber.Ctx, err error) error {
	switch {
	case isInvalid(err):
		return fail(c, err)
	case errors.Is(err, patient.ErrPatientNotFound):
		return message(c, fiber.StatusNotFound, "Patient not found.")
	case errors.Is(err, patient.ErrAllergyTaken), errors.Is(err, patient.ErrMedicationTaken):
		return conflict(c, err)
	default:
		return fail(c, err)
	}
}

// ---------------------------------------------------------------------------
// Practitioner views
// ---------------------------------------------------------------------------

// GET /api/v1/patients?page=&per_page=
func (h *PatientHandler) List(c fiber.Ctx) error {
	var q paging.Params
	_ = c.Bind().Query(&q)

	res, err := h.svc.List(c.Context(), q)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, res, "")
}

// GET /api/v1/patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p, "")
}

// DELETE /api/v1/patients/:id
func (h *PatientHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return mapPatientError(c, err)
	}
	return message(c, fiber.StatusOK, "Account deleted successfully")
}

// ---------------------------------------------------------------------------
// Own profile
// ---------------------------------------------------------------------------

// GET /api/v1/patients/settings
func (h *PatientHandler) Settings(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetProfile(c.Context(), id.UserID)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p, "")
}

// PUT /api/v1/patients/settings
func (h *PatientHandler) Update(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var body struct {
		BloodGroup       *string `json:"blood_group"`
		Genotype         *string `json:"genotype"`
		Nationality      *string `json:"nationality"`
		EmergencyContact *struct {
			Name        string `json:"name"`
			PhoneNumber string `json:"phone_number"`
		} `json:"emergency_contact"`
		Allergies   *[]uuid.UUID `json:"allergies"`
		Medications *[]uuid.UUID `json:"medications"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}

	req := patient.UpdateRequest{
		BloodGroup:  body.BloodGroup,
		Genotype:    body.Genotype,
		Nationality: body.Nationality,
		Allergies:   body.Allergies,
		Medications: body.Medications,
	}
	if ec := body.EmergencyContact; ec != nil {
		req.EmergencyContact = &patient.EmergencyContactInput{Name: ec.Name, PhoneNumber: ec.PhoneNumber}
	}

	p, err := h.svc.UpdateProfile(c.Context(), id.UserID, req)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p, "Profile updated successfully")
}

// POST /api/v1/patients/emergency-contact
func (h *PatientHandler) EmergencyContact(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var body struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	p, err := h.svc.SetEmergencyContact(c.Context(), id.UserID, patient.EmergencyContactInput{
		Name:        body.Name,
		PhoneNumber: body.PhoneNumber,
	})
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p, "Emergency contact added")
}

// POST /api/v1/patients/allergies  {"allergies": [{"name", "description"}]}
func (h *PatientHandler) AddAllergies(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var body struct {
		Allergies []catalogItemBody `json:"allergies"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	p, err := h.svc.AddAllergies(c.Context(), id.UserID, catalogItems(body.Allergies))
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p, "Allergies added")
}

// POST /api/v1/patients/medications  {"medications": [{"name"}]}
func (h *PatientHandler) AddMedications(c fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var body struct {
		Medications []catalogItemBody `json:"medications"`
	}
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	p, err := h.svc.AddMedications(c.Context(), id.UserID, catalogItems(body.Medications))
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p, "Medication added")
}

// ---------------------------------------------------------------------------
// Catalogs
// ---------------------------------------------------------------------------

// GET /api/v1/patients/catalog/allergies
func (h *PatientHandler) ListAllergies(c fiber.Ctx) error {
	out, err := h.svc.ListAllergies(c.Context())
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, out, "")
}

// POST /api/v1/patients/catalog/allergies
func (h *PatientHandler) CreateAllergy(c fiber.Ctx) error {
	var body catalogItemBody
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	a, err := h.svc.CreateAllergy(c.Context(), patient.CatalogItem{Name: body.Name, Description: body.Description})
	if err != nil {
		return mapPatientError(c, err)
	}
	return created(c, a, "Allergy created successfully")
}

// GET /api/v1/patients/catalog/medications
func (h *PatientHandler) ListMedications(c fiber.Ctx) error {
	out, err := h.svc.ListMedications(c.Context())
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, out, "")
}

// POST /api/v1/patients/catalog/medications
func (h *PatientHandler) CreateMedication(c fiber.Ctx) error {
	var body catalogItemBody
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	m, err := h.svc.CreateMedication(c.Context(), patient.CatalogItem{Name: body.Name})
	if err != nil {
		return mapPatientError(c, err)
	}
	return created(c, m, "Medication created successfully")
}
