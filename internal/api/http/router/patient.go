package router

import (
	"github.com/Alijeyrad/pms_backend/internal/api/http/handler"
	"github.com/Alijeyrad/pms_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/pms_backend/pkg/authorize"
	"github.com/gofiber/fiber/v3"
)

func (r *Router) registerPatientRoutes(api fiber.Router, h *handler.PatientHandler, authRequired fiber.Handler, requirePerm permFunc) {
	group := api.Group("/patients", authRequired)
	practitionerOnly := middleware.PractitionerOnly()
	patientOnly := middleware.PatientOnly()

	group.Get("/", practitionerOnly, h.List)

	// Own profile
	group.Get("/settings", patientOnly, h.Settings)
	group.Put("/settings", patientOnly, h.Update)
	group.Post("/emergency-contact", patientOnly, h.EmergencyContact)
	group.Post("/allergies", patientOnly, h.AddAllergies)
	group.Post("/medications", patientOnly, h.AddMedications)

	// Catalogs
	catalog := group.Group("/catalog")
	catalog.Get("/allergies", requirePerm(authorize.ResourceAllergy, authorize.ActionList), h.ListAllergies)
	catalog.Post("/allergies", requirePerm(authorize.ResourceAllergy, authorize.ActionCreate), h.CreateAllergy)
	catalog.Get("/medications", requirePerm(authorize.ResourceMedication, authorize.ActionList), h.ListMedications)
	catalog.Post("/medications", requirePerm(authorize.ResourceMedication, authorize.ActionCreate), h.CreateMedication)

	group.Get("/:id", practitionerOnly, h.Get)
	group.Delete("/:id", middleware.RequireRole(authorize.RoleAdmin), h.Delete)
}
