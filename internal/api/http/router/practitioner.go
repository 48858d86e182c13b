package router

import (
	"github.com/Alijeyrad/pms_backend/internal/api/http/handler"
	"github.com/Alijeyrad/pms_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/pms_backend/pkg/authorize"
	"github.com/gofiber/fiber/v3"
)

func (r *Router) registerPractitionerRoutes(api fiber.Router, h *handler.PractitionerHandler, authRequired fiber.Handler, requirePerm permFunc) {
	group := api.Group("/practitioners", authRequired)
	own := middleware.PractitionerOnly()

	group.Get("/", requirePerm(authorize.ResourcePractitioner, authorize.ActionList), h.List)

	group.Get("/settings", own, h.Settings)
	group.Put("/settings", own, h.Update)
	group.Put("/upload", own, h.Upload)

	group.Get("/specializations", requirePerm(authorize.ResourceSpecialization, authorize.ActionList), h.ListSpecializations)
	group.Post("/specializations", requirePerm(authorize.ResourceSpecialization, authorize.ActionCreate), h.CreateSpecialization)

	group.Get("/:id", requirePerm(authorize.ResourcePractitioner, authorize.ActionRead), h.Get)
	group.Delete("/:id", middleware.RequireRole(authorize.RoleAdmin), h.Delete)
}
