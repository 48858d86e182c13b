package router

import (
	"github.com/Alijeyrad/pms_backend/internal/api/http/handler"
	"github.com/Alijeyrad/pms_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/pms_backend/pkg/authorize"
	"github.com/gofiber/fiber/v3"
)

func (r *Router) registerUserRoutes(api fiber.Router, h *handler.UserHandler, authRequired fiber.Handler, requirePerm permFunc) {
	users := api.Group("/users", authRequired)
	users.Get("/me", requirePerm(authorize.ResourceUser, authorize.ActionRead), h.Me)
	users.Put("/me", requirePerm(authorize.ResourceUser, authorize.ActionUpdate), h.UpdateMe)
	users.Put("/upload", requirePerm(authorize.ResourceUser, authorize.ActionUpdate), h.UploadAvatar)
	users.Put("/password", requirePerm(authorize.ResourceUser, authorize.ActionUpdate), h.ChangePassword)

	admin := middleware.RequireRole(authorize.RoleAdmin)
	users.Get("/", admin, h.List)
	users.Get("/:id", admin, h.Get)
	users.Delete("/:id", admin, requirePerm(authorize.ResourceUser, authorize.ActionDelete), h.Delete)
}
