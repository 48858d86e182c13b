package router

import (
	"github.com/Alijeyrad/pms_backend/internal/api/http/handler"
	"github.com/gofiber/fiber/v3"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler, authRequired fiber.Handler) {
	group := api.Group("/auth")
	group.Post("/register/:account_type", h.Register)
	group.Post("/login", h.Login)
	group.Post("/oauth", h.ExchangeCode)
	group.Post("/refresh", h.Refresh)
	group.Get("/verify-token/:token", h.VerifyAccount)
	group.Get("/resend-token/:email", h.ResendToken)
	group.Post("/password/forget", h.ForgotPassword)
	group.Post("/password/reset", h.ResetPassword)
	group.Get("/logout", authRequired, h.Logout)
}
