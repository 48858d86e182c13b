package router

import (
	"github.com/Alijeyrad/pms_backend/internal/api/http/handler"
	"github.com/Alijeyrad/pms_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/pms_backend/pkg/authorize"
	"github.com/gofiber/fiber/v3"
)

func (r *Router) registerAssessmentRoutes(api fiber.Router, h *handler.AssessmentHandler, authRequired fiber.Handler, requirePerm permFunc) {
	group := api.Group("/assessment", authRequired)
	practitionerOnly := middleware.PractitionerOnly()

	// Catalog; registered before /:id so "types" is never read as an id.
	types := group.Group("/types")
	types.Get("/", requirePerm(authorize.ResourceAssessmentType, authorize.ActionList), h.ListTypes)
	types.Post("/", practitionerOnly, h.CreateType)
	types.Put("/:type_id", practitionerOnly, h.UpdateType)
	types.Delete("/:type_id", practitionerOnly, h.DeleteType)

	types.Get("/:type_id/questions", requirePerm(authorize.ResourceQuestion, authorize.ActionList), h.ListQuestions)
	types.Post("/:type_id/questions", practitionerOnly, h.CreateQuestion)
	types.Put("/:type_id/questions/:qid", practitionerOnly, h.UpdateQuestion)
	types.Delete("/:type_id/questions/:qid", practitionerOnly, h.DeleteQuestion)

	answers := "/:type_id/questions/:qid/answers"
	types.Get(answers, requirePerm(authorize.ResourceAnswer, authorize.ActionList), h.ListAnswers)
	types.Post(answers, practitionerOnly, h.CreateAnswer)
	types.Put(answers+"/:aid", practitionerOnly, h.UpdateAnswer)
	types.Delete(answers+"/:aid", practitionerOnly, h.DeleteAnswer)

	// Assessments
	group.Get("/", requirePerm(authorize.ResourceAssessment, authorize.ActionList), h.List)
	group.Post("/", practitionerOnly, h.Create)
	group.Get("/:id", requirePerm(authorize.ResourceAssessment, authorize.ActionRead), h.Get)
	group.Put("/:id", practitionerOnly, h.Update)
	group.Delete("/:id", practitionerOnly, h.Delete)
	group.Get("/:id/questions", requirePerm(authorize.ResourceQuestion, authorize.ActionRead), h.Questions)
}
