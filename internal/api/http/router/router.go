package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"go.uber.org/fx"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/api/http/handler"
	"github.com/Alijeyrad/pms_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/pms_backend/internal/service/assessment"
	"github.com/Alijeyrad/pms_backend/internal/service/auth"
	"github.com/Alijeyrad/pms_backend/internal/service/patient"
	"github.com/Alijeyrad/pms_backend/internal/service/practitioner"
	"github.com/Alijeyrad/pms_backend/internal/service/user"
	"github.com/Alijeyrad/pms_backend/pkg/authorize"
	"github.com/Alijeyrad/pms_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/pms_backend/pkg/paseto"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Auth            authorize.IAuthorization
	Sessions        auth.SessionStore
	PasetoMgr       *pasetotoken.Manager
	AuthSvc         auth.Service
	UserSvc         user.Service
	PractitionerSvc practitioner.Service
	PatientSvc      patient.Service
	AssessmentSvc   assessment.Service
	CatalogSvc      assessment.Catalog
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

// permFunc builds a casbin gate for one (resource, action) pair.
type permFunc func(authorize.Resource, authorize.Action) fiber.Handler

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Middlewares
	authRequired := middleware.AuthRequired(r.p.PasetoMgr, r.p.Sessions)
	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	userH := handler.NewUserHandler(r.p.UserSvc)
	practitionerH := handler.NewPractitionerHandler(r.p.PractitionerSvc)
	patientH := handler.NewPatientHandler(r.p.PatientSvc)
	assessmentH := handler.NewAssessmentHandler(r.p.AssessmentSvc, r.p.CatalogSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerUserRoutes(api, userH, authRequired, requirePerm)
	r.registerPractitionerRoutes(api, practitionerH, authRequired, requirePerm)
	r.registerPatientRoutes(api, patientH, authRequired, requirePerm)
	r.registerAssessmentRoutes(api, assessmentH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(observability.MetricsHandler()))
	}
}
