package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/api/http/handler"
	"github.com/Alijeyrad/pms_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/pms_backend/internal/api/http/router"
	"github.com/Alijeyrad/pms_backend/pkg/observability"
)

// Module provides the HTTP Server to the fx graph.
var Module = fx.Module("http", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Redis     *redis.Client `optional:"true"`
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	app := NewApp(p.Cfg, p.Redis, p.OTel != nil)
	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%d", p.Cfg.Server.Port)
			go func() {
				if err := app.Listen(addr); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return app
}

// NewApp builds the fiber app with the global middleware chain and no
// routes.
func NewApp(cfg *config.Config, rdb *redis.Client, telemetry bool) *fiber.App {
	fc := fiber.Config{
		AppName:      cfg.Observability.ServiceName,
		ErrorHandler: handler.ErrorHandler,
	}
	if cfg.Server.BodyLimitMB > 0 {
		fc.BodyLimit = cfg.Server.BodyLimitMB * 1024 * 1024
	}
	if cfg.Server.TimeoutSeconds > 0 {
		fc.ReadTimeout = time.Duration(cfg.Server.TimeoutSeconds) * time.Second
		fc.WriteTimeout = fc.ReadTimeout
	}
	app := fiber.New(fc)

	if telemetry && cfg.Observability.Tracing.Enabled {
		app.Use(observability.FiberMiddleware())
	}

	configureGlobalMiddleware(app, cfg, rdb)
	return app
}

func configureGlobalMiddleware(app *fiber.App, cfg *config.Config, rdb *redis.Client) {
	app.Use(middleware.RequestID())
	app.Use(recoverer.New())

	if cfg.IsProduction() {
		app.Use(helmet.New())
	}
	if cfg.Server.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORS.AllowOrigins,
			AllowMethods:     cfg.Server.CORS.AllowMethods,
			AllowHeaders:     cfg.Server.CORS.AllowHeaders,
			ExposeHeaders:    cfg.Server.CORS.ExposeHeaders,
			AllowCredentials: cfg.Server.CORS.AllowCredentials,
			MaxAge:           cfg.Server.CORS.MaxAgeSeconds,
		}))
	}
	if cfg.Server.RateLimit.Enabled && rdb != nil {
		app.Use(middleware.NewLimiterWithRedis(rdb, cfg.Server.RateLimit))
	}

	app.Use(logger.New(logger.Config{
		Format: "${ip} - [${time}] [req_id=${locals:requestid}] ${method} ${url} ${status}\n",
	}))
}
