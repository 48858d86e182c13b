package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/event"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/service/auth"
	"github.com/Alijeyrad/pms_backend/pkg/authcode"
	"github.com/Alijeyrad/pms_backend/pkg/authorize"
	"github.com/Alijeyrad/pms_backend/pkg/database"
	"github.com/Alijeyrad/pms_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/pms_backend/pkg/paseto"
	redispkg "github.com/Alijeyrad/pms_backend/pkg/redis"
	s3pkg "github.com/Alijeyrad/pms_backend/pkg/s3"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideEntClient),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideSessions),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvidePasetoManager),
	fx.Provide(ProvideAuthCodes),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideS3Store),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvideEventPublisher),
)

func ProvideEntClient(lc fx.Lifecycle, cfg *config.Config) (*repo.Client, error) {
	client, err := database.NewEntClient(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing main database connection")
			return client.Close()
		},
	})
	return client, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideSessions(rdb *redis.Client) auth.SessionStore {
	return auth.NewRedisSessions(rdb)
}

func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	dsn := database.NewDSN(cfg.CasbinDatabase)
	enforcer, cleanup, err := authorize.NewEnforcer(authorize.FromCentralConfig(cfg.Authorization), dsn)
	if err != nil {
		return nil, err
	}
	var az authorize.IAuthorization
	az, err = authorize.NewAuthorization(enforcer)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	if cfg.Authorization.EnableAudit {
		az = authorize.NewAuditedAuthorization(az, slog.Default())
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("cleaning up Casbin enforcer")
			cleanup(ctx)
			return nil
		},
	})
	return az, nil
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideAuthCodes(cfg *config.Config) (*authcode.Signer, error) {
	return authcode.NewFromConfig(cfg)
}

func ProvideS3Store(cfg *config.Config) (s3pkg.Store, error) {
	if !cfg.S3.Enabled {
		slog.Warn("s3 disabled; file uploads will be rejected")
	}
	return s3pkg.New(context.Background(), cfg.S3)
}

// ProvideNatsClient returns nil when NATS is disabled.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if !cfg.Nats.Enabled {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name(cfg.Observability.ServiceName))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideEventPublisher(nc *nats.Conn, cfg *config.Config) event.Publisher {
	if nc == nil {
		return event.Noop{}
	}
	return event.NewNATSPublisher(nc, subjectPrefix(cfg))
}

func subjectPrefix(cfg *config.Config) string {
	if cfg.Nats.SubjectPrefix != "" {
		return cfg.Nats.SubjectPrefix
	}
	return "pms"
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
