package database

import (
	"context"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/repo/migrate"
)

// NewEntClient opens the application database and binds the repository
// client to it.
func NewEntClient(cfg config.DatabaseConfig) (*repo.Client, error) {
	return NewEntClientFromConfig(FromCentralConfig(cfg))
}

func NewEntClientFromConfig(cfg Config) (*repo.Client, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}

	var drv dialect.Driver = entsql.OpenDB(dialect.Postgres, db)
	if cfg.EnableLogging {
		drv = debugDriver(drv)
	}

	return repo.NewClient(drv), nil
}

// MigrateEnt applies the declared schema. Destructive changes are only
// allowed when safeMode is off.
func MigrateEnt(ctx context.Context, client *repo.Client, safeMode bool) error {
	return migrate.Create(ctx, client.Driver(), migrate.Options{AllowDrop: !safeMode})
}

// debugDriver logs every statement and its arguments at debug level.
func debugDriver(drv dialect.Driver) dialect.Driver {
	return dialect.DebugWithContext(drv, func(ctx context.Context, args ...any) {
		slog.DebugContext(ctx, "sql", slog.Any("statement", args))
	})
}
