package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Alijeyrad/pms_backend/config"
)

// InitializeDatabases creates every database listed in server.databases that
// does not exist yet. It connects through the maintenance "postgres" database.
func InitializeDatabases(ctx context.Context, cfg *config.Config) error {
	if len(cfg.Server.Databases) == 0 {
		return errors.New("no database names provided")
	}

	admin := FromCentralConfig(cfg.Database)
	admin.DBName = "postgres"

	conn, err := openSQLDB(admin)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer conn.Close()

	for _, name := range cfg.Server.Databases {
		if err := createDatabaseIfNotExists(ctx, conn, name); err != nil {
			return fmt.Errorf("failed to create database %q: %w", name, err)
		}
	}

	return nil
}

func createDatabaseIfNotExists(ctx context.Context, conn *sql.DB, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var exists bool
	err := conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE does not take bind parameters.
	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	return nil
}
