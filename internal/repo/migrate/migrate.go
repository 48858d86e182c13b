// Package migrate declares the relational schema and applies it.
package migrate

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
)

type Options struct {
	// AllowDrop lets the migration drop columns and indexes that are no
	// longer declared.
	AllowDrop bool
}

// Create brings the database schema up to date with Tables.
func Create(ctx context.Context, drv dialect.Driver, opts Options) error {
	m, err := schema.NewMigrate(drv,
		schema.WithForeignKeys(true),
		schema.WithDropColumn(opts.AllowDrop),
		schema.WithDropIndex(opts.AllowDrop),
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate: create schema: %w", err)
	}
	return nil
}
