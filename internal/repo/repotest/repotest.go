// Package repotest opens throwaway SQLite databases carrying the full schema.
package repotest

import (
	"context"
	"fmt"
	"testing"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/repo/migrate"
)

// Open returns a migrated client on a private in-memory database that is
// closed when the test ends.
func Open(t testing.TB) *repo.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	drv, err := entsql.Open(dialect.SQLite, dsn)
	require.NoError(t, err)

	client := repo.NewClient(drv)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, migrate.Create(context.Background(), drv, migrate.Options{}))
	return client
}

// User inserts a verified user with the given role and returns it.
func User(t testing.TB, c *repo.Client, role enum.UserType) *repo.User {
	t.Helper()

	name := "u" + uuid.NewString()[:8]
	u := &repo.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		UserRole:     role,
		IsVerified:   true,
		IsActive:     true,
		FirstLogin:   true,
	}
	require.NoError(t, c.Users.Create(context.Background(), u))
	return u
}

// Count returns the number of rows in table.
func Count(t testing.TB, c *repo.Client, table string) int {
	t.Helper()

	b := entsql.Dialect(c.Driver().Dialect())
	query, args := b.Select(entsql.Count("*")).From(b.Table(table)).Query()
	rows := &entsql.Rows{}
	require.NoError(t, c.Driver().Query(context.Background(), query, args, rows))
	defer rows.Close()

	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	return n
}
