// Package authorizetest builds file-backed enforcers for tests.
package authorizetest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/pkg/authorize"
)

// Enforcer returns an enforcer on the default model with an empty policy
// file in a temp directory.
func Enforcer(t testing.TB) *casbin.DistributedEnforcer {
	t.Helper()

	policyPath := filepath.Join(t.TempDir(), "policy.csv")
	require.NoError(t, os.WriteFile(policyPath, nil, 0o644))

	m, err := authorize.LoadModel("")
	require.NoError(t, err)

	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(policyPath))
	require.NoError(t, err)
	e.EnableAutoSave(false)
	e.EnableEnforce(true)
	return e
}

// Seeded returns an authorization carrying the default policies.
func Seeded(t testing.TB) authorize.IAuthorization {
	t.Helper()

	auth, err := authorize.NewAuthorization(Enforcer(t))
	require.NoError(t, err)
	require.NoError(t, authorize.SeedDefaultPolicies(context.Background(), auth))
	return auth
}
