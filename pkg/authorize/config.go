package authorize

import "github.com/Alijeyrad/pms_backend/config"

// Config holds configuration for the authorization system
type Config struct {
	// CasbinModelPath is the model file; empty selects DefaultModel.
	CasbinModelPath string

	// EnableAudit logs every authorization decision.
	EnableAudit bool

	// PolicySyncEnabled propagates policy changes across instances through
	// Postgres LISTEN/NOTIFY.
	PolicySyncEnabled bool
}

func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{
		CasbinModelPath:   c.CasbinModelPath,
		EnableAudit:       c.EnableAudit,
		PolicySyncEnabled: c.PolicySyncEnabled,
	}
}
