package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/pkg/authorize"
	"github.com/Alijeyrad/pms_backend/pkg/database"
)

func readConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}

func timeoutContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	return context.WithTimeout(context.Background(), timeout)
}

// openAuthorization connects the casbin enforcer to its database. The ent
// adapter creates the policy table on first use.
func openAuthorization(cfg *config.Config) (authorize.IAuthorization, authorize.CleanupFunc, error) {
	dsn := database.NewDSN(cfg.CasbinDatabase)
	enforcer, cleanup, err := authorize.NewEnforcer(authorize.FromCentralConfig(cfg.Authorization), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	auth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		cleanup(context.Background())
		return nil, nil, fmt.Errorf("failed to create authorization: %w", err)
	}
	return auth, cleanup, nil
}

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			// client db
			fmt.Println("Running Migrations For Client DB.")
			client, err := database.NewEntClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to create ent client: %w", err)
			}
			defer client.Close()

			ctx, cancel := timeoutContext(cfg)
			defer cancel()

			if err := database.MigrateEnt(ctx, client, cfg.Database.Migrations.SafeMode); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			// casbin db
			fmt.Println("Running Migrations For Casbin DB.")
			_, cleanup, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			cleanup(ctx)

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
