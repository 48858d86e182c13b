package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/pms_backend/pkg/database"
)

func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the databases listed in server.databases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			fmt.Println("Initializing databases...")
			if err := database.InitializeDatabases(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("failed to initialize databases: %w", err)
			}
			fmt.Println("Databases Initialized successfully.")
			return nil
		},
	}

	return cmd
}
