package system

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/pkg/authorize"
	"github.com/Alijeyrad/pms_backend/pkg/database"
	"github.com/Alijeyrad/pms_backend/pkg/util/password"
)

func NewSeedCommand() *cobra.Command {
	var adminEmail, adminPassword string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed default casbin policies and, optionally, an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := timeoutContext(cfg)
			defer cancel()

			auth, cleanup, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			defer cleanup(ctx)

			slog.Info("Seeding Casbin policies...")
			if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
				return fmt.Errorf("failed to seed policies: %w", err)
			}

			if adminEmail == "" {
				fmt.Println("Seed completed.")
				return nil
			}
			if adminPassword == "" {
				return errors.New("--admin-password is required with --admin-email")
			}

			client, err := database.NewEntClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to create ent client: %w", err)
			}
			defer client.Close()

			exists, err := client.Users.EmailExists(ctx, adminEmail)
			if err != nil {
				return fmt.Errorf("failed to look up admin: %w", err)
			}
			if exists {
				fmt.Printf("Admin %s already exists.\n", adminEmail)
				return nil
			}

			hash, err := password.NewHasher(password.ParamsFromConfig(cfg.Password)).Hash(adminPassword)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			admin := &repo.User{
				Username:      strings.SplitN(adminEmail, "@", 2)[0],
				Email:         adminEmail,
				PasswordHash:  hash,
				UserRole:      enum.UserTypeAdmin,
				IsVerified:    true,
				IsActive:      true,
				AcceptedTerms: true,
				FirstLogin:    true,
			}
			if err := client.Users.Create(ctx, admin); err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			fmt.Printf("Seed completed. Admin %s created.\n", admin.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "Create an admin account with this email")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "Password for the seeded admin account")

	return cmd
}
