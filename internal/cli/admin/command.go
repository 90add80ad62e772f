package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ops-portal/internal/cli/clienv"
	"github.com/spec-kit/ops-portal/internal/service"
)

var (
	employeeID string
	password   string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create the first admin account",
		Long:  `Create an active admin account unless one with the same employee id already exists.`,
		Args:  cobra.NoArgs,
		RunE:  run,
	}

	cmd.Flags().StringVar(&employeeID, "employee-id", "", "Employee id of the admin (required)")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (default: AUTH_BOOTSTRAP_ADMIN_PASSWORD)")
	cmd.MarkFlagRequired("employee-id")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := clienv.Open(ctx, true)
	if err != nil {
		return err
	}
	defer env.Close()

	secret := password
	if secret == "" {
		secret = env.Config.Auth.BootstrapAdminPassword
	}
	if secret == "" {
		return fmt.Errorf("a password is required")
	}

	directory := service.NewDirectoryService(service.DirectoryDependencies{
		Store:      env.Postgres.Store(),
		BcryptCost: env.Config.Auth.BcryptCost,
		Logger:     env.Logger,
	})

	created, err := directory.EnsureAdmin(ctx, employeeID, secret)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", employeeID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", employeeID)
	}
	return nil
}
