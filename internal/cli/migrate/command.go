package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ops-portal/internal/cli/clienv"
	"github.com/spec-kit/ops-portal/internal/persistence"
)

var dir string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  `Apply every SQL migration in the migrations directory in lexical order. Migrations are re-runnable.`,
		Args:  cobra.NoArgs,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Migrations directory (default: POSTGRES_MIGRATIONS_DIR)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := clienv.Open(ctx, true)
	if err != nil {
		return err
	}
	defer env.Close()

	migrationsDir := dir
	if migrationsDir == "" {
		migrationsDir = env.Config.Postgres.MigrationsDir
	}

	if err := persistence.RunMigrations(ctx, env.Postgres.PoolHandle(), migrationsDir, env.Logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
