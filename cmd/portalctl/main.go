package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ops-portal/internal/cli/admin"
	"github.com/spec-kit/ops-portal/internal/cli/migrate"
	"github.com/spec-kit/ops-portal/internal/cli/payroll"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "portalctl - operations portal administration",
		Long:         `portalctl runs database migrations, payroll sheet imports and account bootstrap for the operations portal.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		migrate.NewCommand(),
		payroll.NewCommand(),
		admin.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
