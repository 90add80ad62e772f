package payroll

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/cli/clienv"
	"github.com/spec-kit/ops-portal/internal/importer"
	"github.com/spec-kit/ops-portal/internal/service"
)

var file string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "import [performance|salary]",
		Short:     "Import a performance or salary sheet",
		Long:      `Import a CSV sheet of staff performance or salary slips. A sheet with any invalid row is rejected as a whole.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(importer.KindPerformance), string(importer.KindSalary)},
		RunE:      run,
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the CSV sheet (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := clienv.Open(ctx, true)
	if err != nil {
		return err
	}
	defer env.Close()

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()

	imports := service.NewImportService(service.ImportDependencies{
		Store:  env.Postgres.Store(),
		Logger: env.Logger,
	})

	result, err := imports.Import(ctx, nil, importer.Kind(args[0]), f)
	if err != nil {
		env.Logger.Error("import failed", zap.String("file", file), zap.Error(err))
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
