package cli

import (
	"github.com/spf13/cobra"

	"github.com/aqasim81/drrms-migrate/internal/report"
	"github.com/aqasim81/drrms-migrate/internal/tracker"
)

var statusCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "status",
	Short: "Show migration status",
	Long: `Display every row of the _migrations table ordered by version,
without applying anything.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired
	}

	ctx := commandContext(cmd)

	pool, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	t := tracker.New(pool)
	if err := t.EnsureTable(ctx); err != nil {
		return err
	}

	return printStatus(ctx, report.New(cmd.OutOrStdout()), t)
}
