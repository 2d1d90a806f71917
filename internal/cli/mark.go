package cli

import (
	"github.com/spf13/cobra"

	"github.com/aqasim81/drrms-migrate/internal/report"
	"github.com/aqasim81/drrms-migrate/internal/tracker"
)

var markRolledBackCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "mark-rolled-back <version>",
	Short: "Mark a migration as rolled back after undoing it by hand",
	Long: `Set the _migrations row for version to 'rolled_back'. Run this only
after the inverse SQL has been applied manually; the next apply will treat
the version as pending again.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runMarkRolledBack,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(markRolledBackCmd)
}

func runMarkRolledBack(cmd *cobra.Command, args []string) error {
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

	if err := t.RecordRolledBack(ctx, args[0]); err != nil {
		return err
	}

	runLog.WithField("version", args[0]).Info("marked rolled back")
	report.New(cmd.OutOrStdout()).MarkedRolledBack(args[0])

	return nil
}
