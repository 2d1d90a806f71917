package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/drrms-migrate/internal/executor"
	"github.com/aqasim81/drrms-migrate/internal/migration"
	"github.com/aqasim81/drrms-migrate/internal/parser"
	"github.com/aqasim81/drrms-migrate/internal/report"
	"github.com/aqasim81/drrms-migrate/internal/tracker"
)

var planCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "plan",
	Short: "Show pending migrations in apply order",
	Long: `List the migrations apply would run, in order, with their statement
counts. Only the _migrations table is created if missing; nothing is applied.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runPlan,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired
	}

	sorted, err := loadAndSortMigrations(appFs, cfg.MigrationsDir)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	pool, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	exec := executor.New(pool, tracker.New(pool), executor.WithLogger(runLog))

	pending, err := exec.Pending(ctx, sorted)
	if err != nil {
		return err
	}

	entries, err := planEntries(pending)
	if err != nil {
		return err
	}

	report.New(cmd.OutOrStdout()).PlanList(entries)

	return nil
}

// planEntries splits each pending script to count its statements.
func planEntries(pending []migration.Migration) ([]report.PlanEntry, error) {
	entries := make([]report.PlanEntry, 0, len(pending))

	for _, m := range pending {
		stmts, err := parser.Split(m.SQL)
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", m.Name, err)
		}

		entries = append(entries, report.PlanEntry{
			Version:    m.Version,
			Name:       m.Name,
			Statements: len(stmts),
			NoTx:       executor.NeedsNoTransaction(stmts),
		})
	}

	return entries, nil
}
