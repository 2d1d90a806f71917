package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/aqasim81/drrms-migrate/internal/config"
	"github.com/aqasim81/drrms-migrate/internal/database"
	"github.com/aqasim81/drrms-migrate/internal/executor"
	"github.com/aqasim81/drrms-migrate/internal/migration"
	"github.com/aqasim81/drrms-migrate/internal/report"
	"github.com/aqasim81/drrms-migrate/internal/tracker"
)

// errDatabaseURLRequired is returned when no database URL is configured.
var errDatabaseURLRequired = errors.New( //nolint:gochecknoglobals // sentinel error
	"database URL is required (set --database-url, MIGRATE_DATABASE_URL, database_url in config, or DB_HOST/DB_NAME)",
)

var applyCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "apply",
	Aliases: []string{"up"},
	Short:   "Apply pending migrations and print status",
	Long: `Apply every migration whose version is not yet recorded as applied,
one script at a time in ascending version order. The run stops at the first
script that fails. The status table is printed afterwards either way.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runApply,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig

	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired
	}

	printer := report.New(cmd.OutOrStdout())
	printer.Header()

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

	t := tracker.New(pool)

	return applyAndReport(ctx, printer, newExecutor(pool, t, cfg, printer), t, sorted)
}

// migrationApplier is satisfied by *executor.Executor.
type migrationApplier interface {
	Apply(ctx context.Context, migrations []migration.Migration) (executor.Summary, error)
}

// recordLister is satisfied by *tracker.Tracker.
type recordLister interface {
	List(ctx context.Context) ([]tracker.Record, error)
}

// applyAndReport runs the migrations and prints the summary and status
// table. A failed script still gets a status table; its error is returned
// afterwards.
func applyAndReport(
	ctx context.Context,
	printer *report.Printer,
	applier migrationApplier,
	lister recordLister,
	sorted []migration.Migration,
) error {
	summary, applyErr := applier.Apply(ctx, sorted)

	switch {
	case errors.Is(applyErr, executor.ErrExecutionFailed):
		printer.Stopped()
	case applyErr != nil:
		return applyErr
	}

	printer.Summary(summary)

	if err := printStatus(ctx, printer, lister); err != nil {
		return err
	}

	return applyErr
}

func newExecutor(pool *pgxpool.Pool, t *tracker.Tracker, cfg *config.Config, printer *report.Printer) *executor.Executor {
	return executor.New(pool, t,
		executor.WithLockTimeout(cfg.LockTimeout),
		executor.WithStatementTimeout(cfg.StatementTimeout),
		executor.WithAdvisoryLock(cfg.AdvisoryLock),
		executor.WithLogger(runLog),
		executor.WithPlanCallback(printer.Plan),
		executor.WithProgressCallback(printer.Progress),
	)
}

// loadAndSortMigrations discovers scripts in dir and returns them in
// ascending version order.
func loadAndSortMigrations(fsys afero.Fs, dir string) ([]migration.Migration, error) {
	migrations, err := migration.LoadFromDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	if migration.InconsistentWidths(migrations) {
		runLog.WithField("dir", dir).Warn("migration version prefixes have different widths; use a fixed width such as 001")
	}

	runLog.WithField("count", len(migrations)).Debug("migrations discovered")

	return migration.Sort(migrations), nil
}

func connectDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	runLog.WithField("database", config.RedactURL(cfg.DatabaseURL)).Info("connecting")

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return pool, nil
}

// printStatus renders every tracking row. Errors are returned unchanged.
func printStatus(ctx context.Context, printer *report.Printer, lister recordLister) error {
	records, err := lister.List(ctx)
	if err != nil {
		return err
	}

	return printer.StatusTable(records)
}
