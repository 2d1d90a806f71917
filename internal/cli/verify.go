package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/drrms-migrate/internal/migration"
	"github.com/aqasim81/drrms-migrate/internal/report"
	"github.com/aqasim81/drrms-migrate/internal/tracker"
)

var verifyCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "verify",
	Short: "Report applied migrations whose files have changed",
	Long: `Compare the checksum recorded for each applied migration with the
file on disk. Differences are reported and make the command exit non-zero;
apply never consults checksums and is not affected.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runVerify,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
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

	t := tracker.New(pool)
	if err := t.EnsureTable(ctx); err != nil {
		return err
	}

	records, err := t.List(ctx)
	if err != nil {
		return err
	}

	checked, drift, missing := findDrift(records, sorted)
	report.New(cmd.OutOrStdout()).VerifyResult(checked, drift, missing)

	if len(drift) > 0 {
		return fmt.Errorf("%w: %d migration(s) changed after being applied", tracker.ErrChecksumMismatch, len(drift))
	}

	return nil
}

// findDrift compares applied records with the scripts on disk. Records
// without a checksum are counted but cannot drift.
func findDrift(records []tracker.Record, migrations []migration.Migration) (int, []report.Drift, []string) {
	byVersion := make(map[string]migration.Migration, len(migrations))
	for _, m := range migrations {
		byVersion[m.Version] = m
	}

	var (
		checked int
		drift   []report.Drift
		missing []string
	)

	for _, r := range records {
		if r.Status != tracker.StatusApplied {
			continue
		}

		checked++

		m, ok := byVersion[r.Version]
		if !ok {
			missing = append(missing, r.Version)

			continue
		}

		if r.Checksum == nil || *r.Checksum == m.Checksum {
			continue
		}

		drift = append(drift, report.Drift{
			Version:  r.Version,
			Name:     r.Name,
			Recorded: *r.Checksum,
			Current:  m.Checksum,
		})
	}

	return checked, drift, missing
}
