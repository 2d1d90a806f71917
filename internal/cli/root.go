package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/aqasim81/drrms-migrate/internal/config"
	"github.com/aqasim81/drrms-migrate/internal/logging"
	"github.com/aqasim81/drrms-migrate/internal/report"
)

const version = "0.1.0"

// dotEnvFile is loaded into the environment before configuration is read.
const dotEnvFile = ".env"

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// runLog carries the run_id of the current invocation.
var runLog logrus.FieldLogger = logging.Discard() //nolint:gochecknoglobals // set once per invocation

// appFs is the filesystem migrations are discovered on.
var appFs = afero.NewOsFs() //nolint:gochecknoglobals // swapped for a MemMapFs in tests

// rootCmd is the base command. Run without a subcommand it applies pending
// migrations and prints the status table.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "drrms-migrate",
	Version: version,
	Short:   "Versioned SQL migration runner for the DRRMS database",
	Long: `drrms-migrate applies versioned .sql scripts from the migrations
directory to the DRRMS PostgreSQL database exactly once, in ascending version
order, and records every attempt in the _migrations table.

Run without arguments to apply pending migrations and print the status table.`,
	Args:          usageArgs(cobra.NoArgs),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}

		return setupOutput(cmd)
	},
	RunE: runApply,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	flags := rootCmd.PersistentFlags()
	flags.String("config", config.DefaultConfigFile, "path to configuration file")
	flags.String("database-url", "", "PostgreSQL connection string")
	flags.String("migrations-dir", "", "path to migration files")
	flags.Bool("verbose", false, "enable debug logging on stderr")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("lock", false, "hold a PostgreSQL advisory lock for the whole run")
	flags.Duration("lock-timeout", 0, "lock_timeout per script (e.g., 10s); 0 keeps the server default")
	flags.Duration("statement-timeout", 0, "statement_timeout per script (e.g., 5m); 0 keeps the server default")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// usageError marks errors caused by a malformed invocation. Execute prints
// the usage text for them.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps a positional-args validator so its errors print usage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}

		return nil
	}
}

// Execute runs the root command. Called from main.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintln(stderr, "Error:", err)

	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprint(stderr, cmd.UsageString())
	}

	return 1
}

// loadConfig loads configuration with precedence: flag > env > file > DB_*.
func loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	allowMissing := !cmd.Flags().Changed("config")

	cfg, err := config.Load(configPath, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.MergeEnv(cfg)
	mergeFlags(cmd, cfg)
	config.FillDatabaseURL(cfg)

	AppConfig = cfg

	return nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("database-url") {
		cfg.DatabaseURL, _ = flags.GetString("database-url")
	}

	if flags.Changed("migrations-dir") {
		cfg.MigrationsDir, _ = flags.GetString("migrations-dir")
	}

	if flags.Changed("lock-timeout") {
		cfg.LockTimeout, _ = flags.GetDuration("lock-timeout")
	}

	if flags.Changed("statement-timeout") {
		cfg.StatementTimeout, _ = flags.GetDuration("statement-timeout")
	}

	if flags.Changed("lock") {
		cfg.AdvisoryLock, _ = flags.GetBool("lock")
	}

	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
}

// setupOutput applies --no-color and builds the run logger on stderr.
func setupOutput(cmd *cobra.Command) error {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		report.SetColor(false)
	}

	logger, err := logging.New(AppConfig.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}

	runLog = logging.WithRun(logger, cmd.Name())

	return nil
}

// commandContext returns the command's context or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
