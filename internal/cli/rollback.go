package cli

import (
	"github.com/spf13/cobra"

	"github.com/aqasim81/drrms-migrate/internal/report"
)

var rollbackCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "rollback <version>",
	Short: "Print manual rollback steps for a migration",
	Long: `Print the manual remediation steps for undoing a migration. Nothing is
executed against the database: run the inverse SQL by hand, then mark the
version as rolled back.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runRollback,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, args []string) error {
	report.New(cmd.OutOrStdout()).RollbackInstructions(args[0])

	return nil
}
