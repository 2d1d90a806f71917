package executor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aqasim81/drrms-migrate/internal/database"
)

// StatementFunc executes one SQL statement. Implementations return errors
// already passed through database.ClassifyExecError.
type StatementFunc func(ctx context.Context, sql string) error

// runStatements executes stmts in order. A statement that fails because its
// object already exists is logged and skipped; any other failure stops the
// script and is returned.
func runStatements(ctx context.Context, stmts []string, exec StatementFunc, log logrus.FieldLogger) error {
	for i, stmt := range stmts {
		entry := log.WithField("statement", i+1)

		err := exec(ctx, stmt)
		if err == nil {
			entry.Debug("statement executed")

			continue
		}

		if database.IsObjectExists(err) {
			entry.WithError(err).Warn("statement skipped: object already exists")

			continue
		}

		return fmt.Errorf("statement %d: %w", i+1, err)
	}

	return nil
}
