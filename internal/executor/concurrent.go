package executor

import (
	"github.com/aqasim81/drrms-migrate/internal/parser"
)

// NeedsNoTransaction reports whether any statement is a CREATE INDEX
// CONCURRENTLY, which PostgreSQL refuses inside a transaction block.
// Statements the parser rejects are left for the database to report.
func NeedsNoTransaction(stmts []string) bool {
	for _, stmt := range stmts {
		concurrent, err := parser.ContainsConcurrentIndex(stmt)
		if err != nil {
			continue
		}

		if concurrent {
			return true
		}
	}

	return false
}
