package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer is satisfied by pgx.Tx and *pgxpool.Conn.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Timeouts bounds how long a script may wait on locks and on any single
// statement. Zero leaves the server default in place.
type Timeouts struct {
	Lock      time.Duration
	Statement time.Duration
}

func (t Timeouts) zero() bool {
	return t.Lock <= 0 && t.Statement <= 0
}

// SetLocalTimeouts applies t for the remainder of the current transaction.
func SetLocalTimeouts(ctx context.Context, q execer, t Timeouts) error {
	return setTimeouts(ctx, q, t, "SET LOCAL")
}

// SetSessionTimeouts applies t to the connection until ResetTimeouts.
func SetSessionTimeouts(ctx context.Context, q execer, t Timeouts) error {
	return setTimeouts(ctx, q, t, "SET")
}

func setTimeouts(ctx context.Context, q execer, t Timeouts, verb string) error {
	if t.Lock > 0 {
		sql := fmt.Sprintf("%s lock_timeout = '%dms'", verb, t.Lock.Milliseconds())
		if _, err := q.Exec(ctx, sql); err != nil {
			return fmt.Errorf("setting lock_timeout: %w", err)
		}
	}

	if t.Statement > 0 {
		sql := fmt.Sprintf("%s statement_timeout = '%dms'", verb, t.Statement.Milliseconds())
		if _, err := q.Exec(ctx, sql); err != nil {
			return fmt.Errorf("setting statement_timeout: %w", err)
		}
	}

	return nil
}

// ResetTimeouts restores lock_timeout and statement_timeout to the server defaults.
func ResetTimeouts(ctx context.Context, q execer) error {
	if _, err := q.Exec(ctx, "RESET lock_timeout"); err != nil {
		return fmt.Errorf("resetting lock_timeout: %w", err)
	}

	if _, err := q.Exec(ctx, "RESET statement_timeout"); err != nil {
		return fmt.Errorf("resetting statement_timeout: %w", err)
	}

	return nil
}
