package executor

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqasim81/drrms-migrate/internal/database"
)

// ExecInTransaction runs fn inside a database transaction.
// On success the transaction is committed; on error it is rolled back.
func ExecInTransaction(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // rollback on committed tx returns ErrTxClosed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// ExecOnConn runs fn on a single pooled connection outside any transaction,
// so session settings made by fn apply to every statement it runs.
func ExecOnConn(ctx context.Context, pool *pgxpool.Pool, fn func(conn *pgxpool.Conn) error) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	return fn(conn)
}

// savepointExec returns a StatementFunc that wraps each statement in a
// savepoint of tx. A failed statement is rolled back to its savepoint, which
// keeps the enclosing transaction usable if the failure is tolerated.
func savepointExec(tx pgx.Tx) StatementFunc {
	return func(ctx context.Context, sql string) error {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("creating savepoint: %w", err)
		}

		if _, err := sp.Exec(ctx, sql); err != nil {
			_ = sp.Rollback(ctx)

			return database.ClassifyExecError(err)
		}

		if err := sp.Commit(ctx); err != nil {
			return fmt.Errorf("releasing savepoint: %w", err)
		}

		return nil
	}
}

// connExec returns a StatementFunc that runs statements directly on conn.
func connExec(conn *pgxpool.Conn) StatementFunc {
	return func(ctx context.Context, sql string) error {
		_, err := conn.Exec(ctx, sql)

		return database.ClassifyExecError(err)
	}
}
