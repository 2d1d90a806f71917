package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/aqasim81/drrms-migrate/internal/database"
	"github.com/aqasim81/drrms-migrate/internal/logging"
	"github.com/aqasim81/drrms-migrate/internal/migration"
	"github.com/aqasim81/drrms-migrate/internal/parser"
	"github.com/aqasim81/drrms-migrate/internal/tracker"
)

// Progress status constants reported via ProgressEvent.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// ProgressEvent is emitted by the executor for each migration processed.
type ProgressEvent struct {
	Migration *migration.Migration
	Status    string
	Duration  time.Duration
	Error     error
}

// Summary counts the outcome of one Apply call.
type Summary struct {
	Discovered    int
	Pending       int
	Applied       int
	Failed        int
	FailedVersion string
}

// MigrationTracker abstracts _migrations operations for testability.
type MigrationTracker interface {
	EnsureTable(ctx context.Context) error
	AppliedVersions(ctx context.Context) (map[string]bool, error)
	RecordApplied(ctx context.Context, p tracker.RecordParams) error
	RecordFailed(ctx context.Context, version, name string) error
}

// lockReleaser is returned by lockFn and must be released when done.
type lockReleaser interface {
	Release(ctx context.Context) error
}

// lockFunc acquires an advisory lock and returns a releaser.
type lockFunc func(ctx context.Context) (lockReleaser, error)

// scriptExecFunc executes the split statements of a single migration.
type scriptExecFunc func(ctx context.Context, m *migration.Migration, stmts []string) error

// Executor applies pending migrations one at a time, in the order given,
// and records every attempt in the tracking table.
type Executor struct {
	pool        *pgxpool.Pool
	tracker     MigrationTracker
	timeouts    Timeouts
	useLock     bool
	onProgress  func(ProgressEvent)
	onPlan      func(pending []migration.Migration)
	log         logrus.FieldLogger
	acquireLock lockFunc
	execScript  scriptExecFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithLockTimeout sets the per-script lock_timeout.
func WithLockTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeouts.Lock = d }
}

// WithStatementTimeout sets the per-script statement_timeout.
func WithStatementTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeouts.Statement = d }
}

// WithAdvisoryLock makes Apply hold a session advisory lock for its whole
// run, so a second concurrent runner fails fast instead of double-applying.
func WithAdvisoryLock(b bool) Option {
	return func(e *Executor) { e.useLock = b }
}

// WithProgressCallback sets a function called for each migration processed.
func WithProgressCallback(fn func(ProgressEvent)) Option {
	return func(e *Executor) { e.onProgress = fn }
}

// WithPlanCallback sets a function called once with the pending set,
// before the first migration is attempted.
func WithPlanCallback(fn func(pending []migration.Migration)) Option {
	return func(e *Executor) { e.onPlan = fn }
}

// WithLogger sets the logger for statement-level diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Executor) { e.log = l }
}

// New creates an Executor with the given pool, tracker, and options.
func New(pool *pgxpool.Pool, t MigrationTracker, opts ...Option) *Executor {
	e := &Executor{
		pool:    pool,
		tracker: t,
	}

	for _, opt := range opts {
		opt(e)
	}

	// Set defaults for injectable functions after options are applied,
	// so tests can override them via options.
	if e.log == nil {
		e.log = logging.Discard()
	}

	if e.acquireLock == nil {
		e.acquireLock = func(ctx context.Context) (lockReleaser, error) {
			return database.TryAcquireLock(ctx, e.pool)
		}
	}

	if e.execScript == nil {
		e.execScript = e.executeScript
	}

	return e
}

// Pending bootstraps the tracking table and returns the migrations whose
// version is not yet recorded as applied, keeping the order of migrations.
func (e *Executor) Pending(ctx context.Context, migrations []migration.Migration) ([]migration.Migration, error) {
	if err := e.tracker.EnsureTable(ctx); err != nil {
		return nil, err
	}

	applied, err := e.tracker.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var pending []migration.Migration

	for i := range migrations {
		if applied[migrations[i].Version] {
			e.fireProgress(ProgressEvent{Migration: &migrations[i], Status: StatusSkipped})

			continue
		}

		pending = append(pending, migrations[i])
	}

	return pending, nil
}

// Apply executes every pending migration in order and stops at the first
// script that fails. The failed script is recorded as 'failed' and the
// returned error wraps ErrExecutionFailed; later scripts are not attempted.
// Tracker errors are returned as they occur.
func (e *Executor) Apply(ctx context.Context, migrations []migration.Migration) (Summary, error) {
	summary := Summary{Discovered: len(migrations)}

	if e.useLock {
		lock, err := e.acquireLock(ctx)
		if err != nil {
			return summary, fmt.Errorf("acquiring migration lock: %w", err)
		}
		defer lock.Release(ctx) //nolint:errcheck // best-effort release on return
	}

	pending, err := e.Pending(ctx, migrations)
	if err != nil {
		return summary, err
	}

	summary.Pending = len(pending)

	if e.onPlan != nil {
		e.onPlan(pending)
	}

	for i := range pending {
		if err := e.applyOne(ctx, &pending[i]); err != nil {
			if errors.Is(err, ErrExecutionFailed) {
				summary.Failed++
				summary.FailedVersion = pending[i].Version
			}

			return summary, err
		}

		summary.Applied++
	}

	return summary, nil
}

// applyOne executes a single migration, records the outcome, and fires progress.
func (e *Executor) applyOne(ctx context.Context, m *migration.Migration) error {
	log := e.log.WithFields(logrus.Fields{"version": m.Version, "name": m.Name})

	e.fireProgress(ProgressEvent{Migration: m, Status: StatusStarting})

	start := time.Now()
	execErr := e.runScript(ctx, m)
	duration := time.Since(start)

	if execErr != nil {
		log.WithError(execErr).Error("migration failed")

		e.fireProgress(ProgressEvent{
			Migration: m,
			Status:    StatusFailed,
			Duration:  duration,
			Error:     execErr,
		})

		if err := e.tracker.RecordFailed(ctx, m.Version, m.Name); err != nil {
			return fmt.Errorf("recording failure of migration %s: %w", m.Version, err)
		}

		return fmt.Errorf("%w: %s: %w", ErrExecutionFailed, m.Name, execErr)
	}

	if err := e.tracker.RecordApplied(ctx, tracker.RecordParams{
		Version:         m.Version,
		Name:            m.Name,
		Checksum:        m.Checksum,
		ExecutionTimeMs: int(duration.Milliseconds()),
	}); err != nil {
		return fmt.Errorf("recording migration %s: %w", m.Version, err)
	}

	log.WithField("duration_ms", duration.Milliseconds()).Info("migration applied")

	e.fireProgress(ProgressEvent{
		Migration: m,
		Status:    StatusCompleted,
		Duration:  duration,
	})

	return nil
}

// runScript splits the script and hands the statements to execScript.
func (e *Executor) runScript(ctx context.Context, m *migration.Migration) error {
	stmts, err := parser.Split(m.SQL)
	if err != nil {
		return err
	}

	return e.execScript(ctx, m, stmts)
}

// executeScript runs the statements of one migration. Most scripts run in
// a single transaction with a savepoint per statement; scripts containing
// CREATE INDEX CONCURRENTLY run on one connection without a transaction.
func (e *Executor) executeScript(ctx context.Context, m *migration.Migration, stmts []string) error {
	log := e.log.WithField("version", m.Version)

	if NeedsNoTransaction(stmts) {
		log.Debug("running outside a transaction")

		return ExecOnConn(ctx, e.pool, func(conn *pgxpool.Conn) error {
			if !e.timeouts.zero() {
				if err := SetSessionTimeouts(ctx, conn, e.timeouts); err != nil {
					return err
				}
				defer ResetTimeouts(ctx, conn) //nolint:errcheck // connection is released either way
			}

			return runStatements(ctx, stmts, connExec(conn), log)
		})
	}

	return ExecInTransaction(ctx, e.pool, func(tx pgx.Tx) error {
		if err := SetLocalTimeouts(ctx, tx, e.timeouts); err != nil {
			return err
		}

		return runStatements(ctx, stmts, savepointExec(tx), log)
	})
}

func (e *Executor) fireProgress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}
