package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aqasim81/drrms-migrate/internal/migration"
)

// Record is one row of the _migrations table.
type Record struct {
	Version         string
	Name            string
	Status          string
	AppliedAt       *time.Time
	AppliedBy       *string
	Checksum        *string
	ExecutionTimeMs *int
}

// RecordParams contains the fields written when a migration is applied.
type RecordParams struct {
	Version         string
	Name            string
	Checksum        string
	ExecutionTimeMs int
}

// Querier is the subset of pgxpool.Pool and pgx.Tx used by the tracker.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tracker manages the _migrations table.
type Tracker struct {
	db Querier
}

// New creates a Tracker backed by the given pool or transaction.
func New(db Querier) *Tracker {
	return &Tracker{db: db}
}

// EnsureTable creates the _migrations table if it does not exist.
func (t *Tracker) EnsureTable(ctx context.Context) error {
	_, err := t.db.Exec(ctx, createSchemaSQL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTableCreation, err)
	}

	return nil
}

// AppliedVersions returns the set of versions whose status is 'applied'.
func (t *Tracker) AppliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := t.db.Query(ctx, `SELECT version FROM _migrations WHERE status = 'applied'`)
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}

	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning applied migrations: %w", err)
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}

	return applied, nil
}

// List returns every tracking row ordered by numeric version.
func (t *Tracker) List(ctx context.Context) ([]Record, error) {
	rows, err := t.db.Query(ctx,
		`SELECT version, name, status, applied_at, applied_by, checksum, execution_time_ms
		 FROM _migrations
		 ORDER BY version`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying migration status: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		if scanErr := row.Scan(
			&r.Version, &r.Name, &r.Status, &r.AppliedAt, &r.AppliedBy, &r.Checksum, &r.ExecutionTimeMs,
		); scanErr != nil {
			return Record{}, fmt.Errorf("scanning migration row: %w", scanErr)
		}

		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning migration status: %w", err)
	}

	SortRecords(records)

	return records, nil
}

// SortRecords orders records by numeric version so that unpadded versions
// recorded by older runs still list as 1, 2, 10.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Version, records[j].Version

		return migration.Less(migration.VersionNumber(a), a, migration.VersionNumber(b), b)
	})
}

// RecordApplied upserts a migration row with status 'applied'. The executing
// database role is stored as applied_by.
func (t *Tracker) RecordApplied(ctx context.Context, p RecordParams) error {
	_, err := t.db.Exec(ctx,
		`INSERT INTO _migrations (version, name, checksum, execution_time_ms, status, applied_by)
		 VALUES ($1, $2, $3, $4, 'applied', current_user)
		 ON CONFLICT (version) DO UPDATE SET
		     name = EXCLUDED.name,
		     checksum = EXCLUDED.checksum,
		     execution_time_ms = EXCLUDED.execution_time_ms,
		     applied_by = EXCLUDED.applied_by,
		     applied_at = NOW(),
		     status = 'applied'`,
		p.Version, p.Name, p.Checksum, p.ExecutionTimeMs,
	)
	if err != nil {
		return fmt.Errorf("recording migration %s as applied: %w", p.Version, err)
	}

	return nil
}

// RecordFailed upserts a migration row with status 'failed'. Checksum and
// timing of an earlier attempt are left as they were.
func (t *Tracker) RecordFailed(ctx context.Context, version, name string) error {
	_, err := t.db.Exec(ctx,
		`INSERT INTO _migrations (version, name, status, applied_by)
		 VALUES ($1, $2, 'failed', current_user)
		 ON CONFLICT (version) DO UPDATE SET
		     name = EXCLUDED.name,
		     applied_by = EXCLUDED.applied_by,
		     applied_at = NOW(),
		     status = 'failed'`,
		version, name,
	)
	if err != nil {
		return fmt.Errorf("recording migration %s as failed: %w", version, err)
	}

	return nil
}

// RecordRolledBack updates a migration's status to 'rolled_back'. It is only
// reached through an explicit operator command.
func (t *Tracker) RecordRolledBack(ctx context.Context, version string) error {
	tag, err := t.db.Exec(ctx,
		`UPDATE _migrations SET status = 'rolled_back', applied_at = NOW() WHERE version = $1`,
		version,
	)
	if err != nil {
		return fmt.Errorf("recording migration %s as rolled back: %w", version, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("migration %s: %w", version, ErrMigrationNotFound)
	}

	return nil
}

// GetChecksum returns the recorded checksum for a migration version. A row
// without a checksum (a failed attempt) yields an empty string.
func (t *Tracker) GetChecksum(ctx context.Context, version string) (string, error) {
	var checksum *string

	err := t.db.QueryRow(ctx,
		`SELECT checksum FROM _migrations WHERE version = $1`,
		version,
	).Scan(&checksum)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("migration %s: %w", version, ErrMigrationNotFound)
		}

		return "", fmt.Errorf("getting checksum for migration %s: %w", version, err)
	}

	if checksum == nil {
		return "", nil
	}

	return *checksum, nil
}
