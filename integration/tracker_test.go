//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/drrms-migrate/internal/tracker"
)

func TestTracker_fullLifecycle(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	tr := tracker.New(pool)

	// EnsureTable creates the table.
	require.NoError(t, tr.EnsureTable(ctx))

	// EnsureTable is idempotent.
	require.NoError(t, tr.EnsureTable(ctx))

	applied, err := tr.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	require.NoError(t, tr.RecordApplied(ctx, tracker.RecordParams{
		Version:         "001",
		Name:            "001_init",
		Checksum:        "abc123",
		ExecutionTimeMs: 42,
	}))

	applied, err = tr.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"001": true}, applied)

	records, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "001", r.Version)
	assert.Equal(t, "001_init", r.Name)
	assert.Equal(t, tracker.StatusApplied, r.Status)
	require.NotNil(t, r.AppliedAt)
	require.NotNil(t, r.AppliedBy)
	assert.Equal(t, testUser, *r.AppliedBy)
	require.NotNil(t, r.Checksum)
	assert.Equal(t, "abc123", *r.Checksum)
	require.NotNil(t, r.ExecutionTimeMs)
	assert.Equal(t, 42, *r.ExecutionTimeMs)

	checksum, err := tr.GetChecksum(ctx, "001")
	require.NoError(t, err)
	assert.Equal(t, "abc123", checksum)
}

func TestTracker_failedThenApplied_keepsOneRow(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	tr := tracker.New(pool)
	require.NoError(t, tr.EnsureTable(ctx))

	require.NoError(t, tr.RecordFailed(ctx, "002", "002_seed"))

	records, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, tracker.StatusFailed, records[0].Status)
	assert.Nil(t, records[0].Checksum)
	assert.Nil(t, records[0].ExecutionTimeMs)

	checksum, err := tr.GetChecksum(ctx, "002")
	require.NoError(t, err)
	assert.Empty(t, checksum)

	applied, err := tr.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.False(t, applied["002"])

	require.NoError(t, tr.RecordApplied(ctx, tracker.RecordParams{
		Version: "002", Name: "002_seed", Checksum: "def456", ExecutionTimeMs: 7,
	}))

	records, err = tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, tracker.StatusApplied, records[0].Status)
}

func TestTracker_recordRolledBack(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	tr := tracker.New(pool)
	require.NoError(t, tr.EnsureTable(ctx))

	require.NoError(t, tr.RecordApplied(ctx, tracker.RecordParams{Version: "001", Name: "001_init", Checksum: "a"}))
	require.NoError(t, tr.RecordRolledBack(ctx, "001"))

	applied, err := tr.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	records, err := tr.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, tracker.StatusRolledBack, records[0].Status)

	err = tr.RecordRolledBack(ctx, "999")
	require.ErrorIs(t, err, tracker.ErrMigrationNotFound)

	_, err = tr.GetChecksum(ctx, "999")
	require.ErrorIs(t, err, tracker.ErrMigrationNotFound)
}

func TestTracker_listOrdersByIntegerVersion(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	tr := tracker.New(pool)
	require.NoError(t, tr.EnsureTable(ctx))

	for _, v := range []string{"10", "9", "100", "1"} {
		require.NoError(t, tr.RecordApplied(ctx, tracker.RecordParams{Version: v, Name: v + "_m", Checksum: v}))
	}

	records, err := tr.List(ctx)
	require.NoError(t, err)

	got := make([]string, len(records))
	for i, r := range records {
		got[i] = r.Version
	}

	assert.Equal(t, []string{"1", "9", "10", "100"}, got)
}

func TestTracker_statusCheckConstraint(t *testing.T) {
	t.Parallel()

	pool := SetupPostgres(t)
	ctx := context.Background()
	require.NoError(t, tracker.New(pool).EnsureTable(ctx))

	_, err := pool.Exec(ctx, `INSERT INTO _migrations (version, name, status) VALUES ('001', 'x', 'bogus')`)
	require.Error(t, err)
}
