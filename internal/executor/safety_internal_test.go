package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecer records SQL and optionally fails.
type fakeExecer struct {
	sql []string
	err error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)

	return pgconn.CommandTag{}, f.err
}

func TestSetLocalTimeouts(t *testing.T) {
	t.Parallel()

	q := &fakeExecer{}

	err := SetLocalTimeouts(context.Background(), q, Timeouts{Lock: 5 * time.Second, Statement: time.Minute})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"SET LOCAL lock_timeout = '5000ms'",
		"SET LOCAL statement_timeout = '60000ms'",
	}, q.sql)
}

func TestSetSessionTimeouts_onlyLock(t *testing.T) {
	t.Parallel()

	q := &fakeExecer{}

	err := SetSessionTimeouts(context.Background(), q, Timeouts{Lock: 250 * time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, []string{"SET lock_timeout = '250ms'"}, q.sql)
}

func TestSetLocalTimeouts_zeroIsNoop(t *testing.T) {
	t.Parallel()

	q := &fakeExecer{}

	require.NoError(t, SetLocalTimeouts(context.Background(), q, Timeouts{}))
	assert.Empty(t, q.sql)
	assert.True(t, Timeouts{}.zero())
}

func TestSetLocalTimeouts_execError(t *testing.T) {
	t.Parallel()

	q := &fakeExecer{err: errors.New("conn closed")}

	err := SetLocalTimeouts(context.Background(), q, Timeouts{Statement: time.Second})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting statement_timeout")
}

func TestResetTimeouts(t *testing.T) {
	t.Parallel()

	q := &fakeExecer{}

	require.NoError(t, ResetTimeouts(context.Background(), q))
	assert.Equal(t, []string{"RESET lock_timeout", "RESET statement_timeout"}, q.sql)
}
