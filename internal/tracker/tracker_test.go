package tracker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aqasim81/drrms-migrate/internal/tracker"
)

func TestNew_returnsNonNil(t *testing.T) {
	t.Parallel()

	// nil querier is accepted at construction time; errors surface on use.
	tr := tracker.New(nil)
	assert.NotNil(t, tr)
}

func TestSortRecords_numericOrder(t *testing.T) {
	t.Parallel()

	now := time.Now()
	records := []tracker.Record{
		{Version: "10", Name: "10_indexes", Status: tracker.StatusApplied, AppliedAt: &now},
		{Version: "2", Name: "2_seed", Status: tracker.StatusApplied, AppliedAt: &now},
		{Version: "1", Name: "1_init", Status: tracker.StatusApplied, AppliedAt: &now},
		{Version: "manual", Name: "manual_fix", Status: tracker.StatusRolledBack},
	}

	tracker.SortRecords(records)

	got := make([]string, len(records))
	for i, r := range records {
		got[i] = r.Version
	}

	assert.Equal(t, []string{"1", "2", "10", "manual"}, got)
}
