package migration

import (
	"math"
	"sort"
	"strconv"
)

// Sort returns a new slice of migrations ordered by numeric version, so that
// 2 precedes 10 regardless of zero padding. Equal numbers fall back to the
// version string.
func Sort(migrations []Migration) []Migration {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)

	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i].Number, sorted[i].Version, sorted[j].Number, sorted[j].Version)
	})

	return sorted
}

// Less orders two versions by number, then by their string form.
func Less(an int64, av string, bn int64, bv string) bool {
	if an != bn {
		return an < bn
	}

	return av < bv
}

// VersionNumber parses a version string recorded in the tracking table.
// Unparseable values sort after every numeric version.
func VersionNumber(version string) int64 {
	n, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return math.MaxInt64
	}

	return n
}
