package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// filenamePattern matches {digits}{non-digit separator}{description}.sql,
// e.g. 001_init_schema.sql or 12-add_indexes.sql.
var filenamePattern = regexp.MustCompile( //nolint:gochecknoglobals // compiled once, used by LoadFromDir
	`^(\d+)[^\d.][^/]*\.sql$`,
)

// LoadFromDir scans dir on fsys for migration scripts and returns them unsorted.
// Files that do not match the naming pattern are skipped.
func LoadFromDir(fsys afero.Fs, dir string) ([]Migration, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	var migrations []Migration

	seen := make(map[int64]string)

	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}

		m, ok, err := readMigration(fsys, dir, entry)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		if prev, dup := seen[m.Number]; dup {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateVersion, prev, entry.Name())
		}

		seen[m.Number] = entry.Name()
		migrations = append(migrations, m)
	}

	return migrations, nil
}

// readMigration builds a Migration from a directory entry. ok is false when
// the filename does not follow the migration naming pattern.
func readMigration(fsys afero.Fs, dir string, entry os.FileInfo) (Migration, bool, error) {
	matches := filenamePattern.FindStringSubmatch(entry.Name())
	if matches == nil {
		return Migration{}, false, nil
	}

	version := matches[1]

	number, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return Migration{}, false, fmt.Errorf("%w: %s: %w", ErrInvalidVersion, entry.Name(), err)
	}

	path := filepath.Join(dir, entry.Name())

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Migration{}, false, fmt.Errorf("reading migration file %s: %w", path, err)
	}

	sql := strings.TrimSpace(string(data))

	return Migration{
		Version:  version,
		Number:   number,
		Name:     strings.TrimSuffix(entry.Name(), ".sql"),
		SQL:      sql,
		Checksum: ComputeChecksum(sql),
		FilePath: path,
	}, true, nil
}

// InconsistentWidths reports whether the version prefixes differ in width,
// e.g. "1" next to "010". Ordering is numeric either way, but the
// fixed-width convention keeps directory listings readable.
func InconsistentWidths(migrations []Migration) bool {
	if len(migrations) == 0 {
		return false
	}

	width := len(migrations[0].Version)
	for _, m := range migrations[1:] {
		if len(m.Version) != width {
			return true
		}
	}

	return false
}
