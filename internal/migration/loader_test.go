package migration_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/drrms-migrate/internal/migration"
)

const dir = "migrations"

func TestLoadFromDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		files       map[string]string
		noDir       bool
		wantErr     error
		errContains string
		check       func(t *testing.T, ms []migration.Migration)
	}{
		{
			name:        "missing directory returns error",
			noDir:       true,
			errContains: "reading migrations directory",
		},
		{
			name: "empty directory returns empty slice",
			check: func(t *testing.T, ms []migration.Migration) {
				t.Helper()
				assert.Empty(t, ms)
			},
		},
		{
			name: "non-matching files are skipped",
			files: map[string]string{
				"README.md":        "# readme",
				"init.sql":         "SELECT 1;",
				"001_notes.txt":    "notes",
				"002.sql":          "SELECT 2;",
				"003_seed.sql.bak": "SELECT 3;",
			},
			check: func(t *testing.T, ms []migration.Migration) {
				t.Helper()
				assert.Empty(t, ms)
			},
		},
		{
			name: "version and name come from the filename",
			files: map[string]string{
				"001_init.sql": "CREATE TABLE Foo (id INT);",
			},
			check: func(t *testing.T, ms []migration.Migration) {
				t.Helper()
				require.Len(t, ms, 1)
				assert.Equal(t, "001", ms[0].Version)
				assert.Equal(t, int64(1), ms[0].Number)
				assert.Equal(t, "001_init", ms[0].Name)
				assert.Equal(t, filepath.Join(dir, "001_init.sql"), ms[0].FilePath)
			},
		},
		{
			name: "any non-digit separator is accepted",
			files: map[string]string{
				"12-add_indexes.sql": "SELECT 1;",
			},
			check: func(t *testing.T, ms []migration.Migration) {
				t.Helper()
				require.Len(t, ms, 1)
				assert.Equal(t, "12", ms[0].Version)
				assert.Equal(t, "12-add_indexes", ms[0].Name)
			},
		},
		{
			name: "content is trimmed before checksum",
			files: map[string]string{
				"001_test.sql": "  SELECT 1;  \n",
			},
			check: func(t *testing.T, ms []migration.Migration) {
				t.Helper()
				require.Len(t, ms, 1)
				assert.Equal(t, "SELECT 1;", ms[0].SQL)
				assert.Equal(t, migration.ComputeChecksum("SELECT 1;"), ms[0].Checksum)
			},
		},
		{
			name: "same numeric version twice is rejected",
			files: map[string]string{
				"1_a.sql":   "SELECT 1;",
				"001_b.sql": "SELECT 2;",
			},
			wantErr: migration.ErrDuplicateVersion,
		},
		{
			name: "overflowing version is rejected",
			files: map[string]string{
				"99999999999999999999_huge.sql": "SELECT 1;",
			},
			wantErr: migration.ErrInvalidVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fsys := afero.NewMemMapFs()
			if !tt.noDir {
				require.NoError(t, fsys.MkdirAll(dir, 0o755))
			}

			for name, content := range tt.files {
				require.NoError(t, afero.WriteFile(fsys, filepath.Join(dir, name), []byte(content), 0o644))
			}

			ms, err := migration.LoadFromDir(fsys, dir)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, ms)
			}
		})
	}
}

func TestLoadFromDir_subdirectoriesIgnored(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(filepath.Join(dir, "004_archive.sql"), 0o755))
	require.NoError(t, afero.WriteFile(fsys, filepath.Join(dir, "001_init.sql"), []byte("SELECT 1;"), 0o644))

	ms, err := migration.LoadFromDir(fsys, dir)

	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "001", ms[0].Version)
}

func TestLoadFromDir_shippedScripts(t *testing.T) {
	t.Parallel()

	fsys := afero.NewOsFs()

	ms, err := migration.LoadFromDir(fsys, filepath.Join("..", "..", "migrations"))

	require.NoError(t, err)
	require.NotEmpty(t, ms)
	assert.False(t, migration.InconsistentWidths(ms))

	sorted := migration.Sort(ms)
	assert.Equal(t, "001", sorted[0].Version)
}
