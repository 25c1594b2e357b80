package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_views.sql", "001_indexes.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := SQLFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "001_indexes.sql"),
		filepath.Join(dir, "002_views.sql"),
	}, files)

	missing, err := SQLFiles(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSplitStatements(t *testing.T) {
	sql := `-- categories
CREATE INDEX IF NOT EXISTS idx_a ON t (a);

  -- submissions
CREATE INDEX IF NOT EXISTS idx_b
    ON t (b);
;
`
	assert.Equal(t, []string{
		"CREATE INDEX IF NOT EXISTS idx_a ON t (a)",
		"CREATE INDEX IF NOT EXISTS idx_b\n    ON t (b)",
	}, SplitStatements(sql))
}

func TestRepositoryMigrationsParse(t *testing.T) {
	files, err := SQLFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		content, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.NotEmpty(t, SplitStatements(string(content)), f)
	}
}
