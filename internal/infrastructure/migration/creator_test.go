package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates up and down files", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add cases table")
		require.NoError(t, err)

		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)
		assert.Contains(t, filepath.Base(mf.UpPath), "add_cases_table.up.sql")
		assert.Contains(t, filepath.Base(mf.DownPath), "add_cases_table.down.sql")
	})

	t.Run("creates missing migrations directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		_, err := CreateMigration(dir, "init")
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists only up migrations once", func(t *testing.T) {
		dir := t.TempDir()

		_, err := CreateMigration(dir, "first")
		require.NoError(t, err)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)

		assert.Len(t, migrations, 1)
		assert.Contains(t, migrations[0], "first")
	})

	t.Run("returns empty list for missing directory", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))

		assert.NoError(t, err)
		assert.Empty(t, migrations)
	})
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_cases_table", sanitizeName("Add Cases Table"))
	assert.Equal(t, "fix_index_2", sanitizeName("fix-index-2"))
	assert.Equal(t, "dropsemicolons", sanitizeName("drop;semicolons"))
}
