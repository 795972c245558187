package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "data", "billing.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadMigrations(t *testing.T) {
	t.Run("orders by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"010_later.sql":  {Data: []byte("SELECT 1;")},
			"002_second.sql": {Data: []byte("SELECT 2;")},
			"README.md":      {Data: []byte("ignored")},
		}
		migrations, err := LoadMigrations(fsys)
		require.NoError(t, err)
		require.Len(t, migrations, 2)
		assert.Equal(t, 2, migrations[0].Version)
		assert.Equal(t, "second", migrations[0].Name)
		assert.Equal(t, 10, migrations[1].Version)
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		fsys := fstest.MapFS{
			"001_a.sql": {Data: []byte("SELECT 1;")},
			"001_b.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := LoadMigrations(fsys)
		assert.Error(t, err)
	})

	t.Run("rejects unnumbered files", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{"slots.sql": {Data: []byte("SELECT 1;")}})
		assert.Error(t, err)
	})

	t.Run("bundled schema", func(t *testing.T) {
		migrations, err := LoadMigrations(Migrations())
		require.NoError(t, err)
		require.NotEmpty(t, migrations)
		assert.Equal(t, "slots", migrations[0].Name)
	})
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	require.NoError(t, m.RunMigrations(Migrations()))
	require.NoError(t, m.RunMigrations(Migrations()))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	_, err := db.Exec("INSERT INTO slots (key, value) VALUES ('invoice_number', '1')")
	assert.NoError(t, err)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.Error(t, err)
}
