package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kasuboski/rollwatch/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initSqlite(t *testing.T, ctx context.Context) storage.Storage {
	t.Helper()

	store, err := New(ctx, ":memory:")
	require.NoError(t, err)

	err = store.RunMigrations(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestInit(t *testing.T) {
	store := initSqlite(t, context.Background())
	assert.NotNil(t, store)
}

func TestDataSourceName(t *testing.T) {
	assert.Equal(t, ":memory:", dataSourceName(":memory:"))
	assert.Equal(t, "file:test.db?mode=ro", dataSourceName("file:test.db?mode=ro"))
	assert.Equal(t, "file:/data/rollwatch.db?_txlock=immediate&_busy_timeout=5000", dataSourceName("/data/rollwatch.db"))
}

func TestMigration_FreshDatabase(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := New(ctx, tmpFile)
	require.NoError(t, err)
	defer store.Close()

	err = store.RunMigrations(ctx)
	require.NoError(t, err)

	shows, err := store.ListRollingShows(ctx)
	require.NoError(t, err)
	assert.Empty(t, shows)

	sqliteStore := store.(*SQLite)
	version, dirty, err := sqliteStore.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestMigration_Idempotent(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := New(ctx, tmpFile)
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations(ctx))
	require.NoError(t, store.Close())

	store, err = New(ctx, tmpFile)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.RunMigrations(ctx))

	version, dirty, err := store.(*SQLite).GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}
