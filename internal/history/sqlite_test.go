package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndRecent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Record("/data/set1", "schema.yaml", true, 0, "ok")
	require.NoError(t, err)
	_, err = store.Record("/data/set1", "schema.yaml", false, 3, "3 violations")
	require.NoError(t, err)

	runs, err := store.Recent("/data/set1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.False(t, runs[0].Passed)
	assert.Equal(t, 3, runs[0].ViolationCount)
	assert.True(t, runs[1].Passed)
}

func TestStore_RecentFiltersByTarget(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Record("/data/a", "s.yaml", true, 0, "ok")
	require.NoError(t, err)
	_, err = store.Record("/data/b", "s.yaml", true, 0, "ok")
	require.NoError(t, err)

	runs, err := store.Recent("/data/a", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "/data/a", runs[0].Target)
}
