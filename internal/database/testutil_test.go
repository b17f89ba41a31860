package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestStore creates an in-memory store with migrations applied
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	return setupTestStoreWithLimit(t, 1000)
}

func setupTestStoreWithLimit(t *testing.T, limit int) *Store {
	t.Helper()
	store, err := Open(context.Background(), MemoryPath, limit)
	require.NoError(t, err, "failed to open test store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// insertTask inserts a row directly, bypassing Execute
func insertTask(t *testing.T, s *Store, id, title string, done, deleted bool) {
	t.Helper()
	_, err := s.DB().Exec(
		"INSERT INTO tasks (_id, title, done, deleted) VALUES (?, ?, ?, ?)",
		id, title, done, deleted,
	)
	require.NoError(t, err, "failed to insert task %s", id)
}
