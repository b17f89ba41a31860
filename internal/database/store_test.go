package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesFileAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")

	db, err := InitDB(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='tasks'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "tasks", name)
}

func TestInitDB_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")

	db, err := InitDB(context.Background(), path)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO tasks (_id, title) VALUES ('keep-me', 'persisted')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDB(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var title string
	require.NoError(t, db.QueryRow("SELECT title FROM tasks WHERE _id = 'keep-me'").Scan(&title))
	assert.Equal(t, "persisted", title)
}

func TestExecute_SelectReturnsDocuments(t *testing.T) {
	s := setupTestStore(t)
	insertTask(t, s, "b", "second", true, false)
	insertTask(t, s, "a", "first", false, true)

	result, err := s.Execute(context.Background(), "SELECT * FROM tasks ORDER BY _id", nil)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Empty(t, result.MutatedDocumentIDs)

	first := result.Items[0]
	assert.Equal(t, "a", first["_id"])
	assert.Equal(t, "first", first["title"])
	assert.Equal(t, false, first["done"])
	assert.Equal(t, true, first["deleted"])

	assert.Equal(t, true, result.Items[1]["done"])
}

func TestExecute_NamedParameters(t *testing.T) {
	s := setupTestStore(t)
	insertTask(t, s, "abc-1", "one", false, false)
	insertTask(t, s, "xyz-2", "two", false, false)

	result, err := s.Execute(context.Background(),
		"SELECT * FROM tasks WHERE _id = :id", map[string]any{"id": "xyz-2"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "two", result.Items[0]["title"])
}

func TestExecute_ReturningReportsMutatedIDs(t *testing.T) {
	s := setupTestStore(t)

	result, err := s.Execute(context.Background(),
		"INSERT INTO tasks (_id, title) VALUES (:id, :title) RETURNING _id",
		map[string]any{"id": "new-1", "title": "created"})
	require.NoError(t, err)
	assert.Equal(t, []string{"new-1"}, result.MutatedDocumentIDs)

	result, err = s.Execute(context.Background(),
		"UPDATE tasks SET done = :done WHERE _id = :id RETURNING _id",
		map[string]any{"id": "missing", "done": true})
	require.NoError(t, err)
	assert.Empty(t, result.MutatedDocumentIDs)
}

func TestExecute_ResultLimit(t *testing.T) {
	s := setupTestStoreWithLimit(t, 3)
	for i := 0; i < 5; i++ {
		insertTask(t, s, fmt.Sprintf("id-%d", i), "t", false, false)
	}

	result, err := s.Execute(context.Background(), "SELECT * FROM tasks ORDER BY _id", nil)
	require.NoError(t, err)
	assert.Len(t, result.Items, 3)
	assert.Equal(t, "id-0", result.Items[0]["_id"])
}

func TestExecute_InvalidStatement(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Execute(context.Background(), "SELECT * FROM no_such_table", nil)
	assert.Error(t, err)
}

func TestExecute_ClosedStore(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Execute(context.Background(), "SELECT * FROM tasks", nil)
	assert.ErrorIs(t, err, ErrStoreClosed)

	// Second close is a no-op
	assert.NoError(t, s.Close())
}

func TestInsertInitialDocuments_IgnoresExisting(t *testing.T) {
	s := setupTestStore(t)
	insertTask(t, s, "seed-1", "edited locally", true, false)

	docs := []Document{
		{"_id": "seed-1", "title": "original", "done": false, "deleted": false},
		{"_id": "seed-2", "title": "fresh", "done": false, "deleted": false},
	}

	inserted, err := s.InsertInitialDocuments(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed-2"}, inserted)

	result, err := s.Execute(context.Background(), "SELECT * FROM tasks WHERE _id = 'seed-1'", nil)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "edited locally", result.Items[0]["title"])

	inserted, err = s.InsertInitialDocuments(context.Background(), docs)
	require.NoError(t, err)
	assert.Empty(t, inserted)
}

func TestClassifyStatement(t *testing.T) {
	tests := []struct {
		statement string
		want      statementKind
	}{
		{"SELECT * FROM tasks", kindSelect},
		{"  select 1", kindSelect},
		{"WITH x AS (SELECT 1) SELECT * FROM x", kindSelect},
		{"UPDATE tasks SET done = 1 RETURNING _id", kindReturning},
		{"delete from tasks where deleted returning _id", kindReturning},
		{"DELETE FROM tasks", kindExec},
		{"", kindExec},
	}

	for _, tt := range tests {
		t.Run(tt.statement, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyStatement(tt.statement))
		})
	}
}

func TestNamedArgs_SortedAndEmpty(t *testing.T) {
	assert.Nil(t, namedArgs(nil))

	args := namedArgs(map[string]any{"b": 2, "a": 1})
	require.Len(t, args, 2)
	assert.Contains(t, fmt.Sprint(args[0]), "a")
}
