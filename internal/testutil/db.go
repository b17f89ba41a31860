package testutil

import (
	"context"
	"testing"

	"github.com/thenoetrevino/tasks/internal/database"
	"github.com/thenoetrevino/tasks/internal/models"
	taskservice "github.com/thenoetrevino/tasks/internal/services/task"
)

// SetupTestStore creates an in-memory store with the full schema.
// The store is closed by test cleanup.
func SetupTestStore(t *testing.T) *database.Store {
	t.Helper()

	store, err := database.Open(context.Background(), database.MemoryPath, models.DefaultMaxResults)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Warning: store close error during cleanup: %v", err)
		}
	})

	return store
}

// SetupTestService creates a task service over a fresh in-memory store.
// Event publishing is disabled; it is tested in the events and app packages.
func SetupTestService(t *testing.T) (taskservice.Service, *database.Store) {
	t.Helper()
	store := SetupTestStore(t)
	return taskservice.NewService(store, nil), store
}

// CreateTestTask adds a task and returns its id
func CreateTestTask(t *testing.T, svc taskservice.Service, title string, done bool) string {
	t.Helper()

	id, err := svc.AddTask(context.Background(), title, done)
	if err != nil {
		t.Fatalf("Failed to create test task %q: %v", title, err)
	}
	return id
}

// GetAllTasks returns every task including deleted ones
func GetAllTasks(t *testing.T, svc taskservice.Service) []models.Task {
	t.Helper()

	tasks, err := svc.GetTasks(context.Background(), true)
	if err != nil {
		t.Fatalf("Failed to list tasks: %v", err)
	}
	return tasks
}
