package models

import (
	"strings"
	"testing"
)

// ============================================================================
// Task Tests
// ============================================================================

func TestTask_Status(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want string
	}{
		{"done", Task{Done: true}, "X"},
		{"open", Task{Done: false}, "O"},
		{"deleted but done", Task{Done: true, Deleted: true}, "X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTask_GetID(t *testing.T) {
	task := Task{ID: "abc-123", Title: "x"}
	if task.GetID() != "abc-123" {
		t.Errorf("Expected ID 'abc-123', got '%s'", task.GetID())
	}
}

// ============================================================================
// Constant Tests
// ============================================================================

func TestInitialTasks(t *testing.T) {
	if len(InitialTasks) != 4 {
		t.Fatalf("Expected 4 initial tasks, got %d", len(InitialTasks))
	}

	seen := make(map[string]bool)
	for _, task := range InitialTasks {
		if task.ID == "" || task.Title == "" {
			t.Errorf("Initial task has empty field: %+v", task)
		}
		if task.Done || task.Deleted {
			t.Errorf("Initial task %s should start open and not deleted", task.ID)
		}
		if seen[task.ID] {
			t.Errorf("Duplicate initial task id %s", task.ID)
		}
		seen[task.ID] = true
		if len(task.ID) < MinTaskIDSubstring {
			t.Errorf("Initial task id %s is shorter than the minimum lookup length", task.ID)
		}
	}

	if !strings.HasPrefix(InitialTasks[0].ID, "50191411") {
		t.Errorf("Unexpected first initial task id %s", InitialTasks[0].ID)
	}
}

func TestSyncStates_Distinct(t *testing.T) {
	states := []SyncState{SyncNotStarted, SyncActive, SyncStopped}
	seen := make(map[SyncState]bool)
	for _, s := range states {
		if seen[s] {
			t.Errorf("Duplicate sync state %q", s)
		}
		seen[s] = true
	}
}
