package state

import "testing"

func TestUIState_Navigation(t *testing.T) {
	s := NewUIState()

	s.MoveUp()
	if s.Selected() != 0 {
		t.Errorf("MoveUp at top: got %d, want 0", s.Selected())
	}

	s.MoveDown(3)
	s.MoveDown(3)
	s.MoveDown(3)
	if s.Selected() != 2 {
		t.Errorf("MoveDown past end: got %d, want 2", s.Selected())
	}

	s.ClampSelection(1)
	if s.Selected() != 0 {
		t.Errorf("ClampSelection(1): got %d, want 0", s.Selected())
	}

	s.ClampSelection(0)
	if s.Selected() != 0 {
		t.Errorf("ClampSelection(0): got %d, want 0", s.Selected())
	}
}

func TestUIState_VisibleRange(t *testing.T) {
	tests := []struct {
		name       string
		selected   int
		count      int
		height     int
		start, end int
	}{
		{"fits", 0, 3, 10, 0, 3},
		{"no height", 0, 3, 0, 0, 3},
		{"top", 0, 20, 5, 0, 5},
		{"scrolled", 9, 20, 5, 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewUIState()
			for i := 0; i < tt.selected; i++ {
				s.MoveDown(tt.count)
			}
			start, end := s.VisibleRange(tt.count, tt.height)
			if start != tt.start || end != tt.end {
				t.Errorf("VisibleRange = (%d, %d), want (%d, %d)", start, end, tt.start, tt.end)
			}
		})
	}
}

func TestNotificationState_KeepsLastError(t *testing.T) {
	s := NewNotificationState()
	s.Add(LevelInfo, "hello")
	s.Add(LevelError, "boom")

	if !s.HasAny() || len(s.All()) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(s.All()))
	}

	s.Clear()
	if s.HasAny() {
		t.Error("Clear should drop notifications")
	}
	if s.LastError() != "boom" {
		t.Errorf("LastError = %q, want boom", s.LastError())
	}
}

func TestMode_String(t *testing.T) {
	if NormalMode.String() != "NORMAL" || TaskFormMode.String() != "EDIT" {
		t.Errorf("unexpected mode labels: %s %s", NormalMode, TaskFormMode)
	}
}
