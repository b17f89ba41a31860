package state

// Mode represents the current interaction mode of the TUI.
// Each mode determines which keyboard shortcuts are active and what UI is displayed.
type Mode int

const (
	NormalMode        Mode = iota // Default navigation mode
	TaskFormMode                  // Creating or editing a task with huh
	DeleteConfirmMode             // Confirming task deletion
	HelpMode                      // Displaying help screen
)

// String returns the label shown in the status bar
func (m Mode) String() string {
	switch m {
	case TaskFormMode:
		return "EDIT"
	case DeleteConfirmMode:
		return "CONFIRM"
	case HelpMode:
		return "HELP"
	default:
		return "NORMAL"
	}
}

// UIState manages the user interface state.
// This includes the selected row, terminal dimensions, and the current
// interaction mode.
type UIState struct {
	selected    int
	width       int
	height      int
	mode        Mode
	showDeleted bool
}

// NewUIState creates a new UIState in normal mode
func NewUIState() *UIState {
	return &UIState{mode: NormalMode}
}

func (s *UIState) Selected() int { return s.selected }
func (s *UIState) Width() int    { return s.width }
func (s *UIState) Height() int   { return s.height }
func (s *UIState) Mode() Mode    { return s.mode }

// ShowDeleted reports whether deleted tasks are listed
func (s *UIState) ShowDeleted() bool { return s.showDeleted }

func (s *UIState) SetMode(mode Mode) { s.mode = mode }

// SetSize records the terminal dimensions
func (s *UIState) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// ToggleShowDeleted flips whether deleted tasks are listed
func (s *UIState) ToggleShowDeleted() {
	s.showDeleted = !s.showDeleted
}

// MoveUp moves the selection up one row, stopping at the top
func (s *UIState) MoveUp() {
	if s.selected > 0 {
		s.selected--
	}
}

// MoveDown moves the selection down one row, stopping at the last of count rows
func (s *UIState) MoveDown(count int) {
	if s.selected < count-1 {
		s.selected++
	}
}

// ClampSelection keeps the selection inside a list of count rows
func (s *UIState) ClampSelection(count int) {
	if s.selected >= count {
		s.selected = count - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

// VisibleRange returns the half-open range of rows that fit in height
// lines while keeping the selection visible
func (s *UIState) VisibleRange(count, height int) (int, int) {
	if height <= 0 || count <= height {
		return 0, count
	}
	start := s.selected - height + 1
	if start < 0 {
		start = 0
	}
	return start, start + height
}
