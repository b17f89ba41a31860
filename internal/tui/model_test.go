package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/huh/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tasks/internal/config"
	"github.com/thenoetrevino/tasks/internal/events"
	"github.com/thenoetrevino/tasks/internal/models"
	taskservice "github.com/thenoetrevino/tasks/internal/services/task"
	"github.com/thenoetrevino/tasks/internal/testutil"
	"github.com/thenoetrevino/tasks/internal/tui/state"
)

// fakeSync records toggles without touching a change feed
type fakeSync struct {
	state models.SyncState
	err   error
}

func (f *fakeSync) ToggleSync(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	if f.state == models.SyncActive {
		f.state = models.SyncStopped
	} else {
		f.state = models.SyncActive
	}
	return nil
}

func (f *fakeSync) SyncState() models.SyncState { return f.state }

func setupTestModel(t *testing.T, titles ...string) (Model, taskservice.Service, *fakeSync) {
	t.Helper()

	svc, _ := testutil.SetupTestService(t)
	for _, title := range titles {
		testutil.CreateTestTask(t, svc, title, false)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sync := &fakeSync{state: models.SyncNotStarted}
	m, err := New(ctx, svc, sync, config.Default())
	require.NoError(t, err)
	t.Cleanup(m.Close)

	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = update(t, m, m.loadTasks()())
	return m, svc, sync
}

// update applies msg and returns the new model
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

// updateAndRun applies msg and feeds the returned command's message back in
func updateAndRun(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	model := next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			model = update(t, model, out)
		}
	}
	return model
}

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestNew_LoadsTasks(t *testing.T) {
	m, _, _ := setupTestModel(t, "first", "second")

	assert.Len(t, m.Items(), 2)
	task, ok := m.SelectedTask()
	require.True(t, ok)
	assert.Equal(t, m.Items()[0].ID, task.ID)
}

func TestNavigation(t *testing.T) {
	m, _, _ := setupTestModel(t, "a", "b", "c")

	m = update(t, m, keyPress("j"))
	m = update(t, m, keyPress("down"))
	assert.Equal(t, 2, m.UiState.Selected())

	m = update(t, m, keyPress("j"))
	assert.Equal(t, 2, m.UiState.Selected(), "selection stops at the last row")

	m = update(t, m, keyPress("k"))
	assert.Equal(t, 1, m.UiState.Selected())
}

func TestToggleTask(t *testing.T) {
	m, svc, _ := setupTestModel(t, "toggle me")
	id := m.Items()[0].ID

	m = updateAndRun(t, m, keyPress("space"))
	task, err := svc.GetTask(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, task.Done)
	assert.True(t, m.Items()[0].Done)

	m = updateAndRun(t, m, keyPress("enter"))
	task, _ = svc.GetTask(context.Background(), id)
	assert.False(t, task.Done)
	assert.Contains(t, m.render(), "[ ] toggle me")
}

func TestDeleteTask_RequiresConfirmation(t *testing.T) {
	m, svc, _ := setupTestModel(t, "keep", "drop")
	m = update(t, m, keyPress("j"))

	m = update(t, m, keyPress("d"))
	assert.Equal(t, state.DeleteConfirmMode, m.UiState.Mode())

	m = update(t, m, keyPress("n"))
	assert.Equal(t, state.NormalMode, m.UiState.Mode())
	assert.Len(t, m.Items(), 2)

	m = update(t, m, keyPress("d"))
	m = updateAndRun(t, m, keyPress("y"))
	assert.Len(t, m.Items(), 1)
	assert.Equal(t, "keep", m.Items()[0].Title)

	all := testutil.GetAllTasks(t, svc)
	assert.Len(t, all, 2, "deleted tasks are kept until evicted")

	m = updateAndRun(t, m, keyPress("a"))
	assert.True(t, m.UiState.ShowDeleted())
	assert.Len(t, m.Items(), 2)

	m = updateAndRun(t, m, keyPress("X"))
	assert.Len(t, m.Items(), 1)
	assert.Len(t, testutil.GetAllTasks(t, svc), 1)
}

func TestTaskForm_AddAndEdit(t *testing.T) {
	m, svc, _ := setupTestModel(t, "existing")

	m = update(t, m, keyPress("c"))
	require.Equal(t, state.TaskFormMode, m.UiState.Mode())
	require.NotNil(t, m.FormState.Form)
	assert.False(t, m.FormState.IsEditing())

	// Simulate the user filling in and submitting the form
	m.FormState.FormTitle = "  from the form  "
	m.FormState.Form.State = huh.StateCompleted
	m = updateAndRun(t, m, struct{}{})

	assert.Equal(t, state.NormalMode, m.UiState.Mode())
	titles := []string{}
	for _, task := range testutil.GetAllTasks(t, svc) {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(t, []string{"existing", "from the form"}, titles)

	// Edit the task under the cursor
	target, ok := m.SelectedTask()
	require.True(t, ok)
	m = update(t, m, keyPress("e"))
	require.True(t, m.FormState.IsEditing())
	assert.Equal(t, target.Title, m.FormState.FormTitle)

	m.FormState.FormTitle = "renamed"
	m.FormState.Form.State = huh.StateCompleted
	m = updateAndRun(t, m, struct{}{})

	task, err := svc.GetTask(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", task.Title)
}

func TestTaskForm_EscDiscards(t *testing.T) {
	m, svc, _ := setupTestModel(t)

	m = update(t, m, keyPress("c"))
	m.FormState.FormTitle = "never saved"
	m = update(t, m, keyPress("esc"))

	assert.Equal(t, state.NormalMode, m.UiState.Mode())
	assert.Nil(t, m.FormState.Form)
	assert.Empty(t, testutil.GetAllTasks(t, svc))
}

func TestTaskForm_DeclinedConfirmSavesNothing(t *testing.T) {
	m, svc, _ := setupTestModel(t)

	m = update(t, m, keyPress("c"))
	m.FormState.FormTitle = "not confirmed"
	m.FormState.FormConfirm = false
	m.FormState.Form.State = huh.StateCompleted
	m = update(t, m, struct{}{})

	assert.Equal(t, state.NormalMode, m.UiState.Mode())
	assert.Empty(t, testutil.GetAllTasks(t, svc))
}

func TestObserverRefreshesList(t *testing.T) {
	m, svc, _ := setupTestModel(t)
	require.Empty(t, m.Items())

	testutil.CreateTestTask(t, svc, "arrived later", false)

	msg := make(chan tea.Msg, 1)
	go func() { msg <- m.waitForChange()() }()

	select {
	case got := <-msg:
		changed, ok := got.(TasksChangedMsg)
		require.True(t, ok)
		m = update(t, m, changed)
	case <-time.After(3 * time.Second):
		t.Fatal("observer did not deliver a change")
	}

	require.Len(t, m.Items(), 1)
	assert.Equal(t, "arrived later", m.Items()[0].Title)
}

func TestToggleSync(t *testing.T) {
	m, _, sync := setupTestModel(t)

	m = updateAndRun(t, m, keyPress("s"))
	assert.Equal(t, models.SyncActive, sync.state)
	assert.Contains(t, m.render(), "syncing")

	sync.err = errors.New("feed unavailable")
	m = updateAndRun(t, m, keyPress("s"))
	assert.Equal(t, "toggle sync: feed unavailable", m.NotificationState.LastError())

	sync.err = fmt.Errorf("%w: %w", events.ErrDaemonUnreachable, os.ErrNotExist)
	m = updateAndRun(t, m, keyPress("s"))
	assert.Contains(t, m.NotificationState.LastError(), "Socket file not found")
	assert.Contains(t, m.NotificationState.LastError(), "tasks-daemon")
}

func TestHelpMode(t *testing.T) {
	m, _, _ := setupTestModel(t)

	m = update(t, m, keyPress("?"))
	assert.Equal(t, state.HelpMode, m.UiState.Mode())
	assert.True(t, strings.Contains(m.render(), "toggle done"))

	m = update(t, m, keyPress("x"))
	assert.Equal(t, state.NormalMode, m.UiState.Mode())
}

func TestQuit(t *testing.T) {
	m, _, _ := setupTestModel(t)

	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
