package cmd

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tasks/internal/cli"
	"github.com/thenoetrevino/tasks/internal/testutil"
)

// runTasks executes the root command against a fresh data directory with
// sync disabled
func runTasks(t *testing.T, dataDir string, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)

	args = append([]string{"--data-dir", dataDir, "--no-sync"}, args...)
	return testutil.ExecuteCommand(t, NewRootCmd(), args...)
}

func TestRoot_AddAndList(t *testing.T) {
	dataDir := t.TempDir()

	stdout, stderr, err := runTasks(t, dataDir, "--add", "Buy oat milk", "--list")
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Added task: ")
	assert.Contains(t, stdout, "Buy oat milk")
	assert.Contains(t, stdout, "Buy groceries", "demo tasks are seeded on startup")
}

func TestRoot_StatePersistsAcrossRuns(t *testing.T) {
	dataDir := t.TempDir()

	_, _, err := runTasks(t, dataDir, "--complete", "50191411")
	require.NoError(t, err)

	stdout, _, err := runTasks(t, dataDir, "--list", "--json")
	require.NoError(t, err)

	result := testutil.ParseJSON(t, stdout)
	assert.Equal(t, true, result["success"])

	tasks, ok := result["data"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, tasks)

	var found bool
	for _, raw := range tasks {
		task := raw.(map[string]any)
		if task["title"] == "Buy groceries" {
			found = true
			assert.Equal(t, true, task["done"])
		}
	}
	assert.True(t, found)
}

func TestRoot_ShortIDExitCode(t *testing.T) {
	_, stderr, err := runTasks(t, t.TempDir(), "--complete", "abc")

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitValidation, exitErr.Code)
	assert.Contains(t, stderr, "at least 5 characters")
}

func TestRoot_NotFoundExitCode(t *testing.T) {
	_, stderr, err := runTasks(t, t.TempDir(), "--delete", "zzzzzzzz")

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitNotFound, exitErr.Code)
	assert.Contains(t, stderr, "no tasks found")
}

func TestRoot_QuietAdd(t *testing.T) {
	stdout, _, err := runTasks(t, t.TempDir(), "--quiet", "--add", "Silent")
	require.NoError(t, err)

	assert.NotContains(t, stdout, "Added task")
	assert.Len(t, stdout, 37, "quiet add prints the uuid and a newline")
}

func TestRoot_TUIWithCommandsPrintsHelp(t *testing.T) {
	stdout, _, err := runTasks(t, t.TempDir(), "--tui", "--list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
}

func TestRoot_RejectsPositionalArgs(t *testing.T) {
	_, _, err := runTasks(t, t.TempDir(), "list")
	assert.Error(t, err)
}

func TestRoot_JSONAndQuietConflict(t *testing.T) {
	_, _, err := runTasks(t, t.TempDir(), "--json", "--quiet", "--list")
	assert.Error(t, err)
}

func TestLogLevelFlags(t *testing.T) {
	assert.Equal(t, "warn", (&globalFlags{}).logLevel("warn"))
	assert.Equal(t, "error", (&globalFlags{logError: true}).logLevel("info"))
	assert.Equal(t, "warning", (&globalFlags{logWarning: true, logError: true}).logLevel("info"))
	assert.Equal(t, "debug", (&globalFlags{logVerbose: true, logInfo: true}).logLevel("info"))
}

type fakeServer struct {
	started  chan string
	stopped  chan struct{}
	startErr error
}

func (f *fakeServer) Start(addr string) error {
	f.started <- addr
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	select {
	case <-f.stopped:
	default:
		close(f.stopped)
	}
	return nil
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv := &fakeServer{started: make(chan string, 1), stopped: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, srv, "127.0.0.1:0") }()

	select {
	case addr := <-srv.started:
		assert.Equal(t, "127.0.0.1:0", addr)
	case <-time.After(2 * time.Second):
		t.Fatal("server never started")
	}

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_StartFailure(t *testing.T) {
	srv := &fakeServer{
		started:  make(chan string, 1),
		stopped:  make(chan struct{}),
		startErr: errors.New("address already in use"),
	}

	err := serve(context.Background(), srv, "127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
}
