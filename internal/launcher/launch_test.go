package launcher

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tasks/internal/app"
	"github.com/thenoetrevino/tasks/internal/config"
	"github.com/thenoetrevino/tasks/internal/testutil"
)

func TestLaunch_RequiresInitializedSession(t *testing.T) {
	session := app.New(config.Default())
	err := Launch(context.Background(), session)
	assert.ErrorIs(t, err, app.ErrNotInitialized)
}

func TestLaunch_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	session := app.New(cfg, app.WithStore(testutil.SetupTestStore(t)))
	require.NoError(t, session.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Launch(ctx, session,
			tea.WithInput(&bytes.Buffer{}),
			tea.WithOutput(&bytes.Buffer{}),
		)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Launch did not return after cancel")
	}
}
