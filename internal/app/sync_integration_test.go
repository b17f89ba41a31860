package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tasks/internal/config"
	"github.com/thenoetrevino/tasks/internal/events"
	"github.com/thenoetrevino/tasks/internal/models"
	"github.com/thenoetrevino/tasks/internal/testutil"
)

// newDaemonSession opens a session over the shared data dir, syncing
// through the daemon at socketPath
func newDaemonSession(t *testing.T, dataDir, socketPath, peerID string) *App {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = dataDir
	cfg.Sync.Feed = config.FeedDaemon
	cfg.Sync.SocketPath = socketPath
	cfg.Sync.Debounce = config.Duration(10 * time.Millisecond)

	a := New(cfg, WithPeerID(peerID))
	t.Cleanup(func() { _ = a.Close() })

	ctx := context.Background()
	require.NoError(t, a.Init(ctx))
	require.NoError(t, a.StartSync(ctx))
	return a
}

func TestSync_TwoSessionsThroughDaemon(t *testing.T) {
	server, socketPath := testutil.SetupTestDaemon(t)
	dataDir := t.TempDir()
	ctx := context.Background()

	writer := newDaemonSession(t, dataDir, socketPath, "writer-1")
	reader := newDaemonSession(t, dataDir, socketPath, "reader-1")

	require.True(t, testutil.WaitForCondition(t, func() bool {
		return server.Metrics().ConnectedClients == 2
	}, 2*time.Second, "both sessions connected"))

	readerTasks, err := reader.Tasks()
	require.NoError(t, err)
	updates := make(chan []models.Task, 4)
	sub, err := readerTasks.RegisterObserver(ctx, func(ts []models.Task) { updates <- ts })
	require.NoError(t, err)
	defer sub.Cancel()

	writerTasks, err := writer.Tasks()
	require.NoError(t, err)
	id, err := writerTasks.AddTask(ctx, "written elsewhere", false)
	require.NoError(t, err)

	select {
	case ts := <-updates:
		require.Len(t, ts, 1)
		assert.Equal(t, id, ts[0].ID)
	case <-time.After(3 * time.Second):
		t.Fatal("reader was not refreshed by the writer's change")
	}
}

func TestSync_PublishesToOtherPeers(t *testing.T) {
	_, socketPath := testutil.SetupTestDaemon(t)
	ctx := context.Background()

	peer := testutil.SetupTestClient(t, socketPath)
	require.NoError(t, peer.Subscribe(models.TasksCollection))
	received, err := peer.Listen(ctx)
	require.NoError(t, err)

	a := newDaemonSession(t, t.TempDir(), socketPath, "session-1")
	tasks, err := a.Tasks()
	require.NoError(t, err)

	id, err := tasks.AddTask(ctx, "announce me", false)
	require.NoError(t, err)

	event := testutil.WaitForEvent(t, received, 3*time.Second)
	assert.Equal(t, models.TasksCollection, event.Collection)
	assert.Equal(t, "session-1", event.Source)
	assert.Equal(t, id, event.DocumentID)

	// Nothing is published once sync is stopped
	require.NoError(t, a.StopSync())
	_, err = tasks.AddTask(ctx, "kept local", false)
	require.NoError(t, err)
	testutil.WaitForNoEvent(t, received, 300*time.Millisecond)
}

func TestSync_RawPeerEventRefreshesSession(t *testing.T) {
	server, socketPath := testutil.SetupTestDaemon(t)
	ctx := context.Background()
	dataDir := t.TempDir()

	a := newDaemonSession(t, dataDir, socketPath, "session-1")
	tasks, err := a.Tasks()
	require.NoError(t, err)
	store, err := a.Store()
	require.NoError(t, err)

	raw := testutil.ConnectRawPeer(t, socketPath)
	raw.Subscribe("")
	require.True(t, testutil.WaitForCondition(t, func() bool {
		return server.Metrics().ConnectedClients == 2
	}, 2*time.Second, "raw peer connected"))

	updates := make(chan []models.Task, 4)
	sub, err := tasks.RegisterObserver(ctx, func(ts []models.Task) { updates <- ts })
	require.NoError(t, err)
	defer sub.Cancel()

	_, err = store.DB().Exec("INSERT INTO tasks (_id, title) VALUES ('raw-1', 'from a raw peer')")
	require.NoError(t, err)

	raw.Publish(events.Event{
		Type:       events.EventDatabaseChanged,
		Collection: models.TasksCollection,
		Source:     "raw-peer",
	})

	// The daemon echoes the event back to its sender too
	msg := raw.Read(2 * time.Second)
	require.NotNil(t, msg.Event)
	assert.Equal(t, "raw-peer", msg.Event.Source)

	select {
	case ts := <-updates:
		require.Len(t, ts, 1)
		assert.Equal(t, "raw-1", ts[0].ID)
	case <-time.After(3 * time.Second):
		t.Fatal("raw peer event did not refresh the session")
	}
}
