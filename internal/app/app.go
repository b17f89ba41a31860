package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/thenoetrevino/tasks/internal/config"
	"github.com/thenoetrevino/tasks/internal/database"
	"github.com/thenoetrevino/tasks/internal/events"
	"github.com/thenoetrevino/tasks/internal/models"
	taskservice "github.com/thenoetrevino/tasks/internal/services/task"
	"github.com/thenoetrevino/tasks/internal/user"
)

// Lifecycle errors
var (
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNotInitialized     = errors.New("session not initialized")
	ErrSessionClosed      = errors.New("session closed")
)

type lifecycle int

const (
	stateCreated lifecycle = iota
	stateActive
	stateClosed
)

// App is the process-wide session: it owns the store, the task service and
// the change feed. It is created once, initialized once and closed once.
type App struct {
	cfg    *config.Config
	opts   appConfig
	logger *slog.Logger
	peerID string

	mu    sync.Mutex
	state lifecycle
	store *database.Store
	tasks taskservice.Service

	// Sync state
	relay      *events.Relay
	syncState  models.SyncState
	stopListen context.CancelFunc
	listenDone chan struct{}
}

// New creates a session in the created state. Nothing is opened until Init.
func New(cfg *config.Config, opts ...Option) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	var o appConfig
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		cfg:       cfg,
		opts:      o,
		logger:    o.logger,
		peerID:    o.peerID,
		relay:     events.NewRelay(),
		syncState: models.SyncNotStarted,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.peerID == "" {
		a.peerID = user.PeerID()
	}
	if a.opts.feedFactory == nil {
		a.opts.feedFactory = a.defaultFeedFactory
	}
	return a
}

// Init opens the store and builds the task service
func (a *App) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case stateActive:
		return ErrAlreadyInitialized
	case stateClosed:
		return ErrSessionClosed
	}

	store := a.opts.store
	if store == nil {
		var err error
		store, err = database.Open(ctx, a.cfg.DatabasePath(), a.cfg.MaxResults)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
	}

	a.store = store
	a.tasks = taskservice.NewService(store, a.relay)
	a.state = stateActive

	a.logger.Info("session initialized", "peer_id", a.peerID, "data_dir", a.cfg.DataDir)
	return nil
}

// Tasks returns the task service
func (a *App) Tasks() (taskservice.Service, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkActive(); err != nil {
		return nil, err
	}
	return a.tasks, nil
}

// Store returns the underlying document store
func (a *App) Store() (*database.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkActive(); err != nil {
		return nil, err
	}
	return a.store, nil
}

// Config returns the configuration the session was created with
func (a *App) Config() *config.Config {
	return a.cfg
}

// PeerID returns the id stamped on events from this session
func (a *App) PeerID() string {
	return a.peerID
}

// StartSync connects the change feed and starts applying other peers'
// changes to live queries. Starting an active sync is a no-op.
func (a *App) StartSync(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkActive(); err != nil {
		return err
	}
	if a.syncState == models.SyncActive {
		return nil
	}

	feed, err := a.opts.feedFactory(ctx)
	if err != nil {
		return fmt.Errorf("start sync: %w", err)
	}

	if err := feed.Connect(ctx); err != nil {
		_ = feed.Close()
		return fmt.Errorf("start sync: %w", err)
	}
	if err := feed.Subscribe(models.TasksCollection); err != nil {
		_ = feed.Close()
		return fmt.Errorf("start sync: subscribe: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	incoming, err := feed.Listen(listenCtx)
	if err != nil {
		cancel()
		_ = feed.Close()
		return fmt.Errorf("start sync: listen: %w", err)
	}

	done := make(chan struct{})
	go a.applyRemoteChanges(incoming, a.store, done)

	a.relay.SetTarget(feed)
	a.stopListen = cancel
	a.listenDone = done
	a.syncState = models.SyncActive

	a.logger.Info("sync started", "feed", a.cfg.Sync.Feed, "peer_id", a.peerID)
	return nil
}

// applyRemoteChanges wakes live queries for every event another peer sent
func (a *App) applyRemoteChanges(incoming <-chan events.Event, store *database.Store, done chan struct{}) {
	defer close(done)

	for event := range incoming {
		if event.Source == a.peerID {
			continue
		}
		if !events.Matches(models.TasksCollection, event.Collection) {
			continue
		}
		a.logger.Debug("remote change",
			"source", event.Source,
			"document_id", event.DocumentID,
			"sequence", event.SequenceID)
		store.NotifyExternalChange()
	}
}

// StopSync disconnects the change feed. Stopping an inactive sync is a no-op.
func (a *App) StopSync() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.stopSyncLocked()
}

func (a *App) stopSyncLocked() error {
	if a.syncState != models.SyncActive {
		return nil
	}

	feed := a.relay.SetTarget(nil)
	a.stopListen()

	var err error
	if feed != nil {
		err = feed.Close()
	}
	<-a.listenDone

	a.stopListen = nil
	a.listenDone = nil
	a.syncState = models.SyncStopped

	a.logger.Info("sync stopped", "peer_id", a.peerID)
	return err
}

// ToggleSync starts a stopped sync or stops an active one
func (a *App) ToggleSync(ctx context.Context) error {
	if a.IsSyncActive() {
		return a.StopSync()
	}
	return a.StartSync(ctx)
}

// IsSyncActive reports whether the change feed is connected
func (a *App) IsSyncActive() bool {
	return a.SyncState() == models.SyncActive
}

// SyncState reports the sync lifecycle state
func (a *App) SyncState() models.SyncState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.syncState
}

// Close stops sync and closes the store. Closing twice is a no-op.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == stateClosed {
		return nil
	}

	var errs []error
	if a.state == stateActive {
		errs = append(errs, a.stopSyncLocked())
		errs = append(errs, a.store.Close())
	}
	a.state = stateClosed
	a.store = nil
	a.tasks = nil

	return errors.Join(errs...)
}

func (a *App) checkActive() error {
	switch a.state {
	case stateCreated:
		return ErrNotInitialized
	case stateClosed:
		return ErrSessionClosed
	}
	return nil
}
