package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/tasks/internal/events"
)

const (
	defaultBroadcastBuffer = 100
	defaultClientBuffer    = 10
	defaultPingInterval    = 30 * time.Second
	defaultStaleAfter      = 90 * time.Second
)

// ErrShuttingDown is returned by Broadcast once Shutdown has been called
var ErrShuttingDown = errors.New("daemon is shutting down")

// Server relays change events between task processes on one machine.
// Every event a peer sends is stamped with a sequence number and delivered
// to every peer whose subscription matches, the sender included.
type Server struct {
	socketPath string
	listener   net.Listener

	mu    sync.RWMutex
	peers map[*peer]struct{}

	broadcast        chan events.Event
	clientBufferSize int
	pingInterval     time.Duration
	staleAfter       time.Duration

	metrics  *Metrics
	sequence atomic.Int64

	done         chan struct{}
	shutdownOnce sync.Once
}

// Option configures a Server
type Option func(*Server)

// WithPingInterval sets how often peers are pinged and checked for staleness
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// WithStaleAfter sets how long a peer may go without answering a ping
func WithStaleAfter(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// getEnvInt reads a positive integer from an environment variable
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// NewServer listens on socketPath, creating its directory and replacing a
// stale socket file. TASKS_DAEMON_BROADCAST_BUFFER and
// TASKS_DAEMON_CLIENT_BUFFER size the event queues.
func NewServer(socketPath string, opts ...Option) (*Server, error) {
	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	s := &Server{
		socketPath:       socketPath,
		listener:         listener,
		peers:            make(map[*peer]struct{}),
		broadcast:        make(chan events.Event, getEnvInt("TASKS_DAEMON_BROADCAST_BUFFER", defaultBroadcastBuffer)),
		clientBufferSize: getEnvInt("TASKS_DAEMON_CLIENT_BUFFER", defaultClientBuffer),
		pingInterval:     defaultPingInterval,
		staleAfter:       defaultStaleAfter,
		metrics:          NewMetrics(),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start serves peers until ctx is cancelled or Shutdown is called
func (s *Server) Start(ctx context.Context) error {
	slog.Info("daemon starting", "socket", s.socketPath)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		select {
		case <-gctx.Done():
			slog.Info("daemon context cancelled, shutting down")
		case <-s.done:
		}
		cancel()
		return s.Shutdown()
	})
	g.Go(s.acceptLoop)
	g.Go(func() error {
		s.broadcastLoop(gctx)
		return nil
	})
	g.Go(func() error {
		s.monitorHealth(gctx)
		return nil
	})

	return g.Wait()
}

// acceptLoop registers incoming connections until the listener is closed
func (s *Server) acceptLoop() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.shuttingDown() {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		p := newPeer(conn, s.clientBufferSize)
		if !s.addPeer(p) {
			p.close()
			return nil
		}
		slog.Info("client connected", "clients", s.peerCount())

		go s.readPeer(p)
		go p.writeLoop()
	}
}

// readPeer handles the messages a peer sends until its connection fails
func (s *Server) readPeer(p *peer) {
	defer s.removePeer(p)

	dec := events.NewDecoder(p.conn)
	for {
		var msg events.Message
		if err := dec.Decode(&msg); err != nil {
			return
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			slog.Warn("protocol version mismatch", "got", msg.Version, "expected", events.ProtocolVersion)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil {
				continue
			}
			s.metrics.IncEventsReceived()
			if err := s.Broadcast(*msg.Event); err != nil {
				s.metrics.IncEventsDropped()
				slog.Warn("event dropped", "source", msg.Event.Source, "error", err)
			}

		case "subscribe":
			if msg.Subscribe != nil {
				p.subscribe(msg.Subscribe.Collection)
				slog.Debug("client subscribed", "collection", msg.Subscribe.Collection)
			}

		case "pong":
			p.touch(time.Now())
		}
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.broadcast:
			s.deliver(event)
		}
	}
}

// deliver stamps event and queues it for every matching peer. Slow peers
// lose the event instead of holding up the rest.
func (s *Server) deliver(event events.Event) {
	event.SequenceID = s.sequence.Add(1)
	s.metrics.IncEventsBroadcast()

	msg := events.Message{
		Version: events.ProtocolVersion,
		Type:    "event",
		Event:   &event,
	}
	for _, p := range s.snapshotPeers() {
		if !p.wants(event.Collection) {
			continue
		}
		if p.enqueue(msg) {
			s.metrics.IncEventsSent()
			continue
		}
		s.metrics.IncEventsDropped()
		slog.Warn("client send queue full, event dropped", "collection", event.Collection)
	}
}

// monitorHealth drops peers that stopped answering pings, then pings the rest
func (s *Server) monitorHealth(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	ping := events.Message{
		Version: events.ProtocolVersion,
		Type:    "ping",
		Event:   &events.Event{Type: events.EventPing},
	}

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, p := range s.snapshotPeers() {
				if now.Sub(p.lastSeen()) > s.staleAfter {
					slog.Info("removing stale client")
					s.metrics.IncStaleClients()
					s.removePeer(p)
					continue
				}
				if !p.enqueue(ping) {
					slog.Debug("failed to send ping to client, queue full")
				}
			}
			slog.Debug("daemon metrics", "metrics", s.metrics.Snapshot())
		}
	}
}

// Broadcast queues an event for delivery without blocking
func (s *Server) Broadcast(event events.Event) error {
	if s.shuttingDown() {
		return ErrShuttingDown
	}
	select {
	case s.broadcast <- event:
		return nil
	default:
		return fmt.Errorf("broadcast channel full")
	}
}

// Shutdown stops accepting peers, disconnects the connected ones and removes
// the socket file. Calling it again is a no-op.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		slog.Info("shutting down daemon")
		close(s.done)

		if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = fmt.Errorf("close listener: %w", closeErr)
		}

		s.mu.Lock()
		peers := s.peers
		s.peers = make(map[*peer]struct{})
		s.mu.Unlock()

		for p := range peers {
			p.close()
		}
		s.metrics.SetConnectedClients(0)

		if removeErr := os.Remove(s.socketPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			slog.Warn("failed to remove socket file", "error", removeErr)
		}
	})
	return err
}

// Metrics returns a snapshot of the daemon counters
func (s *Server) Metrics() MetricsSnapshot {
	return s.metrics.Snapshot()
}

func (s *Server) shuttingDown() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// addPeer registers p unless the server is shutting down
func (s *Server) addPeer(p *peer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shuttingDown() {
		return false
	}
	s.peers[p] = struct{}{}
	s.metrics.SetConnectedClients(int32(len(s.peers)))
	return true
}

func (s *Server) removePeer(p *peer) {
	s.mu.Lock()
	_, known := s.peers[p]
	delete(s.peers, p)
	count := len(s.peers)
	if known {
		s.metrics.SetConnectedClients(int32(count))
	}
	s.mu.Unlock()

	p.close()
	if known {
		slog.Info("client disconnected", "clients", count)
	}
}

func (s *Server) snapshotPeers() []*peer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	peers := make([]*peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	return peers
}

func (s *Server) peerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}
