package events

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// DefaultDebounce is the batching window used when none is configured
const DefaultDebounce = 100 * time.Millisecond

// Client represents a connection to the tasks daemon for sending and
// receiving change events. It handles batching, reconnection and subscriptions.
type Client struct {
	socketPath string
	source     string
	conn       net.Conn
	encoder    sonic.Encoder
	decoder    sonic.Decoder
	mu         sync.Mutex

	// Batching configuration
	eventQueue chan Event
	debounce   time.Duration
	closed     bool // Prevent double-close panics
	started    bool // Batcher running

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	// Subscription state
	collection string

	// Event tracking
	lastSequence int64

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc

	// Batching goroutine
	batcherDone chan struct{}
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithSource stamps outgoing events with the given peer id
func WithSource(source string) ClientOption {
	return func(c *Client) {
		c.source = source
	}
}

// WithDebounce sets the batching window. Non-positive values are ignored.
func WithDebounce(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithReconnect sets the reconnection attempts and initial backoff
func WithReconnect(maxRetries int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// NewClient creates a new event client but does not connect.
// The socket path should be the full path to the Unix domain socket.
// TASKS_EVENT_DEBOUNCE_MS overrides the default batching window.
func NewClient(socketPath string, opts ...ClientOption) (*Client, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("socket path must not be empty")
	}

	debounce := DefaultDebounce
	if envVal := os.Getenv("TASKS_EVENT_DEBOUNCE_MS"); envVal != "" {
		if parsed, err := strconv.Atoi(envVal); err == nil && parsed > 0 {
			debounce = time.Duration(parsed) * time.Millisecond
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		socketPath:  socketPath,
		eventQueue:  make(chan Event, 100),
		debounce:    debounce,
		maxRetries:  5,
		baseDelay:   1 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect establishes a connection to the daemon socket.
// It sends the current subscription and starts the batcher on first connect.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDaemonUnreachable, err)
	}

	c.conn = conn
	c.encoder = NewEncoder(conn)
	c.decoder = NewDecoder(conn)

	msg := Message{
		Version: ProtocolVersion,
		Type:    "subscribe",
		Subscribe: &SubscribeMessage{
			Collection: c.collection,
		},
	}
	if err := c.encoder.Encode(msg); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("error closing connection", "error", closeErr)
		}
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	if !c.started {
		c.started = true
		go c.startBatcher()
	}

	return nil
}

// SendEvent queues an event to be sent to the daemon.
// Events are batched and sent in bursts within the debounce window.
// Returns error if the queue is full (non-blocking send).
func (c *Client) SendEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.eventQueue <- event:
		return nil
	default:
		return fmt.Errorf("event queue full")
	}
}

// startBatcher runs in a goroutine and batches events from the queue.
// It sends a single event every debounce duration if any events are pending.
// Events for different collections collapse into one event for all collections.
func (c *Client) startBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	var (
		pending  bool
		batch    Event
		multiple bool
	)

	add := func(event Event) {
		if !pending {
			pending = true
			batch = event
			multiple = false
			return
		}
		if batch.Collection != event.Collection {
			batch.Collection = ""
		}
		if batch.DocumentID != event.DocumentID {
			multiple = true
		}
	}

	flushPending := func() {
		if !pending {
			return
		}
		out := Event{
			Type:       EventDatabaseChanged,
			Collection: batch.Collection,
			Source:     c.source,
			Timestamp:  time.Now(),
		}
		if !multiple {
			out.DocumentID = batch.DocumentID
		}
		if err := c.sendToSocket(out); err != nil && !isConnectionError(err) {
			slog.Warn("failed to send batched event", "error", err)
		}
		pending = false
	}

	for {
		select {
		case <-c.ctx.Done():
			// Drain anything still queued, then flush before exiting
			for {
				select {
				case event := <-c.eventQueue:
					add(event)
					continue
				default:
				}
				break
			}
			flushPending()
			return

		case event := <-c.eventQueue:
			add(event)

		case <-ticker.C:
			flushPending()
		}
	}
}

// sendToSocket sends an event to the daemon socket.
func (c *Client) sendToSocket(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}

	// Set a short write deadline to detect dead connections
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	msg := Message{
		Version: ProtocolVersion,
		Type:    "event",
		Event:   &event,
	}
	if event.Type == EventPong {
		msg.Type = "pong"
	}
	return c.encoder.Encode(msg)
}

// Listen starts listening for events from the daemon.
// It returns a channel that receives events and handles reconnection automatically.
// The channel is closed when context is done or reconnection fails.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	eventChan := make(chan Event, 10)
	go c.listenLoop(ctx, eventChan)
	return eventChan, nil
}

// listenLoop reads events from the daemon and handles reconnection.
func (c *Client) listenLoop(ctx context.Context, eventChan chan Event) {
	defer close(eventChan)

	for {
		if ctx.Err() != nil || c.ctx.Err() != nil {
			return
		}

		err := c.readEvents(ctx, eventChan)
		if err == nil || ctx.Err() != nil || c.ctx.Err() != nil {
			return
		}

		slog.Warn("connection to daemon lost, reconnecting", "error", err)
		if c.reconnect(ctx) {
			slog.Info("reconnected to daemon")
			continue
		}

		slog.Error("failed to reconnect to daemon, giving up", "attempts", c.maxRetries)
		return
	}
}

// readEvents reads messages from the socket and sends them to the event channel.
func (c *Client) readEvents(ctx context.Context, eventChan chan Event) error {
	for {
		var msg Message

		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return fmt.Errorf("connection closed")
		}
		// Set read deadline to detect hung connections (60 seconds)
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder // Keep reference to decoder
		c.mu.Unlock()

		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil {
				continue
			}
			// Basic duplicate detection; a restarted daemon starts from 1 again
			if msg.Event.SequenceID > c.lastSequence || msg.Event.SequenceID == 1 {
				c.lastSequence = msg.Event.SequenceID
				select {
				case eventChan <- *msg.Event:
				case <-ctx.Done():
					return nil
				}
			}

		case "ping":
			if err := c.sendToSocket(Event{Type: EventPong}); err != nil && !isConnectionError(err) {
				slog.Warn("failed to send pong", "error", err)
			}
		}
	}
}

// isConnectionError checks if an error is a network connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, ErrNotConnected.Error())
}

// reconnect attempts to reconnect to the daemon with exponential backoff.
// It tries up to maxRetries times, doubling the delay each time.
func (c *Client) reconnect(ctx context.Context) bool {
	delay := c.baseDelay

	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
			c.mu.Lock()
			if c.conn != nil {
				if err := c.conn.Close(); err != nil && !isConnectionError(err) {
					slog.Debug("error closing connection during reconnect", "error", err)
				}
				c.conn = nil
			}
			c.mu.Unlock()

			if err := c.Connect(ctx); err == nil {
				slog.Info("reconnected to daemon", "attempt", i+1, "max_retries", c.maxRetries)
				return true
			}

			slog.Debug("reconnection attempt failed", "attempt", i+1, "max_retries", c.maxRetries, "retry_in", delay)
			delay *= 2 // Exponential backoff: 1s, 2s, 4s, 8s, 16s
		}
	}

	return false
}

// Subscribe changes the subscription to a specific collection.
// The empty collection subscribes to all collections.
func (c *Client) Subscribe(collection string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.collection = collection

	if c.conn == nil {
		return ErrNotConnected
	}

	return c.encoder.Encode(Message{
		Version: ProtocolVersion,
		Type:    "subscribe",
		Subscribe: &SubscribeMessage{
			Collection: collection,
		},
	})
}

// Close closes the connection to the daemon and stops all goroutines.
// Pending events are flushed before the connection is closed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	started := c.started
	c.mu.Unlock()

	// Cancel context to stop the batcher and listener
	c.cancel()

	if started {
		<-c.batcherDone
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}

	return nil
}
