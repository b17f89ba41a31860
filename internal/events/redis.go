package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel used when none is configured
const DefaultRedisChannel = "tasks:events"

// RedisFeed carries change events over a Redis pub/sub channel. Every peer
// connected to the same server and channel sees every other peer's events.
type RedisFeed struct {
	rdb     *redis.Client
	channel string
	source  string

	mu         sync.Mutex
	collection string
	subs       []*redis.PubSub
	sequence   int64
	closed     bool
}

// NewRedisFeed creates a feed on top of an existing Redis client.
// The feed does not own the client; callers close it themselves.
func NewRedisFeed(rdb *redis.Client, channel, source string) (*RedisFeed, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client must not be nil")
	}
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisFeed{
		rdb:     rdb,
		channel: channel,
		source:  source,
	}, nil
}

// Connect verifies the Redis server is reachable
func (f *RedisFeed) Connect(ctx context.Context) error {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return ErrClientClosed
	}

	if err := f.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnreachable, err)
	}
	return nil
}

// SendEvent publishes an event on the channel. Unlike the socket client
// there is no batching; Redis fans the message out immediately.
func (f *RedisFeed) SendEvent(event Event) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClientClosed
	}
	f.sequence++
	event.SequenceID = f.sequence
	f.mu.Unlock()

	if event.Source == "" {
		event.Source = f.source
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := sonic.ConfigStd.Marshal(Message{
		Version: ProtocolVersion,
		Type:    "event",
		Event:   &event,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := f.rdb.Publish(ctx, f.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Listen subscribes to the channel and returns events matching the current
// collection subscription. The channel closes when ctx is done or the feed
// is closed.
func (f *RedisFeed) Listen(ctx context.Context) (<-chan Event, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, ErrClientClosed
	}
	f.mu.Unlock()

	sub := f.rdb.Subscribe(ctx, f.channel)
	// Wait for the subscription confirmation so no event published after
	// Listen returns is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", f.channel, err)
	}

	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()

	out := make(chan Event, 10)
	go f.listenLoop(ctx, sub, out)
	return out, nil
}

func (f *RedisFeed) listenLoop(ctx context.Context, sub *redis.PubSub, out chan Event) {
	defer close(out)
	defer func() {
		if err := sub.Close(); err != nil {
			slog.Debug("error closing redis subscription", "error", err)
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var wire Message
			if err := sonic.ConfigStd.UnmarshalFromString(msg.Payload, &wire); err != nil {
				slog.Warn("unable to parse redis event", "error", err)
				continue
			}
			if wire.Type != "event" || wire.Event == nil {
				continue
			}

			f.mu.Lock()
			subscribed := f.collection
			f.mu.Unlock()
			if !Matches(subscribed, wire.Event.Collection) {
				continue
			}

			select {
			case out <- *wire.Event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Subscribe restricts delivered events to one collection, "" for all
func (f *RedisFeed) Subscribe(collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collection = collection
	return nil
}

// Close stops all listeners. The underlying Redis client is left open.
func (f *RedisFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var firstErr error
	for _, sub := range f.subs {
		if err := sub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.subs = nil
	return firstErr
}
