package events

import "context"

// EventPublisher defines the interface for sending and receiving change events.
// The unix-socket daemon client and the Redis feed both implement it, so the
// rest of the application does not care which transport carries events.
type EventPublisher interface {
	// Connect establishes a connection to the transport
	Connect(ctx context.Context) error

	// SendEvent queues an event for delivery to other peers
	SendEvent(event Event) error

	// Listen starts listening for events from other peers
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe changes the subscription to a specific collection
	Subscribe(collection string) error

	// Close closes the connection and stops all goroutines
	Close() error
}

// Compile-time verification that the transports implement EventPublisher
var (
	_ EventPublisher = (*Client)(nil)
	_ EventPublisher = (*RedisFeed)(nil)
	_ EventPublisher = (*Relay)(nil)
)
