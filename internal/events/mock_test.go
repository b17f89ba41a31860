package events

import (
	"context"
	"errors"
	"sync"
)

// mockRetryPublisher is a mock EventPublisher that records what it is asked
// to do. Sends fail until failUntil attempts have been made.
type mockRetryPublisher struct {
	mu sync.Mutex

	sendAttempts int
	failUntil    int
	lastEvent    Event
	subscribed   string
	connected    bool
	closed       bool
}

func (m *mockRetryPublisher) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *mockRetryPublisher) SendEvent(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastEvent = event
	attempt := m.sendAttempts
	m.sendAttempts++
	if attempt < m.failUntil {
		return errors.New("simulated send failure")
	}
	return nil
}

func (m *mockRetryPublisher) Listen(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event)
	close(ch)
	return ch, nil
}

func (m *mockRetryPublisher) Subscribe(collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = collection
	return nil
}

func (m *mockRetryPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ EventPublisher = (*mockRetryPublisher)(nil)
