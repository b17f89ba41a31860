package events

import (
	"context"
	"fmt"
	"sync"
)

// Relay is an EventPublisher whose underlying transport can be swapped at
// runtime. The task service publishes through a relay so sync can be started
// and stopped without rebuilding the service.
type Relay struct {
	mu     sync.RWMutex
	target EventPublisher
}

// NewRelay creates a relay with no target
func NewRelay() *Relay {
	return &Relay{}
}

// SetTarget replaces the transport and returns the previous one.
// Passing nil detaches the relay.
func (r *Relay) SetTarget(target EventPublisher) EventPublisher {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.target
	r.target = target
	return prev
}

// Target returns the current transport, or nil when detached
func (r *Relay) Target() EventPublisher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.target
}

// Connect connects the current target
func (r *Relay) Connect(ctx context.Context) error {
	target := r.Target()
	if target == nil {
		return ErrNotConnected
	}
	return target.Connect(ctx)
}

// SendEvent forwards to the current target. Events sent while detached are
// dropped without error.
func (r *Relay) SendEvent(event Event) error {
	target := r.Target()
	if target == nil {
		return nil
	}
	return target.SendEvent(event)
}

// Listen listens on the current target
func (r *Relay) Listen(ctx context.Context) (<-chan Event, error) {
	target := r.Target()
	if target == nil {
		return nil, fmt.Errorf("relay has no target: %w", ErrNotConnected)
	}
	return target.Listen(ctx)
}

// Subscribe forwards the subscription to the current target
func (r *Relay) Subscribe(collection string) error {
	target := r.Target()
	if target == nil {
		return ErrNotConnected
	}
	return target.Subscribe(collection)
}

// Close detaches and closes the current target
func (r *Relay) Close() error {
	prev := r.SetTarget(nil)
	if prev == nil {
		return nil
	}
	return prev.Close()
}
