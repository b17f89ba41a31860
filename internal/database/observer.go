package database

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// ObserverHandler receives the full result set of an observed query
type ObserverHandler func(items []Document)

// StoreObserver is a live query. After registration it re-runs its statement
// whenever the store reports a change and delivers the new result set when it
// differs from the previous one.
//
// Deliveries for one observer run on a single goroutine and never overlap.
type StoreObserver struct {
	store     *Store
	statement string
	params    map[string]any
	handler   ObserverHandler

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	mu        sync.Mutex
	entered   *sync.Cond
	cancelled bool
	entering  bool
	last      []Document

	// beforeDeliver runs between committing to a delivery and calling the
	// handler. Tests use it to hold a delivery in that window.
	beforeDeliver func()
}

// RegisterObserver registers a live query. The current result set is taken as
// the baseline and is not delivered; handler is first called after a change.
func (s *Store) RegisterObserver(ctx context.Context, statement string, params map[string]any, handler ObserverHandler) (*StoreObserver, error) {
	if handler == nil {
		return nil, fmt.Errorf("observer handler must not be nil")
	}

	baseline, err := s.Execute(ctx, statement, params)
	if err != nil {
		return nil, fmt.Errorf("failed to run observed query: %w", err)
	}

	o := &StoreObserver{
		store:     s,
		statement: statement,
		params:    params,
		handler:   handler,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		last:      baseline.Items,
	}
	o.entered = sync.NewCond(&o.mu)

	if err := s.register(o); err != nil {
		return nil, err
	}

	go o.run()

	return o, nil
}

// Cancel stops future deliveries. Once Cancel returns no new delivery begins;
// a delivery whose handler is already running is allowed to finish. Cancel
// waits only for a committed delivery to reach its handler, never for the
// handler itself, so a handler may cancel its own observer. Calling Cancel
// more than once is a no-op.
func (o *StoreObserver) Cancel() {
	o.mu.Lock()
	if o.cancelled {
		o.mu.Unlock()
		return
	}
	o.cancelled = true
	for o.entering {
		o.entered.Wait()
	}
	o.mu.Unlock()

	o.store.deregister(o)
	close(o.stop)
}

// Cancelled reports whether Cancel has been called
func (o *StoreObserver) Cancelled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled
}

// Done is closed when the observer goroutine has exited
func (o *StoreObserver) Done() <-chan struct{} {
	return o.done
}

// wakeUp schedules a re-query. Pending wakes coalesce into one.
func (o *StoreObserver) wakeUp() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *StoreObserver) run() {
	defer close(o.done)

	for {
		select {
		case <-o.stop:
			return
		case <-o.wake:
			o.refresh()
		}
	}
}

func (o *StoreObserver) refresh() {
	if o.Cancelled() {
		return
	}

	result, err := o.store.Execute(context.Background(), o.statement, o.params)
	if err != nil {
		slog.Error("observer query failed", "error", err)
		return
	}

	o.mu.Lock()
	if o.cancelled {
		o.mu.Unlock()
		return
	}
	if reflect.DeepEqual(result.Items, o.last) {
		o.mu.Unlock()
		return
	}
	o.last = result.Items
	o.entering = true
	o.mu.Unlock()

	o.deliver(result.Items)
}

func (o *StoreObserver) deliver(items []Document) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("observer handler panicked", "panic", r)
		}
	}()

	o.enter()
	o.handler(items)
}

// enter marks the committed delivery as having reached its handler
func (o *StoreObserver) enter() {
	defer func() {
		o.mu.Lock()
		o.entering = false
		o.entered.Broadcast()
		o.mu.Unlock()
	}()

	if o.beforeDeliver != nil {
		o.beforeDeliver()
	}
}
