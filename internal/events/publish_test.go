package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedPublisher fails SendEvent with errs in order, then succeeds
type scriptedPublisher struct {
	errs      []error
	attempts  int
	lastEvent Event
}

func (p *scriptedPublisher) SendEvent(event Event) error {
	p.lastEvent = event
	p.attempts++
	if len(p.errs) == 0 {
		return nil
	}
	err := p.errs[0]
	p.errs = p.errs[1:]
	return err
}

func (p *scriptedPublisher) Connect(context.Context) error                { return nil }
func (p *scriptedPublisher) Listen(context.Context) (<-chan Event, error) { return nil, nil }
func (p *scriptedPublisher) Subscribe(string) error                       { return nil }
func (p *scriptedPublisher) Close() error                                 { return nil }

var errFlaky = errors.New("event queue full")

var fastRetry = RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}

func TestRetryPolicy_FirstAttempt(t *testing.T) {
	pub := &scriptedPublisher{}

	if err := fastRetry.Publish(context.Background(), pub, Event{Collection: "tasks"}); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if pub.attempts != 1 || pub.lastEvent.Collection != "tasks" {
		t.Errorf("Unexpected publish: attempts=%d event=%+v", pub.attempts, pub.lastEvent)
	}
}

func TestRetryPolicy_RecoversAfterFailures(t *testing.T) {
	pub := &scriptedPublisher{errs: []error{errFlaky, errFlaky}}

	if err := fastRetry.Publish(context.Background(), pub, Event{}); err != nil {
		t.Fatalf("Expected success on third attempt, got %v", err)
	}
	if pub.attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", pub.attempts)
	}
}

func TestRetryPolicy_GivesUp(t *testing.T) {
	pub := &scriptedPublisher{errs: []error{errFlaky, errFlaky, errFlaky, errFlaky}}

	err := fastRetry.Publish(context.Background(), pub, Event{})
	if !errors.Is(err, errFlaky) {
		t.Fatalf("Expected the last send error, got %v", err)
	}
	if pub.attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", pub.attempts)
	}
}

func TestRetryPolicy_PermanentErrorsStopImmediately(t *testing.T) {
	for _, sendErr := range []error{ErrNotConnected, ErrClientClosed} {
		pub := &scriptedPublisher{errs: []error{sendErr, sendErr}}

		err := fastRetry.Publish(context.Background(), pub, Event{})
		if !errors.Is(err, sendErr) {
			t.Errorf("Expected %v, got %v", sendErr, err)
		}
		if pub.attempts != 1 {
			t.Errorf("%v: expected 1 attempt, got %d", sendErr, pub.attempts)
		}
	}
}

func TestRetryPolicy_ContextCancelStopsBackoff(t *testing.T) {
	pub := &scriptedPublisher{errs: []error{errFlaky, errFlaky, errFlaky}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := RetryPolicy{Attempts: 3, BaseDelay: time.Hour}
	err := slow.Publish(ctx, pub, Event{})
	if !errors.Is(err, context.Canceled) || !errors.Is(err, errFlaky) {
		t.Fatalf("Expected send and context errors, got %v", err)
	}
	if pub.attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", pub.attempts)
	}
}

func TestRetryPolicy_NilPublisher(t *testing.T) {
	if err := DefaultRetryPolicy.Publish(context.Background(), nil, Event{}); err != nil {
		t.Errorf("Expected nil publisher to be skipped, got %v", err)
	}
}
