package events

import (
	"context"
	"errors"
	"testing"
)

func TestRelay_DetachedDropsEvents(t *testing.T) {
	r := NewRelay()

	if err := r.SendEvent(Event{Type: EventDatabaseChanged}); err != nil {
		t.Errorf("Expected detached send to succeed silently, got %v", err)
	}
	if err := r.Connect(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
	if _, err := r.Listen(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Expected Close on detached relay to succeed, got %v", err)
	}
}

func TestRelay_ForwardsToTarget(t *testing.T) {
	r := NewRelay()
	target := &mockRetryPublisher{}

	if prev := r.SetTarget(target); prev != nil {
		t.Errorf("Expected no previous target, got %v", prev)
	}

	event := Event{Type: EventDatabaseChanged, Collection: "tasks", DocumentID: "a"}
	if err := r.SendEvent(event); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}
	if target.sendAttempts != 1 || target.lastEvent.DocumentID != "a" {
		t.Errorf("Expected event forwarded once, got %d attempts, last %+v", target.sendAttempts, target.lastEvent)
	}
	if err := r.Subscribe("tasks"); err != nil {
		t.Errorf("Subscribe failed: %v", err)
	}
	if target.subscribed != "tasks" {
		t.Errorf("Expected subscription forwarded, got %q", target.subscribed)
	}
}

func TestRelay_CloseDetachesAndClosesTarget(t *testing.T) {
	r := NewRelay()
	target := &mockRetryPublisher{}
	r.SetTarget(target)

	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !target.closed {
		t.Error("Expected target to be closed")
	}
	if r.Target() != nil {
		t.Error("Expected relay to be detached after Close")
	}
}

func TestRelay_RetryPolicyReachesTarget(t *testing.T) {
	r := NewRelay()
	target := &mockRetryPublisher{failUntil: 1}
	r.SetTarget(target)

	if err := r.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !target.connected {
		t.Error("Expected connect forwarded to target")
	}

	event := Event{Type: EventDatabaseChanged, Collection: "tasks", DocumentID: "b"}
	if err := fastRetry.Publish(context.Background(), r, event); err != nil {
		t.Fatalf("Expected publish to succeed after one failure, got %v", err)
	}
	if target.sendAttempts != 2 {
		t.Errorf("Expected 2 send attempts, got %d", target.sendAttempts)
	}
	if target.lastEvent.DocumentID != "b" {
		t.Errorf("Unexpected last event: %+v", target.lastEvent)
	}
}
