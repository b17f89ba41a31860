package events

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		subscribed string
		collection string
		want       bool
	}{
		{"", "", true},
		{"", "tasks", true},
		{"tasks", "", true},
		{"tasks", "tasks", true},
		{"tasks", "notes", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q/%q", tt.subscribed, tt.collection), func(t *testing.T) {
			if got := Matches(tt.subscribed, tt.collection); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.subscribed, tt.collection, got, tt.want)
			}
		})
	}
}

func TestClassifyFeedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     ErrorCode
		wantHint bool
	}{
		{"missing socket", fmt.Errorf("%w: %w", ErrDaemonUnreachable, os.ErrNotExist), ErrSocketNotFound, true},
		{"permission", fmt.Errorf("%w: %w", ErrDaemonUnreachable, os.ErrPermission), ErrSocketPermission, true},
		{"daemon refused", fmt.Errorf("%w: %w", ErrDaemonUnreachable, syscall.ECONNREFUSED), ErrConnectionRefused, true},
		{"daemon other", fmt.Errorf("%w: boom", ErrDaemonUnreachable), ErrDaemonNotRunning, true},
		{"redis refused", fmt.Errorf("%w: %w", ErrRedisUnreachable, syscall.ECONNREFUSED), ErrRedisRefused, true},
		{"redis other", fmt.Errorf("%w: i/o timeout", ErrRedisUnreachable), ErrRedisUnavailable, true},
		{"redis url", fmt.Errorf("%w: invalid scheme", ErrInvalidRedisURL), ErrRedisConfig, true},
		{"closed", fmt.Errorf("send: %w", ErrClientClosed), ErrFeedClosed, true},
		{"unrelated", errors.New("sync is disabled"), ErrFeedFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFeedError(tt.err)
			if got.Code != tt.want {
				t.Errorf("Expected code %v, got %v", tt.want, got.Code)
			}
			if (got.Hint != "") != tt.wantHint {
				t.Errorf("Unexpected hint %q", got.Hint)
			}
			if !errors.Is(got, tt.err) {
				t.Error("Expected the classified error to unwrap to the original")
			}
		})
	}

	if got := ClassifyFeedError(errors.New("sync is disabled")); got.Error() != "sync is disabled" {
		t.Errorf("Expected unrelated errors to keep their message, got %q", got.Error())
	}
	if ClassifyFeedError(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}
