package events

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RetryPolicy retries failed sends with exponential backoff
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy makes three attempts, 50ms then 100ms apart
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 50 * time.Millisecond}

// Publish sends event through pub. A nil publisher is a no-op. Sends that
// fail because the transport is closed or not connected are not retried,
// and ctx cancellation stops the backoff. The last error is returned and
// logged; live updates are best effort so callers usually ignore it.
func (p RetryPolicy) Publish(ctx context.Context, pub EventPublisher, event Event) error {
	if pub == nil {
		return nil
	}

	attempts := max(p.Attempts, 1)
	delay := p.BaseDelay

	var (
		err  error
		made int
	)
retry:
	for made < attempts {
		made++
		if err = pub.SendEvent(event); err == nil {
			if made > 1 {
				slog.Debug("event published after retry", "attempt", made, "collection", event.Collection)
			}
			return nil
		}
		if made == attempts || permanent(err) {
			break
		}

		slog.Debug("event publish failed, retrying", "attempt", made, "retry_delay", delay, "error", err)
		select {
		case <-ctx.Done():
			err = errors.Join(err, ctx.Err())
			break retry
		case <-time.After(delay):
			delay *= 2
		}
	}

	slog.Warn("event publish failed",
		"attempts", made,
		"event_type", event.Type,
		"collection", event.Collection,
		"error", err)
	return err
}

func permanent(err error) bool {
	return errors.Is(err, ErrNotConnected) || errors.Is(err, ErrClientClosed)
}
