package app

import (
	"context"
	"log/slog"

	"github.com/thenoetrevino/tasks/internal/database"
	"github.com/thenoetrevino/tasks/internal/events"
)

// FeedFactory builds the change feed used when sync starts
type FeedFactory func(ctx context.Context) (events.EventPublisher, error)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	feedFactory FeedFactory
	logger      *slog.Logger
	store       *database.Store
	peerID      string
}

// WithEventPublisher makes every StartSync use ec instead of building a
// feed from the configuration. The session takes ownership of ec.
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.feedFactory = func(context.Context) (events.EventPublisher, error) {
			return ec, nil
		}
	}
}

// WithFeedFactory overrides how the change feed is built
func WithFeedFactory(factory FeedFactory) Option {
	return func(cfg *appConfig) {
		cfg.feedFactory = factory
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithStore uses an already opened store instead of opening the configured
// database. The session closes it on Close.
func WithStore(store *database.Store) Option {
	return func(cfg *appConfig) {
		cfg.store = store
	}
}

// WithPeerID overrides the id stamped on published events
func WithPeerID(peerID string) Option {
	return func(cfg *appConfig) {
		cfg.peerID = peerID
	}
}
