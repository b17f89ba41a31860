package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/tasks/internal/config"
	"github.com/thenoetrevino/tasks/internal/events"
)

// ErrSyncDisabled is returned by StartSync when the configured feed is "none"
var ErrSyncDisabled = errors.New("sync is disabled in the configuration")

// redisFeed owns the Redis client underneath the feed
type redisFeed struct {
	*events.RedisFeed
	rdb *redis.Client
}

func (f *redisFeed) Close() error {
	return errors.Join(f.RedisFeed.Close(), f.rdb.Close())
}

// NewFeed builds the change feed selected by cfg.Sync.Feed
func NewFeed(cfg config.SyncConfig, peerID string) (events.EventPublisher, error) {
	switch cfg.Feed {
	case config.FeedDaemon:
		return events.NewClient(cfg.SocketPath,
			events.WithSource(peerID),
			events.WithDebounce(cfg.Debounce.Duration()),
		)

	case config.FeedRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", events.ErrInvalidRedisURL, err)
		}
		rdb := redis.NewClient(opts)
		feed, err := events.NewRedisFeed(rdb, cfg.RedisChannel, peerID)
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
		return &redisFeed{RedisFeed: feed, rdb: rdb}, nil

	case config.FeedNone:
		return nil, ErrSyncDisabled

	default:
		return nil, fmt.Errorf("unknown sync feed %q", cfg.Feed)
	}
}

func (a *App) defaultFeedFactory(context.Context) (events.EventPublisher, error) {
	return NewFeed(a.cfg.Sync, a.peerID)
}
