package events

import (
	"errors"
	"os"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
)

// ErrorCode identifies why a change feed could not be used
type ErrorCode int

const (
	ErrFeedFailed ErrorCode = iota
	ErrFeedClosed
	ErrSocketNotFound
	ErrSocketPermission
	ErrDaemonNotRunning
	ErrConnectionRefused
	ErrRedisRefused
	ErrRedisAuth
	ErrRedisUnavailable
	ErrRedisConfig
)

// Transport errors that retrying cannot fix
var (
	ErrNotConnected = errors.New("not connected to change feed")
	ErrClientClosed = errors.New("client is closed")
)

// Connection failures, wrapped around the transport's own error
var (
	ErrDaemonUnreachable = errors.New("cannot reach tasks daemon")
	ErrRedisUnreachable  = errors.New("cannot reach redis")
	ErrInvalidRedisURL   = errors.New("invalid redis url")
)

// FeedError is a change feed failure with a hint for the user
type FeedError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Err     error
}

// Error implements the error interface.
func (e *FeedError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

// Unwrap returns the classified error
func (e *FeedError) Unwrap() error {
	return e.Err
}

// ClassifyFeedError maps a sync failure to a FeedError. Errors that did not
// come from a feed transport keep their own message and get no hint.
func ClassifyFeedError(err error) *FeedError {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrClientClosed):
		return &FeedError{
			Code:    ErrFeedClosed,
			Message: "Change feed is closed",
			Hint:    "Toggle sync off and on again",
			Err:     err,
		}
	case errors.Is(err, ErrInvalidRedisURL):
		return &FeedError{
			Code:    ErrRedisConfig,
			Message: "Invalid Redis URL",
			Hint:    "Fix sync.redis_url or TASKS_SYNC_REDIS_URL, e.g. redis://localhost:6379/0",
			Err:     err,
		}
	case errors.Is(err, ErrRedisUnreachable):
		return classifyRedis(err)
	case errors.Is(err, ErrDaemonUnreachable):
		return classifyDaemon(err)
	}

	return &FeedError{Code: ErrFeedFailed, Message: err.Error(), Err: err}
}

func classifyDaemon(err error) *FeedError {
	if errors.Is(err, os.ErrNotExist) {
		return &FeedError{
			Code:    ErrSocketNotFound,
			Message: "Socket file not found",
			Hint:    "Start the daemon: tasks-daemon &",
			Err:     err,
		}
	}

	if errors.Is(err, os.ErrPermission) {
		return &FeedError{
			Code:    ErrSocketPermission,
			Message: "Permission denied",
			Hint:    "Check ~/.tasks/ permissions: chmod 700 ~/.tasks/",
			Err:     err,
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &FeedError{
			Code:    ErrConnectionRefused,
			Message: "Connection refused",
			Hint:    "Daemon may have crashed. Remove the stale socket and restart tasks-daemon",
			Err:     err,
		}
	}

	return &FeedError{
		Code:    ErrDaemonNotRunning,
		Message: "Daemon not running",
		Hint:    "Start the daemon: tasks-daemon &",
		Err:     err,
	}
}

func classifyRedis(err error) *FeedError {
	var rerr redis.Error
	if errors.As(err, &rerr) {
		msg := rerr.Error()
		if strings.HasPrefix(msg, "NOAUTH") || strings.HasPrefix(msg, "WRONGPASS") {
			return &FeedError{
				Code:    ErrRedisAuth,
				Message: "Redis rejected the credentials",
				Hint:    "Set the password in sync.redis_url: redis://:PASSWORD@host:6379/0",
				Err:     err,
			}
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &FeedError{
			Code:    ErrRedisRefused,
			Message: "Redis refused the connection",
			Hint:    "Start redis-server or point sync.redis_url at a running server",
			Err:     err,
		}
	}

	return &FeedError{
		Code:    ErrRedisUnavailable,
		Message: "Redis is unavailable",
		Hint:    "Check sync.redis_url and that the server is reachable",
		Err:     err,
	}
}
