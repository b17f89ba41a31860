package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// Options selects where logs go and how verbose they are
type Options struct {
	Level slog.Level
	Path  string // Log file; empty discards output
}

// ParseLevel maps a level name from config or flags to a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "verbose":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Init initializes the logging system, appending text records to opts.Path.
// The returned closer releases the log file.
func Init(opts Options) (io.Closer, error) {
	var (
		out    io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, err
		}

		// Open log file in append mode
		file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out, closer = file, file
	}

	// Create text handler (human readable)
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: opts.Level,
	})

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	// Redirect standard log package output to the same file
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
