package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/thenoetrevino/tasks/internal/config"
	"github.com/thenoetrevino/tasks/internal/daemon"
	"github.com/thenoetrevino/tasks/internal/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (default $XDG_CONFIG_HOME/tasks/config.yaml)")
		socketPath = flag.String("socket", "", "unix socket to listen on (default from config sync.socket_path)")
		logLevel   = flag.String("log-level", "", "debug, info, warning or error (default from config log.level)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tasks-daemon [flags]\n\nRelays task change events between tasks processes.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *logLevel == "" {
		*logLevel = cfg.Log.Level
	}
	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		slog.Error("invalid log level", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *socketPath == "" {
		*socketPath = cfg.Sync.SocketPath
	}

	// Ensure the socket directory exists with secure permissions
	if err := os.MkdirAll(filepath.Dir(*socketPath), 0o700); err != nil {
		slog.Error("failed to create socket directory", "error", err)
		os.Exit(1)
	}

	// Create and start the daemon server
	server, err := daemon.NewServer(*socketPath)
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}

	slog.Info("tasks daemon starting", "socket_path", *socketPath, "pid", os.Getpid())

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}

	slog.Info("tasks daemon shutting down gracefully")
}
