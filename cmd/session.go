package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasks/internal/app"
	"github.com/thenoetrevino/tasks/internal/cli"
	"github.com/thenoetrevino/tasks/internal/cli/styles"
	"github.com/thenoetrevino/tasks/internal/config"
	"github.com/thenoetrevino/tasks/internal/events"
	"github.com/thenoetrevino/tasks/internal/logging"
	"github.com/thenoetrevino/tasks/internal/tui/theme"
)

// syncConnectTimeout bounds how long startup waits for the change feed
const syncConnectTimeout = 2 * time.Second

// globalFlags are shared by the root command and its subcommands
type globalFlags struct {
	configPath string
	dataDir    string
	logPath    string
	noSync     bool

	logError   bool
	logWarning bool
	logInfo    bool
	logDebug   bool
	logVerbose bool
}

func (g *globalFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tasks/config.yaml)")
	flags.StringVar(&g.dataDir, "data-dir", "", "directory holding the database, socket and logs")
	flags.StringVar(&g.logPath, "log", "", "log file (default <data-dir>/logs/tasks.log)")
	flags.BoolVar(&g.noSync, "no-sync", false, "do not connect to the change feed")
	flags.BoolVar(&g.logError, "error", false, "log errors only")
	flags.BoolVar(&g.logWarning, "warning", false, "log warnings and errors")
	flags.BoolVar(&g.logInfo, "info", false, "log informational messages")
	flags.BoolVar(&g.logDebug, "debug", false, "log debug messages")
	flags.BoolVar(&g.logVerbose, "verbose", false, "same as --debug")
}

// logLevel picks the most verbose level flag given, falling back to the
// configured level
func (g *globalFlags) logLevel(configured string) string {
	switch {
	case g.logDebug || g.logVerbose:
		return "debug"
	case g.logInfo:
		return "info"
	case g.logWarning:
		return "warning"
	case g.logError:
		return "error"
	default:
		return configured
	}
}

// session is an initialized app plus the resources opened around it
type session struct {
	app     *app.App
	cfg     *config.Config
	logFile io.Closer
}

// openSession loads configuration, sets up logging and styles, opens the
// store, seeds the demo tasks and starts sync when configured to
func openSession(ctx context.Context, g *globalFlags, out *cli.OutputFormatter) (*session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.dataDir != "" {
		cfg.SetDataDir(g.dataDir)
	}
	if g.logPath != "" {
		cfg.Log.File = g.logPath
	}

	level, err := logging.ParseLevel(g.logLevel(cfg.Log.Level))
	if err != nil {
		return nil, err
	}
	logFile, err := logging.Init(logging.Options{Level: level, Path: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	styles.Init(cfg.ColorScheme)
	theme.Init(cfg.ColorScheme)

	a := app.New(cfg, app.WithLogger(logging.Logger))
	if err := a.Init(ctx); err != nil {
		_ = logFile.Close()
		return nil, err
	}

	sess := &session{app: a, cfg: cfg, logFile: logFile}

	tasks, err := a.Tasks()
	if err != nil {
		sess.Close()
		return nil, err
	}
	if err := tasks.InsertInitialTasks(ctx); err != nil {
		sess.Close()
		return nil, fmt.Errorf("insert initial tasks: %w", err)
	}

	if cfg.Sync.AutoStart && !g.noSync && cfg.Sync.Feed != config.FeedNone {
		sess.startSync(ctx, out)
	}

	return sess, nil
}

// startSync connects the change feed. Failure leaves the session usable
// without sync and is reported as a warning.
func (s *session) startSync(ctx context.Context, out *cli.OutputFormatter) {
	connectCtx, cancel := context.WithTimeout(ctx, syncConnectTimeout)
	defer cancel()

	err := s.app.StartSync(connectCtx)
	if err == nil {
		return
	}

	slog.Warn("sync unavailable", "feed", s.cfg.Sync.Feed, "error", err)
	if out == nil || out.Quiet || out.JSON {
		return
	}

	fmt.Fprintf(out.Err, "warning: sync unavailable: %s\n", events.ClassifyFeedError(err))
}

// Close stops sync, closes the store and releases the log file
func (s *session) Close() {
	err := errors.Join(s.app.Close(), s.logFile.Close())
	if err != nil {
		slog.Error("failed to close session", "error", err)
	}
}
