package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/tasks/internal/cli"
	"github.com/thenoetrevino/tasks/internal/httpapi"
)

// shutdownTimeout bounds how long in-flight requests get on shutdown
const shutdownTimeout = 5 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task list over HTTP",
		Long: `Serve the task list over HTTP until interrupted.

GET /tasks/stream sends the task list as server-sent events whenever it
changes, including changes made by other peers while sync is active.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := &cli.OutputFormatter{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
			sess, err := openSession(ctx, g, out)
			if err != nil {
				return err
			}
			defer sess.Close()

			if addr == "" {
				addr = sess.cfg.Server.Addr
			}

			tasks, err := sess.app.Tasks()
			if err != nil {
				return err
			}
			e := httpapi.NewServer(tasks, sess.app)

			out.Println(fmt.Sprintf("Serving tasks on http://%s", addr))
			return serve(ctx, e, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")
	return cmd
}

type httpServer interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// serve runs the server until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, srv httpServer, addr string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server starting", "addr", addr)
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
