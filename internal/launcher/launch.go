package launcher

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/tasks/internal/app"
	"github.com/thenoetrevino/tasks/internal/tui"
)

// Launch runs the TUI over an initialized session until the user quits or
// ctx is cancelled
func Launch(ctx context.Context, session *app.App, opts ...tea.ProgramOption) error {
	tasks, err := session.Tasks()
	if err != nil {
		return fmt.Errorf("session not ready: %w", err)
	}

	model, err := tui.New(ctx, tasks, session, session.Config())
	if err != nil {
		return err
	}
	defer model.Close()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(model, opts...)

	// goroutine to monitor cancellation
	errChan := make(chan error, 1)
	go func() {
		_, err := p.Run()
		errChan <- err
	}()

	select {
	case err := <-errChan:
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("error running program: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, cleaning up")
		p.Kill()
		<-errChan
	}

	return nil
}
