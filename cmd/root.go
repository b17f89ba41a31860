package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasks/internal/cli"
	"github.com/thenoetrevino/tasks/internal/launcher"
)

// ExitError carries a process exit code out of a command
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewRootCmd builds the tasks command with its subcommands
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	var (
		opts    cli.Options
		tuiMode bool
	)

	rootCmd := &cobra.Command{
		Use:   "tasks",
		Short: "tasks - A local task list with a TUI, CLI and HTTP API",
		Long: `tasks keeps a list of tasks in a local document store.

Run without command flags to open the TUI. Command flags may be repeated and
run as one batch: add, complete, incomplete, toggle, title, delete, cleanup,
query, list, monitor. A failing item is reported and the batch continues.

Task ids on the command line are matched by substring and must be at least
5 characters long.`,
		Example: `  tasks --add "Buy milk" --add "Walk dog" --list
  tasks --complete 3f2a9 --list
  tasks --title 3f2a9,"Buy oat milk"
  tasks --list-all --json
  tasks --monitor`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tuiMode && opts.HasCommands() {
				return cmd.Help()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := &cli.OutputFormatter{
				JSON:  opts.JSON,
				Quiet: opts.Quiet,
				Out:   cmd.OutOrStdout(),
				Err:   cmd.ErrOrStderr(),
			}

			sess, err := openSession(ctx, g, out)
			if err != nil {
				return err
			}
			defer sess.Close()

			if !opts.HasCommands() {
				return launcher.Launch(ctx, sess.app)
			}

			tasks, err := sess.app.Tasks()
			if err != nil {
				return err
			}

			if code := cli.NewRunner(tasks, out).Run(ctx, opts); code != cli.ExitSuccess {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	g.register(rootCmd)

	flags := rootCmd.Flags()
	flags.StringArrayVar(&opts.Add, "add", nil, "add a task with the given TITLE")
	flags.StringArrayVar(&opts.Complete, "complete", nil, "mark TASK_ID complete")
	flags.StringArrayVar(&opts.Incomplete, "incomplete", nil, "mark TASK_ID incomplete")
	flags.StringArrayVar(&opts.Toggle, "toggle", nil, "toggle completion of TASK_ID")
	flags.StringArrayVar(&opts.Title, "title", nil, "change a title, given as TASK_ID,TITLE")
	flags.StringArrayVar(&opts.Delete, "delete", nil, "soft delete TASK_ID")
	flags.StringArrayVar(&opts.Query, "query", nil, "run a raw statement and print the result as JSON")
	flags.BoolVar(&opts.List, "list", false, "list tasks")
	flags.BoolVar(&opts.ListAll, "list-all", false, "list tasks including deleted ones")
	flags.BoolVar(&opts.Monitor, "monitor", false, "print the task list on every change until interrupted")
	flags.BoolVar(&opts.Cleanup, "cleanup", false, "evict deleted tasks")
	flags.BoolVar(&tuiMode, "tui", false, "open the terminal UI")
	flags.BoolVar(&opts.JSON, "json", false, "write machine readable JSON")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "print ids only")
	flags.BoolVar(&opts.Markdown, "markdown", false, "render lists as a markdown checklist")
	rootCmd.MarkFlagsMutuallyExclusive("json", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("json", "markdown")

	rootCmd.AddCommand(newServeCmd(g))

	return rootCmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	rootCmd := NewRootCmd()
	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return cli.ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	fmt.Fprintf(rootCmd.ErrOrStderr(), "error: %v\n", err)
	return cli.ExitError
}
