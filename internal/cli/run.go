package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/deskconsole/internal/journal"
	"github.com/roach88/deskconsole/internal/scenario"
	"github.com/roach88/deskconsole/internal/session"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// Journal is an optional SQLite path that receives the session's operations.
	Journal string

	// Session overrides the scenario's session id.
	Session string
}

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	Scenario string           `json:"scenario"`
	Pass     bool             `json:"pass"`
	Errors   []string         `json:"errors,omitempty"`
	History  session.Snapshot `json:"history"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run one settings session scenario",
		Long: `Run a scripted settings session and print the resulting checkpoint history.

Each save becomes a checkpoint; undo, rollback and rollback_to move the
history cursor. With --journal, every operation is also appended to a
SQLite journal that "deskconsole trace" can read back. A session id is
journaled once; pass --session to record a re-run under a new id.

Examples:
  deskconsole run ./scenarios/walkthrough.yaml
  deskconsole run ./scenarios/walkthrough.yaml --journal ./console.db
  deskconsole run ./scenarios/walkthrough.yaml --journal ./console.db --session walkthrough-2
  deskconsole run ./scenarios/walkthrough.yaml --locale en-US --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (optional)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (default scenario-<name>)")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	out := newFormatter(opts.RootOptions, cmd)

	s, err := scenario.Load(path)
	if err != nil {
		code := ErrCodeGeneric
		if errors.Is(err, scenario.ErrInvalidScenario) {
			code = ErrCodeInvalidScenario
		}
		return out.Fail(ExitCommandError, code, "failed to load scenario", err, map[string]string{"path": path})
	}
	if opts.Session != "" {
		s.SessionID = opts.Session
	}

	runOpts := scenario.RunOptions{Logger: logger}
	if opts.Journal != "" {
		logger.Debug("opening journal", "path", opts.Journal)
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err, map[string]string{"path": opts.Journal})
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		runOpts.Recorder = j
	}

	result, err := scenario.Run(commandContext(cmd), s, runOpts)
	switch {
	case errors.Is(err, journal.ErrSessionExists):
		return out.Fail(ExitCommandError, ErrCodeSessionExists,
			"session already in journal (use --session to record a new run)", err,
			map[string]string{"journal": opts.Journal})
	case err != nil:
		return out.Fail(ExitCommandError, ErrCodeJournal, "failed to run scenario", err, nil)
	}
	logger.Info("scenario finished", slog.String("scenario", s.Name), slog.Bool("pass", result.Pass))

	payload := RunOutput{
		Scenario: s.Name,
		Pass:     result.Pass,
		Errors:   result.Errors,
		History:  result.Final,
	}
	if err := out.Result(result.Final.SessionID, payload, func(w io.Writer) {
		renderSnapshot(w, newPrinter(opts.RootOptions), result.Final)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n", e)
		}
	}); err != nil {
		return err
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %q failed with %d error(s)", s.Name, len(result.Errors)))
	}
	return nil
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
