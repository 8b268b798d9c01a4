package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/deskconsole/internal/journal"
	"github.com/roach88/deskconsole/internal/locale"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional; lists sessions when empty
}

// SessionTrace is one session with its journaled operations.
type SessionTrace struct {
	Session    journal.Session     `json:"session"`
	Operations []journal.Operation `json:"operations"`
	Stats      TraceStats          `json:"stats"`
}

// TraceStats summarizes a session's operations.
type TraceStats struct {
	Checkpoints      int `json:"checkpoints"`
	Rollbacks        int `json:"rollbacks"`
	IgnoredRollbacks int `json:"ignored_rollbacks"`
	FinalCursor      int `json:"final_cursor"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Read back a session journal",
		Long: `Read the operation journal written by "deskconsole run --journal".

Without --session, lists the recorded sessions. With --session, prints
that session's checkpoints and rollbacks in order, including rollbacks
that were ignored because they were out of range.

Examples:
  deskconsole trace --db ./console.db
  deskconsole trace --db ./console.db --session scenario-walkthrough
  deskconsole trace --db ./console.db --session scenario-walkthrough --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to trace")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	out := newFormatter(opts.RootOptions, cmd)
	p := newPrinter(opts.RootOptions)

	j, err := journal.Open(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err, map[string]string{"path": opts.Database})
	}
	defer j.Close()

	if opts.Session == "" {
		sessions, err := j.ListSessions(ctx)
		if err != nil {
			return out.Fail(ExitCommandError, ErrCodeJournal, "failed to list sessions", err, nil)
		}
		if sessions == nil {
			sessions = []journal.Session{}
		}
		return out.Result("", sessions, func(w io.Writer) { renderSessions(w, p, sessions) })
	}

	sess, err := j.GetSession(ctx, opts.Session)
	if errors.Is(err, journal.ErrSessionNotFound) {
		return out.Fail(ExitCommandError, ErrCodeJournal, "session not found", err, map[string]string{"session": opts.Session})
	}
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeJournal, "failed to read session", err, nil)
	}

	ops, err := j.ReadOperations(ctx, opts.Session)
	if err != nil {
		return out.Fail(ExitCommandError, ErrCodeJournal, "failed to read operations", err, nil)
	}

	trace := SessionTrace{
		Session:    sess,
		Operations: ops,
		Stats:      computeTraceStats(ops),
	}
	return out.Result(sess.ID, trace, func(w io.Writer) { renderTrace(w, p, trace) })
}

func computeTraceStats(ops []journal.Operation) TraceStats {
	stats := TraceStats{FinalCursor: -1}
	for _, op := range ops {
		switch op.Op {
		case journal.OpCheckpoint:
			stats.Checkpoints++
		case journal.OpRollback:
			stats.Rollbacks++
			if !op.Applied {
				stats.IgnoredRollbacks++
			}
		}
		stats.FinalCursor = op.CursorAfter
	}
	return stats
}

func renderSessions(w io.Writer, p *locale.Printer, sessions []journal.Session) {
	fmt.Fprintln(w, p.T(locale.KeySessions))
	if len(sessions) == 0 {
		fmt.Fprintf(w, "  %s\n", p.T(locale.KeyNoSessions))
		return
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "  %s  %s  %s\n", s.ID, formatDisplayTime(&s.StartedAt), formatDisplayTime(s.EndedAt))
	}
}

func renderTrace(w io.Writer, p *locale.Printer, t SessionTrace) {
	fmt.Fprintln(w, p.F(locale.KeySessionHeader,
		t.Session.ID, formatDisplayTime(&t.Session.StartedAt), formatDisplayTime(t.Session.EndedAt)))

	for _, op := range t.Operations {
		if op.Op == journal.OpCheckpoint {
			fmt.Fprintf(w, "  #%d %s %s %q  cursor %d -> %d  length %d\n",
				op.Seq, p.T(locale.KeyOpCheckpoint), op.CheckpointID, op.Description,
				op.CursorBefore, op.CursorAfter, op.LengthAfter)
			continue
		}
		state := p.T(locale.KeyApplied)
		if !op.Applied {
			state = p.T(locale.KeyIgnored)
		}
		fmt.Fprintf(w, "  #%d %s steps=%d  cursor %d -> %d  %s\n",
			op.Seq, p.T(locale.KeyOpRollback), op.Steps, op.CursorBefore, op.CursorAfter, state)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.F(locale.KeyTraceSummary,
		t.Stats.Checkpoints, t.Stats.Rollbacks, t.Stats.IgnoredRollbacks, t.Stats.FinalCursor))
}
