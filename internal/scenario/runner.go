package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/deskconsole/internal/journal"
	"github.com/roach88/deskconsole/internal/session"
	"github.com/roach88/deskconsole/internal/settings"
	"github.com/roach88/deskconsole/internal/testutil"
)

// OpRejected marks a trace event for a save refused by validation. It never
// reaches the journal.
const OpRejected = "rejected"

// TraceEvent is the outcome of one step.
type TraceEvent struct {
	Step         int              `json:"step"`
	Seq          int64            `json:"seq"`
	Op           string           `json:"op"`
	CheckpointID string           `json:"checkpoint_id,omitempty"`
	Description  string           `json:"description,omitempty"`
	Values       *settings.Values `json:"values,omitempty"`
	Steps        int              `json:"steps,omitempty"`
	CursorBefore int              `json:"cursor_before"`
	CursorAfter  int              `json:"cursor_after"`
	Length       int              `json:"length"`
	Applied      bool             `json:"applied"`
	At           time.Time        `json:"at"`
}

// Result is the outcome of a run.
type Result struct {
	Pass   bool
	Errors []string
	Trace  []TraceEvent
	Final  session.Snapshot
}

// RunOptions configures Run. The zero value runs in memory without logs.
type RunOptions struct {
	// Recorder additionally journals the run's operations.
	Recorder session.Recorder

	// Logger receives session logs.
	Logger *slog.Logger
}

// Run executes a scenario in a fresh session with a deterministic clock and
// sequential checkpoint ids.
//
// Step expectations and assertion failures are reported in Result; the
// returned error is reserved for journal failures. The session is closed on
// every path once it has started, so a journal always gets its end time.
func Run(ctx context.Context, s *Scenario, opts RunOptions) (result *Result, err error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sessionID := s.SessionID
	if sessionID == "" {
		sessionID = "scenario-" + s.Name
	}

	clock := testutil.NewDeterministicClock()
	tr := &traceRecorder{next: opts.Recorder}
	sess, err := session.New(ctx, session.Options{
		ID:       sessionID,
		IDs:      testutil.NewSequenceGenerator("cp"),
		Now:      clock.Now,
		Recorder: tr,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("run scenario %q: %w", s.Name, err)
	}
	defer func() {
		if closeErr := sess.Close(ctx); closeErr != nil {
			result = nil
			err = errors.Join(err, fmt.Errorf("run scenario %q: %w", s.Name, closeErr))
		}
	}()

	result = &Result{}
	for i, step := range s.Steps {
		event, stepErr := runStep(ctx, sess, tr, step)
		if stepErr != nil {
			if !errors.Is(stepErr, settings.ErrInvalid) {
				return nil, fmt.Errorf("run scenario %q: steps[%d]: %w", s.Name, i, stepErr)
			}
			if !step.ExpectInvalid {
				result.Errors = append(result.Errors, fmt.Sprintf("steps[%d]: save rejected: %v", i, stepErr))
			}
		} else if step.ExpectInvalid {
			result.Errors = append(result.Errors, fmt.Sprintf("steps[%d]: expected save to be rejected", i))
		}
		event.Step = i + 1
		result.Trace = append(result.Trace, event)
	}

	result.Final = sess.Snapshot()
	result.Errors = append(result.Errors, evaluateAssertions(s.Assertions, result.Final)...)
	result.Pass = len(result.Errors) == 0
	return result, nil
}

// runStep applies one step. A settings.ErrInvalid error means the save was
// rejected and the returned event describes the rejection.
func runStep(ctx context.Context, sess *session.Session, tr *traceRecorder, step Step) (TraceEvent, error) {
	h := sess.Panel().History()

	switch {
	case step.Save != nil:
		values, err := settings.Decode(step.Save.Values)
		if err != nil {
			return TraceEvent{}, err
		}
		description := settings.SavedDescription
		if step.Save.Description != nil {
			description = *step.Save.Description
		}

		if _, err := sess.Checkpoint(ctx, description, values); err != nil {
			if errors.Is(err, settings.ErrInvalid) {
				return TraceEvent{
					Op:           OpRejected,
					Description:  description,
					Values:       &values,
					CursorBefore: h.Cursor(),
					CursorAfter:  h.Cursor(),
					Length:       h.Len(),
				}, err
			}
			return TraceEvent{}, err
		}
		event := eventFromOperation(tr.last())
		event.Values = &values
		return event, nil

	case step.Undo:
		if _, err := sess.Undo(ctx); err != nil {
			return TraceEvent{}, err
		}
	case step.Rollback != nil:
		if _, err := sess.Rollback(ctx, *step.Rollback); err != nil {
			return TraceEvent{}, err
		}
	case step.RollbackTo != nil:
		if _, err := sess.RollbackTo(ctx, *step.RollbackTo); err != nil {
			return TraceEvent{}, err
		}
	}
	return eventFromOperation(tr.last()), nil
}

func eventFromOperation(op journal.Operation) TraceEvent {
	return TraceEvent{
		Seq:          op.Seq,
		Op:           op.Op,
		CheckpointID: op.CheckpointID,
		Description:  op.Description,
		Steps:        op.Steps,
		CursorBefore: op.CursorBefore,
		CursorAfter:  op.CursorAfter,
		Length:       op.LengthAfter,
		Applied:      op.Applied,
		At:           op.RecordedAt,
	}
}

// traceRecorder keeps every operation of a run and forwards to next.
type traceRecorder struct {
	next session.Recorder
	ops  []journal.Operation
}

func (r *traceRecorder) WriteSession(ctx context.Context, s journal.Session) error {
	if r.next == nil {
		return nil
	}
	return r.next.WriteSession(ctx, s)
}

func (r *traceRecorder) WriteOperation(ctx context.Context, op journal.Operation) error {
	r.ops = append(r.ops, op)
	if r.next == nil {
		return nil
	}
	return r.next.WriteOperation(ctx, op)
}

func (r *traceRecorder) EndSession(ctx context.Context, id string, at time.Time) error {
	if r.next == nil {
		return nil
	}
	return r.next.EndSession(ctx, id, at)
}

func (r *traceRecorder) last() journal.Operation {
	return r.ops[len(r.ops)-1]
}
