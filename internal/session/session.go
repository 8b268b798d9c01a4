// Package session provides the handle that owns one console session's
// settings panel and checkpoint history.
//
// A Session is created when an operator session starts and discarded when it
// ends; its history is never persisted. It is handed explicitly to the
// components that need it. A Session is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/deskconsole/internal/history"
	"github.com/roach88/deskconsole/internal/journal"
	"github.com/roach88/deskconsole/internal/settings"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Recorder receives every operation applied to a session.
// *journal.Journal implements it.
type Recorder interface {
	WriteSession(ctx context.Context, s journal.Session) error
	WriteOperation(ctx context.Context, op journal.Operation) error
	EndSession(ctx context.Context, id string, at time.Time) error
}

// Options configures a Session. The zero value is usable.
type Options struct {
	// ID overrides the generated session id.
	ID string

	// IDs generates checkpoint ids (default history.UUIDv7Generator).
	IDs history.IDGenerator

	// Now is the wall clock (default time.Now).
	Now func() time.Time

	// Recorder journals operations when set.
	Recorder Recorder

	// Logger receives operation logs (default discards).
	Logger *slog.Logger
}

// Session owns the settings panel of one operator session.
type Session struct {
	id        string
	startedAt time.Time
	panel     *settings.Panel
	clock     *Clock
	now       func() time.Time
	recorder  Recorder
	logger    *slog.Logger
	closed    bool
}

// New starts a session. When a Recorder is configured the session start is
// journaled before New returns.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IDs == nil {
		opts.IDs = history.UUIDv7Generator{}
	}
	if opts.ID == "" {
		opts.ID = history.UUIDv7Generator{}.Generate()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	panel, err := settings.NewPanel(
		history.WithIDGenerator(opts.IDs),
		history.WithClock(opts.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	s := &Session{
		id:        opts.ID,
		startedAt: opts.Now(),
		panel:     panel,
		clock:     NewClock(),
		now:       opts.Now,
		recorder:  opts.Recorder,
		logger:    opts.Logger.With("session", opts.ID),
	}

	if s.recorder != nil {
		if err := s.recorder.WriteSession(ctx, journal.Session{ID: s.id, StartedAt: s.startedAt}); err != nil {
			return nil, fmt.Errorf("new session: %w", err)
		}
	}
	s.logger.Info("session started")
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// StartedAt returns when the session started.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Panel returns the session's settings panel for read access.
func (s *Session) Panel() *settings.Panel { return s.panel }

// Save validates values and checkpoints them as a settings update.
func (s *Session) Save(ctx context.Context, values settings.Values) (history.Checkpoint[settings.Values], error) {
	return s.Checkpoint(ctx, settings.SavedDescription, values)
}

// Checkpoint validates values and checkpoints them under description.
// Rejected values are not journaled.
func (s *Session) Checkpoint(ctx context.Context, description string, values settings.Values) (history.Checkpoint[settings.Values], error) {
	if s.closed {
		return history.Checkpoint[settings.Values]{}, ErrClosed
	}

	before := s.panel.History().Cursor()
	cp, err := s.panel.Checkpoint(description, values)
	if err != nil {
		s.logger.Debug("checkpoint rejected", "description", description, "error", err)
		return history.Checkpoint[settings.Values]{}, err
	}

	op := s.operation(journal.OpCheckpoint, before)
	op.CheckpointID = cp.ID
	op.Description = cp.Description
	op.Applied = true

	s.logger.Info("checkpoint created",
		"seq", op.Seq,
		"checkpoint", cp.ID,
		"description", cp.Description,
		"cursor", op.CursorAfter,
	)
	if err := s.record(ctx, op); err != nil {
		return cp, err
	}
	return cp, nil
}

// Undo rolls back one checkpoint.
func (s *Session) Undo(ctx context.Context) (journal.Operation, error) {
	return s.Rollback(ctx, 1)
}

// Rollback moves the cursor back steps checkpoints. Out-of-range requests
// are ignored; the returned operation reports Applied=false for them.
func (s *Session) Rollback(ctx context.Context, steps int) (journal.Operation, error) {
	if s.closed {
		return journal.Operation{}, ErrClosed
	}
	before := s.panel.History().Cursor()
	s.panel.Rollback(steps)
	return s.finishRollback(ctx, before, steps)
}

// RollbackTo undoes the listed entry at index and everything after it.
func (s *Session) RollbackTo(ctx context.Context, index int) (journal.Operation, error) {
	if s.closed {
		return journal.Operation{}, ErrClosed
	}
	before := s.panel.History().Cursor()
	steps := s.panel.RollbackTo(index)
	return s.finishRollback(ctx, before, steps)
}

func (s *Session) finishRollback(ctx context.Context, before, steps int) (journal.Operation, error) {
	op := s.operation(journal.OpRollback, before)
	op.Steps = steps
	op.Applied = op.CursorAfter != before

	if op.Applied {
		s.logger.Info("rolled back", "seq", op.Seq, "steps", steps, "cursor", op.CursorAfter)
	} else {
		s.logger.Debug("rollback ignored", "seq", op.Seq, "steps", steps, "cursor", before)
	}
	if err := s.record(ctx, op); err != nil {
		return op, err
	}
	return op, nil
}

// Close ends the session and discards its history.
// Closing twice is a no-op.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("session ended", "operations", s.clock.Current())

	if s.recorder != nil {
		if err := s.recorder.EndSession(ctx, s.id, s.now()); err != nil {
			return fmt.Errorf("close session: %w", err)
		}
	}
	return nil
}

func (s *Session) operation(kind string, before int) journal.Operation {
	h := s.panel.History()
	return journal.Operation{
		SessionID:    s.id,
		Seq:          s.clock.Next(),
		Op:           kind,
		CursorBefore: before,
		CursorAfter:  h.Cursor(),
		LengthAfter:  h.Len(),
		RecordedAt:   s.now(),
	}
}

func (s *Session) record(ctx context.Context, op journal.Operation) error {
	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.WriteOperation(ctx, op); err != nil {
		return fmt.Errorf("record %s: %w", op.Op, err)
	}
	return nil
}
