package history

import "time"

// Checkpoint is a named, timestamped snapshot of caller data.
type Checkpoint[T any] struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Payload     T         `json:"payload"`
}

// Empty is the cursor value of a history with no active checkpoint.
const Empty = -1

// History is an undo history of checkpoints with a cursor.
type History[T any] struct {
	entries []Checkpoint[T]
	cursor  int
	ids     IDGenerator
	now     func() time.Time
}

// Option configures a History.
type Option func(*config)

type config struct {
	ids IDGenerator
	now func() time.Time
}

// WithIDGenerator overrides the checkpoint id source (default UUIDv7Generator).
func WithIDGenerator(g IDGenerator) Option {
	return func(c *config) { c.ids = g }
}

// WithClock overrides the timestamp source (default time.Now).
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New creates an empty history.
func New[T any](opts ...Option) *History[T] {
	cfg := config{
		ids: UUIDv7Generator{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &History[T]{
		cursor: Empty,
		ids:    cfg.ids,
		now:    cfg.now,
	}
}

// Create records a new checkpoint after the cursor and makes it active.
// Entries after the cursor (left behind by earlier rollbacks) are discarded.
func (h *History[T]) Create(description string, payload T) Checkpoint[T] {
	cp := Checkpoint[T]{
		ID:          h.ids.Generate(),
		Timestamp:   h.now(),
		Description: description,
		Payload:     payload,
	}

	// Build a fresh slice so that copies handed out by Entries never observe
	// the truncated tail being overwritten.
	kept := h.cursor + 1
	entries := make([]Checkpoint[T], kept, kept+1)
	copy(entries, h.entries[:kept])
	h.entries = append(entries, cp)
	h.cursor = kept
	return cp
}

// Rollback moves the cursor back by steps.
// The request is ignored when fewer than steps checkpoints are active; the
// cursor may land on Empty but never below it. Entries are left untouched.
func (h *History[T]) Rollback(steps int) {
	if steps < 1 {
		return
	}
	if h.cursor >= steps-1 {
		h.cursor -= steps
	}
}

// Undo rolls back a single step.
func (h *History[T]) Undo() {
	h.Rollback(1)
}

// RollbackTo deactivates the entry at index and every entry after it, as the
// "roll back to here" action of a rendered history list does. The cursor ends
// at index-1. Out-of-range requests are ignored like any other rollback.
// It returns the step count it asked Rollback for.
func (h *History[T]) RollbackTo(index int) (steps int) {
	steps = len(h.entries) - index
	h.Rollback(steps)
	return steps
}

// CanRollback reports whether any checkpoint is active.
// It does not say whether a particular step count would be accepted.
func (h *History[T]) CanRollback() bool {
	return h.cursor >= 0
}

// Cursor returns the index of the active checkpoint, or Empty.
func (h *History[T]) Cursor() int {
	return h.cursor
}

// Len returns the number of retained checkpoints, including rolled-back ones.
func (h *History[T]) Len() int {
	return len(h.entries)
}

// Undone returns how many retained checkpoints sit after the cursor.
func (h *History[T]) Undone() int {
	return len(h.entries) - h.cursor - 1
}

// Entries returns a copy of every retained checkpoint in creation order.
func (h *History[T]) Entries() []Checkpoint[T] {
	out := make([]Checkpoint[T], len(h.entries))
	copy(out, h.entries)
	return out
}

// Current returns the active checkpoint.
func (h *History[T]) Current() (Checkpoint[T], bool) {
	if h.cursor < 0 {
		var zero Checkpoint[T]
		return zero, false
	}
	return h.entries[h.cursor], true
}
