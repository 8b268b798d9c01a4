package settings

import (
	"fmt"

	"github.com/roach88/deskconsole/internal/history"
)

// SavedDescription labels checkpoints created by Save.
const SavedDescription = "Settings updated"

// Panel is the settings page: it validates edits and checkpoints every
// accepted one in its own History.
//
// A Panel is owned by a single session and is not safe for concurrent use.
type Panel struct {
	history   *history.History[Values]
	validator *Validator
}

// NewPanel creates a panel with an empty history.
func NewPanel(opts ...history.Option) (*Panel, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return &Panel{
		history:   history.New[Values](opts...),
		validator: validator,
	}, nil
}

// Save validates values and checkpoints them as a settings update.
func (p *Panel) Save(values Values) (history.Checkpoint[Values], error) {
	return p.Checkpoint(SavedDescription, values)
}

// Checkpoint validates values and checkpoints them under description.
// Invalid values leave the history untouched.
func (p *Panel) Checkpoint(description string, values Values) (history.Checkpoint[Values], error) {
	if err := p.validator.Validate(values); err != nil {
		return history.Checkpoint[Values]{}, fmt.Errorf("save settings: %w", err)
	}
	return p.history.Create(description, values), nil
}

// Undo rolls back to the previous checkpoint.
func (p *Panel) Undo() { p.history.Undo() }

// Rollback moves back steps checkpoints. Out-of-range requests are ignored.
func (p *Panel) Rollback(steps int) { p.history.Rollback(steps) }

// RollbackTo undoes the listed entry at index and everything after it and
// returns the step count that was requested.
func (p *Panel) RollbackTo(index int) int { return p.history.RollbackTo(index) }

// CanRollback reports whether any checkpoint is active.
func (p *Panel) CanRollback() bool { return p.history.CanRollback() }

// Values returns the active checkpoint's values, or Defaults when none is
// active.
func (p *Panel) Values() Values {
	if cp, ok := p.history.Current(); ok {
		return cp.Payload
	}
	return Defaults()
}

// History exposes the checkpoint history for rendering.
func (p *Panel) History() *history.History[Values] {
	return p.history
}
