package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// WriteSession records the start of a session. Session ids are single use:
// journaling an id that is already present fails with ErrSessionExists, so
// two runs can never share one operation log.
func (j *Journal) WriteSession(ctx context.Context, s Session) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at) VALUES (?, ?)
	`, s.ID, formatTime(s.StartedAt))
	if isConstraint(err, sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("write session %q: %w", s.ID, ErrSessionExists)
	}
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// EndSession stamps the end time of a session.
func (j *Journal) EndSession(ctx context.Context, id string, at time.Time) error {
	result, err := j.db.ExecContext(ctx, `
		UPDATE sessions SET ended_at = ? WHERE id = ?
	`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("end session: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("end session %q: %w", id, ErrSessionNotFound)
	}
	return nil
}

// WriteOperation appends an operation to its session's log. The session must
// already exist and seq must be new within it.
func (j *Journal) WriteOperation(ctx context.Context, op Operation) error {
	if op.Op != OpCheckpoint && op.Op != OpRollback {
		return fmt.Errorf("write operation: unknown op %q", op.Op)
	}

	applied := 0
	if op.Applied {
		applied = 1
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO operations
		(session_id, seq, op, checkpoint_id, description, steps,
		 cursor_before, cursor_after, length_after, applied, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		op.SessionID,
		op.Seq,
		op.Op,
		op.CheckpointID,
		op.Description,
		op.Steps,
		op.CursorBefore,
		op.CursorAfter,
		op.LengthAfter,
		applied,
		formatTime(op.RecordedAt),
	)
	switch {
	case isConstraint(err, sqlite3.ErrConstraintPrimaryKey):
		return fmt.Errorf("write operation %s#%d: %w", op.SessionID, op.Seq, ErrOperationExists)
	case isConstraint(err, sqlite3.ErrConstraintForeignKey):
		return fmt.Errorf("write operation %s#%d: %w", op.SessionID, op.Seq, ErrSessionNotFound)
	}
	if err != nil {
		return fmt.Errorf("write operation: %w", err)
	}
	return nil
}

// isConstraint reports whether err is the driver's constraint violation of the
// given kind.
func isConstraint(err error, kind sqlite3.ErrNoExtended) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == kind
}
