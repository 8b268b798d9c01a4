package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSession returns one session by id.
func (j *Journal) GetSession(ctx context.Context, id string) (Session, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, started_at, ended_at FROM sessions WHERE id = ?
	`, id)

	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("get session %q: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// ListSessions returns every session ordered by start time, then id.
func (j *Journal) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at FROM sessions
		ORDER BY started_at ASC, id ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ReadOperations returns a session's operations in sequence order.
// An unknown session yields ErrSessionNotFound.
func (j *Journal) ReadOperations(ctx context.Context, sessionID string) ([]Operation, error) {
	if _, err := j.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("read operations: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, seq, op, checkpoint_id, description, steps,
		       cursor_before, cursor_after, length_after, applied, recorded_at
		FROM operations
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read operations: %w", err)
	}
	defer rows.Close()

	ops := []Operation{}
	for rows.Next() {
		var (
			op         Operation
			applied    int
			recordedAt string
		)
		if err := rows.Scan(
			&op.SessionID,
			&op.Seq,
			&op.Op,
			&op.CheckpointID,
			&op.Description,
			&op.Steps,
			&op.CursorBefore,
			&op.CursorAfter,
			&op.LengthAfter,
			&applied,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("read operations: scan: %w", err)
		}
		op.Applied = applied != 0
		if op.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("read operations: recorded_at: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read operations: %w", err)
	}
	return ops, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var (
		s         Session
		startedAt string
		endedAt   sql.NullString
	)
	if err := row.Scan(&s.ID, &startedAt, &endedAt); err != nil {
		return Session{}, err
	}

	var err error
	if s.StartedAt, err = parseTime(startedAt); err != nil {
		return Session{}, fmt.Errorf("started_at: %w", err)
	}
	if endedAt.Valid {
		t, err := parseTime(endedAt.String)
		if err != nil {
			return Session{}, fmt.Errorf("ended_at: %w", err)
		}
		s.EndedAt = &t
	}
	return s, nil
}
