package journal

import "time"

// Operation kinds.
const (
	OpCheckpoint = "checkpoint"
	OpRollback   = "rollback"
)

// Session is one console session.
type Session struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Operation is one checkpoint or rollback applied to a session's history.
// Applied is false for rollbacks that were ignored as out of range.
type Operation struct {
	SessionID    string    `json:"session_id"`
	Seq          int64     `json:"seq"`
	Op           string    `json:"op"`
	CheckpointID string    `json:"checkpoint_id,omitempty"`
	Description  string    `json:"description,omitempty"`
	Steps        int       `json:"steps,omitempty"`
	CursorBefore int       `json:"cursor_before"`
	CursorAfter  int       `json:"cursor_after"`
	LengthAfter  int       `json:"length_after"`
	Applied      bool      `json:"applied"`
	RecordedAt   time.Time `json:"recorded_at"`
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
