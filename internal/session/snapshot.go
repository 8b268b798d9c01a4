package session

import (
	"time"

	"github.com/roach88/deskconsole/internal/settings"
)

// Entry is one rendered row of the checkpoint history.
type Entry struct {
	Index       int             `json:"index"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
	Values      settings.Values `json:"values"`
	Active      bool            `json:"active"`
}

// Snapshot is a read-only view of a session for renderers.
type Snapshot struct {
	SessionID   string          `json:"session_id"`
	Cursor      int             `json:"cursor"`
	CanRollback bool            `json:"can_rollback"`
	Values      settings.Values `json:"values"`
	Entries     []Entry         `json:"entries"`
}

// Snapshot captures the current history. Entries after the cursor are
// retained but inactive.
func (s *Session) Snapshot() Snapshot {
	h := s.panel.History()
	cursor := h.Cursor()

	entries := make([]Entry, 0, h.Len())
	for i, cp := range h.Entries() {
		entries = append(entries, Entry{
			Index:       i,
			ID:          cp.ID,
			Description: cp.Description,
			Timestamp:   cp.Timestamp,
			Values:      cp.Payload,
			Active:      i <= cursor,
		})
	}

	return Snapshot{
		SessionID:   s.id,
		Cursor:      cursor,
		CanRollback: h.CanRollback(),
		Values:      s.panel.Values(),
		Entries:     entries,
	}
}

// Descriptions lists entry descriptions in order.
func (s Snapshot) Descriptions() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Description
	}
	return out
}
