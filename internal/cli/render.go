package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/roach88/deskconsole/internal/locale"
	"github.com/roach88/deskconsole/internal/session"
)

const displayTime = "2006-01-02 15:04:05"

// renderSnapshot writes the history list and the active settings the way the
// settings page shows them.
func renderSnapshot(w io.Writer, p *locale.Printer, snap session.Snapshot) {
	status := p.T(locale.KeyCannotRollback)
	if snap.CanRollback {
		status = p.T(locale.KeyCanRollback)
	}
	fmt.Fprintf(w, "%s (%s)\n", p.T(locale.KeyHistoryTitle), status)

	if len(snap.Entries) == 0 {
		fmt.Fprintf(w, "  %s\n", p.T(locale.KeyHistoryEmpty))
	}
	for _, e := range snap.Entries {
		fmt.Fprintf(w, "  %d  %s  %s  %s%s\n",
			e.Index, e.Timestamp.UTC().Format(displayTime), e.ID, e.Description, entryMarker(p, snap.Cursor, e))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.T(locale.KeyCurrentValues))
	fmt.Fprintf(w, "  %s: %s\n", p.T(locale.KeySiteName), snap.Values.SiteName)
	fmt.Fprintf(w, "  %s: %s\n", p.T(locale.KeyEmailNotify), p.Bool(snap.Values.EmailNotifications))
	fmt.Fprintf(w, "  %s: %s\n", p.T(locale.KeyDarkMode), p.Bool(snap.Values.DarkMode))
}

func entryMarker(p *locale.Printer, cursor int, e session.Entry) string {
	switch {
	case e.Index == cursor:
		return fmt.Sprintf("  [%s]", p.T(locale.KeyActive))
	case !e.Active:
		return fmt.Sprintf("  [%s]", p.T(locale.KeyUndone))
	}
	return ""
}

func formatDisplayTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(displayTime)
}
