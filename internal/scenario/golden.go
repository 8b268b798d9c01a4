package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/deskconsole/internal/canon"
	"github.com/roach88/deskconsole/internal/session"
)

// GoldenDir is where golden traces live, relative to the test's package.
const GoldenDir = "testdata/golden"

// CanonicalTrace renders a run as canonical JSON for golden comparison.
func CanonicalTrace(s *Scenario, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, e := range result.Trace {
		event := map[string]any{
			"step":          e.Step,
			"seq":           e.Seq,
			"op":            e.Op,
			"cursor_before": e.CursorBefore,
			"cursor_after":  e.CursorAfter,
			"length":        e.Length,
			"applied":       e.Applied,
		}
		if e.CheckpointID != "" {
			event["checkpoint_id"] = e.CheckpointID
		}
		if e.Op != "rollback" {
			event["description"] = e.Description
		}
		if e.Values != nil {
			event["values"] = *e.Values
		}
		if e.Op == "rollback" {
			event["steps"] = e.Steps
		}
		if !e.At.IsZero() {
			event["at"] = formatTime(e.At)
		}
		trace[i] = event
	}

	return canon.Marshal(map[string]any{
		"scenario":   s.Name,
		"session_id": result.Final.SessionID,
		"trace":      trace,
		"final":      canonicalSnapshot(result.Final),
	})
}

func canonicalSnapshot(snap session.Snapshot) map[string]any {
	entries := make([]any, len(snap.Entries))
	for i, e := range snap.Entries {
		entries[i] = map[string]any{
			"id":          e.ID,
			"description": e.Description,
			"timestamp":   formatTime(e.Timestamp),
			"values":      e.Values,
			"active":      e.Active,
		}
	}
	return map[string]any{
		"cursor":       snap.Cursor,
		"can_rollback": snap.CanRollback,
		"values":       snap.Values,
		"entries":      entries,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// RunWithGolden runs a scenario and compares its canonical trace against
// testdata/golden/<name>.golden. Assertion failures are reported through t.
func RunWithGolden(t *testing.T, s *Scenario) *Result {
	t.Helper()

	result, err := Run(context.Background(), s, RunOptions{})
	if err != nil {
		t.Fatalf("run scenario %q: %v", s.Name, err)
	}
	for _, e := range result.Errors {
		t.Errorf("scenario %q: %s", s.Name, e)
	}

	data, err := CanonicalTrace(s, result)
	if err != nil {
		t.Fatalf("canonical trace %q: %v", s.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, data)
	return result
}
