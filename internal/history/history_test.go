package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHistory returns a history with sequential ids and a clock that
// advances one second per checkpoint.
func newTestHistory(t *testing.T) *History[string] {
	t.Helper()
	ids := make([]string, 64)
	for i := range ids {
		ids[i] = fmt.Sprintf("cp-%d", i+1)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	return New[string](
		WithIDGenerator(NewFixedGenerator(ids...)),
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
	)
}

func descriptions[T any](h *History[T]) []string {
	out := make([]string, 0, h.Len())
	for _, cp := range h.Entries() {
		out = append(out, cp.Description)
	}
	return out
}

func TestNew_Empty(t *testing.T) {
	h := New[int]()

	assert.Equal(t, Empty, h.Cursor())
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.CanRollback())
	assert.Empty(t, h.Entries())

	_, ok := h.Current()
	assert.False(t, ok)
}

func TestCreate_CursorTracksLastEntry(t *testing.T) {
	h := newTestHistory(t)

	for i := 0; i < 5; i++ {
		h.Create(fmt.Sprintf("step %d", i), "payload")
		assert.Equal(t, i+1, h.Len())
		assert.Equal(t, h.Len()-1, h.Cursor())
	}
}

func TestCreate_FillsCheckpoint(t *testing.T) {
	h := newTestHistory(t)

	cp := h.Create("Settings updated", "v1")

	assert.Equal(t, "cp-1", cp.ID)
	assert.Equal(t, "Settings updated", cp.Description)
	assert.Equal(t, "v1", cp.Payload)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC), cp.Timestamp)

	current, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, cp, current)
}

func TestCreate_EmptyDescription(t *testing.T) {
	h := newTestHistory(t)

	h.Create("", "x")

	assert.Equal(t, []string{""}, descriptions(h))
	assert.True(t, h.CanRollback())
}

func TestCreate_PayloadNotInspected(t *testing.T) {
	type form struct {
		values map[string]any
		ch     chan int
	}
	h := New[form]()
	payload := form{values: map[string]any{"siteName": "x"}, ch: make(chan int)}

	h.Create("opaque", payload)

	current, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, payload.ch, current.Payload.ch)
	assert.Equal(t, payload.values, current.Payload.values)
}

func TestCreate_UniqueIDs(t *testing.T) {
	h := New[int]()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		cp := h.Create("n", i)
		require.False(t, seen[cp.ID], "id %s reused", cp.ID)
		seen[cp.ID] = true
	}
}

func TestCreate_TruncatesUndoneTail(t *testing.T) {
	h := newTestHistory(t)
	h.Create("C1", "1")
	h.Create("C2", "2")
	h.Create("C3", "3")

	h.Rollback(1)
	require.Equal(t, 1, h.Cursor())

	h.Create("C4", "4")

	assert.Equal(t, []string{"C1", "C2", "C4"}, descriptions(h))
	assert.Equal(t, 2, h.Cursor())
	assert.Equal(t, 0, h.Undone())
}

func TestCreate_DoesNotMutateEarlierSnapshots(t *testing.T) {
	h := newTestHistory(t)
	h.Create("A", "a")
	h.Create("B", "b")
	h.Undo()

	before := h.Entries()
	h.Create("C", "c")

	assert.Equal(t, "B", before[1].Description)
	assert.Equal(t, []string{"A", "C"}, descriptions(h))
}

func TestRollback_MovesCursor(t *testing.T) {
	for k := 1; k <= 4; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			h := newTestHistory(t)
			for i := 0; i < 4; i++ {
				h.Create("x", "x")
			}
			start := h.Cursor()

			h.Rollback(k)

			assert.Equal(t, start-k, h.Cursor())
			assert.Equal(t, 4, h.Len(), "rollback must not drop entries")
		})
	}
}

func TestRollback_OutOfRangeIsNoOp(t *testing.T) {
	h := newTestHistory(t)
	h.Create("A", "a")
	h.Create("B", "b")

	before := h.Entries()
	h.Rollback(3)

	assert.Equal(t, 1, h.Cursor())
	assert.Equal(t, before, h.Entries())
}

func TestRollback_NonPositiveStepsIgnored(t *testing.T) {
	h := newTestHistory(t)
	h.Create("A", "a")
	h.Create("B", "b")
	h.Rollback(1)

	h.Rollback(0)
	assert.Equal(t, 0, h.Cursor())

	h.Rollback(-1)
	assert.Equal(t, 0, h.Cursor(), "negative steps must not move forward")
}

func TestRollback_FromEmpty(t *testing.T) {
	h := newTestHistory(t)

	h.Rollback(1)

	assert.Equal(t, Empty, h.Cursor())
	assert.False(t, h.CanRollback())
	assert.Empty(t, h.Entries())
}

func TestRollback_RetainsUndoneEntries(t *testing.T) {
	h := newTestHistory(t)
	h.Create("A", "a")
	h.Create("B", "b")
	h.Create("C", "c")

	h.Rollback(2)

	assert.Equal(t, []string{"A", "B", "C"}, descriptions(h))
	assert.Equal(t, 2, h.Undone())
	current, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "A", current.Description)
}

func TestRollbackTo_DeactivatesSelectedEntry(t *testing.T) {
	h := newTestHistory(t)
	h.Create("A", "a")
	h.Create("B", "b")
	h.Create("C", "c")

	assert.Equal(t, 2, h.RollbackTo(1))
	assert.Equal(t, 0, h.Cursor())

	assert.Equal(t, 3, h.RollbackTo(0))
	assert.Equal(t, 0, h.Cursor(), "steps 3 exceeds the active history")
}

func TestRollbackTo_FirstEntryEmptiesHistory(t *testing.T) {
	h := newTestHistory(t)
	h.Create("A", "a")
	h.Create("B", "b")

	h.RollbackTo(0)

	assert.Equal(t, Empty, h.Cursor())
	assert.False(t, h.CanRollback())
}

func TestRollbackTo_OutOfRange(t *testing.T) {
	h := newTestHistory(t)
	h.Create("A", "a")

	h.RollbackTo(1)
	assert.Equal(t, 0, h.Cursor())

	h.RollbackTo(-5)
	assert.Equal(t, 0, h.Cursor())
}

func TestScenario_RollbackToEmptyThenCreate(t *testing.T) {
	h := newTestHistory(t)
	h.Create("A", "a")
	h.Create("B", "b")
	h.Create("C", "c")

	assert.Equal(t, []string{"A", "B", "C"}, descriptions(h))
	assert.Equal(t, 2, h.Cursor())
	assert.True(t, h.CanRollback())

	h.Rollback(2)
	assert.Equal(t, 0, h.Cursor())

	h.Rollback(1)
	assert.Equal(t, Empty, h.Cursor())
	assert.False(t, h.CanRollback())

	h.Rollback(1)
	assert.Equal(t, Empty, h.Cursor())

	h.Create("D", "d")
	assert.Equal(t, []string{"D"}, descriptions(h))
	assert.Equal(t, 0, h.Cursor())
}

func TestEntries_ReturnsCopy(t *testing.T) {
	h := newTestHistory(t)
	h.Create("A", "a")

	entries := h.Entries()
	entries[0].Description = "mutated"

	assert.Equal(t, []string{"A"}, descriptions(h))
}
