package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deskconsole/internal/journal"
	"github.com/roach88/deskconsole/internal/settings"
	"github.com/roach88/deskconsole/internal/testutil"
)

// memRecorder captures journal calls in memory.
type memRecorder struct {
	sessions []journal.Session
	ops      []journal.Operation
	ended    []string
	failOps  bool
}

func (r *memRecorder) WriteSession(_ context.Context, s journal.Session) error {
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *memRecorder) WriteOperation(_ context.Context, op journal.Operation) error {
	if r.failOps {
		return errors.New("disk full")
	}
	r.ops = append(r.ops, op)
	return nil
}

func (r *memRecorder) EndSession(_ context.Context, id string, _ time.Time) error {
	r.ended = append(r.ended, id)
	return nil
}

func newTestSession(t *testing.T, rec Recorder) *Session {
	t.Helper()
	clock := testutil.NewDeterministicClock()
	s, err := New(context.Background(), Options{
		ID:       "session-1",
		IDs:      testutil.NewSequenceGenerator("cp"),
		Now:      clock.Now,
		Recorder: rec,
	})
	require.NoError(t, err)
	return s
}

func site(name string) settings.Values {
	v := settings.Defaults()
	v.SiteName = name
	return v
}

func TestNew_Defaults(t *testing.T) {
	s, err := New(context.Background(), Options{})
	require.NoError(t, err)

	assert.Len(t, s.ID(), 36)
	assert.False(t, s.Snapshot().CanRollback)
	assert.Equal(t, -1, s.Snapshot().Cursor)
}

func TestNew_RecordsSessionStart(t *testing.T) {
	rec := &memRecorder{}
	s := newTestSession(t, rec)

	require.Len(t, rec.sessions, 1)
	assert.Equal(t, "session-1", rec.sessions[0].ID)
	assert.Equal(t, testutil.Epoch, rec.sessions[0].StartedAt)
	assert.Equal(t, testutil.Epoch, s.StartedAt())
}

func TestSave_RecordsCheckpoint(t *testing.T) {
	rec := &memRecorder{}
	s := newTestSession(t, rec)

	cp, err := s.Save(context.Background(), site("Lab"))
	require.NoError(t, err)
	assert.Equal(t, "cp-1", cp.ID)

	require.Len(t, rec.ops, 1)
	op := rec.ops[0]
	assert.Equal(t, int64(1), op.Seq)
	assert.Equal(t, journal.OpCheckpoint, op.Op)
	assert.Equal(t, "cp-1", op.CheckpointID)
	assert.Equal(t, settings.SavedDescription, op.Description)
	assert.Equal(t, -1, op.CursorBefore)
	assert.Equal(t, 0, op.CursorAfter)
	assert.Equal(t, 1, op.LengthAfter)
	assert.True(t, op.Applied)
}

func TestSave_InvalidNotRecorded(t *testing.T) {
	rec := &memRecorder{}
	s := newTestSession(t, rec)

	_, err := s.Save(context.Background(), site(""))
	require.ErrorIs(t, err, settings.ErrInvalid)

	assert.Empty(t, rec.ops)
	assert.Empty(t, s.Snapshot().Entries)
}

func TestRollback_AppliedAndIgnored(t *testing.T) {
	rec := &memRecorder{}
	s := newTestSession(t, rec)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		_, err := s.Checkpoint(ctx, name, site(name))
		require.NoError(t, err)
	}

	op, err := s.Rollback(ctx, 2)
	require.NoError(t, err)
	assert.True(t, op.Applied)
	assert.Equal(t, 2, op.CursorBefore)
	assert.Equal(t, 0, op.CursorAfter)

	op, err = s.Rollback(ctx, 5)
	require.NoError(t, err)
	assert.False(t, op.Applied)
	assert.Equal(t, 0, op.CursorAfter)

	op, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, op.Applied)
	assert.Equal(t, -1, op.CursorAfter)

	require.Len(t, rec.ops, 6)
	for i, op := range rec.ops {
		assert.Equal(t, int64(i+1), op.Seq)
	}
}

func TestRollbackTo_RecordsComputedSteps(t *testing.T) {
	rec := &memRecorder{}
	s := newTestSession(t, rec)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		_, err := s.Checkpoint(ctx, name, site(name))
		require.NoError(t, err)
	}

	op, err := s.RollbackTo(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, op.Steps)
	assert.Equal(t, 0, op.CursorAfter)
	assert.Equal(t, "A", s.Panel().Values().SiteName)

	// With an undone tail the list formula still counts every retained entry,
	// so the journaled steps match what the history was asked to do.
	op, err = s.RollbackTo(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, op.Steps)
	assert.False(t, op.Applied)
	assert.Equal(t, op, rec.ops[len(rec.ops)-1])
}

func TestSnapshot_MarksInactiveTail(t *testing.T) {
	s := newTestSession(t, nil)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		_, err := s.Checkpoint(ctx, name, site(name))
		require.NoError(t, err)
	}
	_, err := s.Undo(ctx)
	require.NoError(t, err)

	snap := s.Snapshot()

	assert.Equal(t, []string{"A", "B", "C"}, snap.Descriptions())
	assert.Equal(t, 1, snap.Cursor)
	assert.True(t, snap.CanRollback)
	assert.Equal(t, "B", snap.Values.SiteName)
	assert.True(t, snap.Entries[1].Active)
	assert.False(t, snap.Entries[2].Active)
	// Session start consumed Epoch; checkpoints follow one second apart.
	assert.Equal(t, testutil.Epoch.Add(time.Second), snap.Entries[0].Timestamp)
}

func TestRecorderFailureSurfaces(t *testing.T) {
	rec := &memRecorder{failOps: true}
	s := newTestSession(t, rec)

	_, err := s.Save(context.Background(), site("Lab"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record checkpoint")

	// The history change itself is not undone.
	assert.Equal(t, 0, s.Snapshot().Cursor)
}

func TestClose(t *testing.T) {
	rec := &memRecorder{}
	s := newTestSession(t, rec)
	ctx := context.Background()

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, []string{"session-1"}, rec.ended)

	_, err := s.Save(ctx, site("x"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Undo(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.RollbackTo(ctx, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_WithJournal(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	s := newTestSession(t, j)
	ctx := context.Background()
	_, err = s.Save(ctx, site("Lab"))
	require.NoError(t, err)
	_, err = s.Rollback(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	ops, err := j.ReadOperations(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, journal.OpCheckpoint, ops[0].Op)
	assert.Equal(t, journal.OpRollback, ops[1].Op)
	assert.False(t, ops[1].Applied)

	sess, err := j.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.NotNil(t, sess.EndedAt)
}

func TestClock(t *testing.T) {
	c := NewClock()

	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}
