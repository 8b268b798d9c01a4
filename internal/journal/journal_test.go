package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// createTestJournal opens a journal in a temp directory.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		require.NoError(t, err, "open #%d", i)
		require.NoError(t, j.Close())
	}

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	var version int
	require.NoError(t, j.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, schemaVersion, version)

	var name string
	err = j.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_operations_checkpoint'",
	).Scan(&name)
	assert.NoError(t, err)
}

func TestOpen_Pragmas(t *testing.T) {
	j := createTestJournal(t)

	var mode string
	require.NoError(t, j.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, j.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var timeout int
	require.NoError(t, j.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}

func TestOpen_NewerSchemaRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion+1))
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrSchemaVersion)
}

func TestOpen_KeepsExistingSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.WriteSession(ctx, Session{ID: "s1", StartedAt: testEpoch}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()
	_, err = j.GetSession(ctx, "s1")
	assert.NoError(t, err)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/journal.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	j := &Journal{}
	assert.NoError(t, j.Close())
}

func TestWriteSession_DuplicateIDRejected(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.WriteSession(ctx, Session{ID: "s1", StartedAt: testEpoch}))
	err := j.WriteSession(ctx, Session{ID: "s1", StartedAt: testEpoch.Add(time.Hour)})
	assert.ErrorIs(t, err, ErrSessionExists)

	s, err := j.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, testEpoch, s.StartedAt)
	assert.Nil(t, s.EndedAt)
}

func TestEndSession(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.WriteSession(ctx, Session{ID: "s1", StartedAt: testEpoch}))

	require.NoError(t, j.EndSession(ctx, "s1", testEpoch.Add(time.Minute)))

	s, err := j.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s.EndedAt)
	assert.Equal(t, testEpoch.Add(time.Minute), *s.EndedAt)
}

func TestEndSession_Unknown(t *testing.T) {
	j := createTestJournal(t)

	err := j.EndSession(context.Background(), "missing", testEpoch)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSession_Unknown(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListSessions_Ordered(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.WriteSession(ctx, Session{ID: "b", StartedAt: testEpoch.Add(time.Second)}))
	require.NoError(t, j.WriteSession(ctx, Session{ID: "c", StartedAt: testEpoch}))
	require.NoError(t, j.WriteSession(ctx, Session{ID: "a", StartedAt: testEpoch.Add(time.Second)}))

	sessions, err := j.ListSessions(ctx)
	require.NoError(t, err)

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestWriteOperation_RoundTrip(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.WriteSession(ctx, Session{ID: "s1", StartedAt: testEpoch}))

	ops := []Operation{
		{
			SessionID: "s1", Seq: 1, Op: OpCheckpoint, CheckpointID: "cp-1",
			Description: "Settings updated", CursorBefore: -1, CursorAfter: 0,
			LengthAfter: 1, Applied: true, RecordedAt: testEpoch.Add(time.Second),
		},
		{
			SessionID: "s1", Seq: 2, Op: OpRollback, Steps: 3,
			CursorBefore: 0, CursorAfter: 0, LengthAfter: 1, Applied: false,
			RecordedAt: testEpoch.Add(2 * time.Second),
		},
	}
	// Write out of order to check seq ordering on read.
	require.NoError(t, j.WriteOperation(ctx, ops[1]))
	require.NoError(t, j.WriteOperation(ctx, ops[0]))

	got, err := j.ReadOperations(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, ops, got)
}

func TestWriteOperation_DuplicateSeqRejected(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.WriteSession(ctx, Session{ID: "s1", StartedAt: testEpoch}))

	op := Operation{SessionID: "s1", Seq: 1, Op: OpRollback, Steps: 1, CursorBefore: -1, CursorAfter: -1, RecordedAt: testEpoch}
	require.NoError(t, j.WriteOperation(ctx, op))
	op.Steps = 9
	assert.ErrorIs(t, j.WriteOperation(ctx, op), ErrOperationExists)

	got, err := j.ReadOperations(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Steps)
}

func TestWriteOperation_RequiresSession(t *testing.T) {
	j := createTestJournal(t)

	err := j.WriteOperation(context.Background(), Operation{
		SessionID: "missing", Seq: 1, Op: OpRollback, RecordedAt: testEpoch,
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestWriteOperation_RejectsUnknownOp(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.WriteSession(ctx, Session{ID: "s1", StartedAt: testEpoch}))

	err := j.WriteOperation(ctx, Operation{SessionID: "s1", Seq: 1, Op: "redo", RecordedAt: testEpoch})
	assert.Error(t, err)
}

func TestReadOperations_EmptySession(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.WriteSession(ctx, Session{ID: "s1", StartedAt: testEpoch}))

	got, err := j.ReadOperations(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadOperations_UnknownSession(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.ReadOperations(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
