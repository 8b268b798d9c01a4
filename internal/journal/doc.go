// Package journal provides a SQLite-backed audit log of console sessions.
//
// The journal is append-only and records, per session:
//   - Sessions: id, start time, end time
//   - Operations: every checkpoint and rollback with the cursor before and
//     after, in session sequence order
//
// Payloads are never written: the checkpoint store treats them as opaque.
// The journal is an audit trail only; histories are never rebuilt from it.
//
// # Ordering
//
// Operations are ordered by their session sequence number (seq), never by
// timestamp. All queries use ORDER BY seq ASC.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package journal
