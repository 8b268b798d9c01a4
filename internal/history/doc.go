// Package history provides the checkpoint store behind the console's undo
// controls.
//
// A History holds an ordered list of named, timestamped checkpoints and a
// cursor pointing at the active one (or -1 when none is active).
//
// # Semantics
//
//   - Create truncates everything after the cursor, appends, and moves the
//     cursor to the new checkpoint. Redo is not preserved.
//   - Rollback moves the cursor back by a step count. Requests that would move
//     the cursor below -1 are ignored without error.
//   - Rolled-back checkpoints stay in Entries until the next Create discards
//     them. There is no forward movement.
//
// Payloads are stored as-is and never inspected.
//
// # Ownership
//
// A History belongs to exactly one session and is not safe for concurrent use.
// Every method is synchronous and leaves the history in a consistent state.
package history
