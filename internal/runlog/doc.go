// Package runlog persists a history of completed analysis runs in SQLite.
//
// Each run records the source that was scanned, the detector used, the
// frame span covered, and the number of scenes found, keyed by a UUID. The
// store takes an advisory file lock next to the database so concurrent
// cleancut invocations do not interleave writes.
package runlog
