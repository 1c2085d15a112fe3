// Package journal persists a record of optimization runs in SQLite.
//
// Each run stores one row per processed item with its outcome, sizes, and
// flattened diagnostics. The store applies WAL and busy-timeout pragmas on
// open, retries on SQLITE_BUSY with backoff, and holds a filesystem lock
// beside the database so concurrent CLI invocations serialize their writes.
package journal
