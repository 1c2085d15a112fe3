// Package encoderpool provides the shared worker-pool resource used by
// pool-based backends.
//
// The pool is an explicitly owned handle: the caller constructs it, decides
// whether it is shared across backends, and tears it down. Backends that
// receive a shared pool must not close it; backends that build an ad-hoc
// pool for a single call close it on both success and failure paths. Retain
// and Release keep a reference count so the last independent close wins only
// when nothing still reuses the pool, and Close itself is idempotent.
package encoderpool
