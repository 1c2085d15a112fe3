// Package pool implements the backend family whose codecs execute on a
// bounded encoder pool.
//
// A backend may be handed an already-initialized shared pool, in which case
// it retains a reference during Setup, releases it during Teardown, and
// never closes the pool itself. Without a shared pool it builds an ad-hoc
// pool for each Transform call and closes it on both the success and the
// failure path.
package pool
