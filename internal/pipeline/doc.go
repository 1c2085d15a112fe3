// Package pipeline sequences backends over work items and fans batches out
// through the bounded scheduler.
//
// A step that produces no result leaves the previous item in effect, so a
// batch of independent items can partially succeed: per-item failures stay
// on the items, and only configuration errors or a scheduler-level failure
// reject a whole call. Step lists are compiled from tagged step specs with
// an exhaustive switch over the backend kind; there is no duck typing of
// options at run time.
package pipeline
