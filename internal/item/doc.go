// Package item defines the work item value that flows through the pipeline.
//
// An Item carries a logical filename, the current payload bytes, ordered
// warning and error diagnostics, and an open metadata map. Transform steps
// never mutate a caller's item in place: they clone it, update the clone,
// and hand it back, or they record a failure on the input's diagnostics and
// produce nothing. Metadata merges additively only, so provenance lists such
// as generatedBy accumulate across steps instead of being overwritten.
package item
