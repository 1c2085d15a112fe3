// Package backend defines the uniform transform contract every codec
// adapter implements, plus the output-construction rules they share.
//
// A backend consumes a work item and either produces a fresh item (payload
// replaced, filename extension possibly rewritten, provenance metadata
// merged), declines with a nil item after recording a diagnostic on the
// input, or fails with a configuration error. External encoder faults never
// escape a backend; they are captured and converted to item-level errors at
// this boundary.
//
// Minify backends keep the logical format: when the re-encoded bytes sniff
// as a different format than the filename declares, the step aborts with a
// warning instead of silently changing formats. Remote locators are exempt
// from that check because they carry no local extension to compare against;
// the carve-out is deliberate, inherited behavior. Generate backends always
// rename the output to the format the sniffer actually observed.
package backend
