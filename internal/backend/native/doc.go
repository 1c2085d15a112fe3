// Package native implements the single-processor backend family: one
// external image processor that can probe metadata, resize, rotate, and
// encode in a single invocation.
//
// Percent-unit resizes are resolved against the processor's own metadata
// probe before the encode call, so the processor always receives absolute
// pixel dimensions.
package native
