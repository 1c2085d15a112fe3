// Package sniff classifies image payloads by their byte signatures.
//
// Detection walks a fixed, ordered rule cascade: each rule tests literal
// bytes at an offset, optionally under a bitmask, and the first match wins.
// Container formats (PNG/APNG, ISO-BMFF, the JPEG-2000 family) carry a
// second-level dispatch that inspects an embedded chunk or brand field
// after the outer signature matches. The cascade order is load-bearing:
// camera raw formats share a TIFF header with generic TIFF and must be
// tried first, and JPEG-2000 sub-brands must resolve before any generic
// container fallthrough.
//
// Detect never trusts a filename and never mutates its input; the same
// bytes always classify the same way.
package sniff
