// Package chain implements the multi-plugin backend family: an ordered list
// of named minifier plugins applied to a payload in sequence.
//
// Plugins are resolved through an explicit registry populated at build time.
// Lookup honors the historical imgmin-<name> naming convention before the
// bare name, and an unregistered identifier fails construction with a
// descriptive configuration error instead of a dynamic module probe.
package chain
