// Package config loads, normalizes, and validates pixelmill configuration.
//
// It supplies repository defaults, expands tilde paths, reads TOML files,
// and turns the ordered [[step]] list into the data the CLI compiles into
// pipeline steps. Obtain settings through this package so downstream code
// receives sanitized paths and clear validation errors.
package config
