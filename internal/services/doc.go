// Package services defines the shared error taxonomy and context helpers
// used across pixelmill backends and the pipeline orchestrator.
//
// Configuration problems, external encoder faults, and validation failures
// are tagged with sentinel markers so callers can classify a failure without
// parsing message text. Context helpers carry the current work item and
// backend identifiers so log lines from deep inside an encoder call still
// name the item they belong to.
package services
