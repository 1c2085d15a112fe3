package backend

import (
	"context"

	"pixelmill/internal/item"
)

// Mode selects whether a backend re-encodes in place or into a new format.
type Mode int

const (
	ModeMinify Mode = iota
	ModeGenerate
)

func (m Mode) String() string {
	if m == ModeGenerate {
		return "generate"
	}
	return "minify"
}

// Backend is the uniform transform contract. Transform returns a new item
// on success, (nil, nil) when the step declined or failed per-item (with
// the diagnostic recorded on the input item), and a non-nil error only for
// configuration problems.
type Backend interface {
	Name() string
	Transform(ctx context.Context, it *item.Item) (*item.Item, error)
}

// Lifecycle is implemented by backends holding a shared, expensive resource
// that outlives a single Transform call.
type Lifecycle interface {
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
}
