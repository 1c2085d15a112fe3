// Package vector implements the SVG minifier backend family. Vector
// payloads carry no binary signature the sniffer recognizes, so this family
// is minify-only and performs no format-match check or rename.
package vector

import (
	"context"

	"pixelmill/internal/backend"
	"pixelmill/internal/item"
	"pixelmill/internal/services"
)

// Minifier wraps the external SVG optimizer.
type Minifier interface {
	Minify(ctx context.Context, data []byte, opts map[string]any) ([]byte, error)
}

// Options configures the vector backend.
type Options struct {
	Minifier Minifier
	Minify   map[string]any
}

// Backend minifies SVG payloads.
type Backend struct {
	opts Options
}

// NewMinify builds the backend. Vector optimization has no generate
// variant.
func NewMinify(opts Options) (*Backend, error) {
	if opts.Minifier == nil {
		return nil, services.Wrap(services.ErrConfiguration, "vector", "new", "a minifier is required", nil)
	}
	return &Backend{opts: opts}, nil
}

func (b *Backend) Name() string { return "vector-minify" }

// Transform minifies the payload in place.
func (b *Backend) Transform(ctx context.Context, it *item.Item) (*item.Item, error) {
	ctx = services.WithItemID(services.WithBackend(ctx, b.Name()), it.ID)
	minified, err := b.opts.Minifier.Minify(ctx, it.Data, b.opts.Minify)
	if err != nil {
		backend.RecordFailure(it, b.Name(), err)
		return nil, nil
	}
	out := it.Clone()
	out.Data = minified
	out.MergeInfo(map[string]any{backend.InfoMinified: true})
	out.AppendInfoString(backend.InfoMinimizedBy, b.Name())
	return out, nil
}

var _ backend.Backend = (*Backend)(nil)
