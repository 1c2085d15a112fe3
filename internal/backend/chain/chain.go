package chain

import (
	"context"
	"fmt"

	"pixelmill/internal/backend"
	"pixelmill/internal/item"
	"pixelmill/internal/services"
)

// PluginSpec selects one registered plugin and its options.
type PluginSpec struct {
	Name    string
	Options map[string]any
}

// Options configures a chain backend.
type Options struct {
	Registry *Registry
	Plugins  []PluginSpec
}

type resolvedPlugin struct {
	name string
	fn   Plugin
	opts map[string]any
}

// Chain applies its configured plugins to a payload in order.
type Chain struct {
	mode    backend.Mode
	plugins []resolvedPlugin
}

// NewMinify builds the minify variant of the chain backend.
func NewMinify(opts Options) (*Chain, error) { return newChain(backend.ModeMinify, opts) }

// NewGenerate builds the generate variant of the chain backend.
func NewGenerate(opts Options) (*Chain, error) { return newChain(backend.ModeGenerate, opts) }

func newChain(mode backend.Mode, opts Options) (*Chain, error) {
	if opts.Registry == nil {
		return nil, services.Wrap(services.ErrConfiguration, "chain", "new", "a plugin registry is required", nil)
	}
	if len(opts.Plugins) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "chain", "new", "at least one plugin must be configured", nil)
	}
	c := &Chain{mode: mode, plugins: make([]resolvedPlugin, 0, len(opts.Plugins))}
	for i, spec := range opts.Plugins {
		if spec.Name == "" {
			return nil, services.Wrap(services.ErrConfiguration, "chain", "new", fmt.Sprintf("plugin spec at index %d has no name", i), nil)
		}
		fn, err := opts.Registry.Resolve(spec.Name)
		if err != nil {
			return nil, err
		}
		c.plugins = append(c.plugins, resolvedPlugin{name: spec.Name, fn: fn, opts: spec.Options})
	}
	return c, nil
}

func (c *Chain) Name() string { return "chain-" + c.mode.String() }

// Transform runs every configured plugin over the payload in order. A
// plugin fault becomes an item-level error and the step produces nothing.
func (c *Chain) Transform(ctx context.Context, it *item.Item) (*item.Item, error) {
	ctx = services.WithItemID(services.WithBackend(ctx, c.Name()), it.ID)
	data := it.Data
	for _, p := range c.plugins {
		out, err := p.fn(ctx, data, p.opts)
		if err != nil {
			backend.RecordFailure(it, c.Name(), fmt.Errorf("plugin %q: %w", p.name, err))
			return nil, nil
		}
		data = out
	}
	if c.mode == backend.ModeGenerate {
		return backend.FinishGenerate(it, data, c.Name(), ""), nil
	}
	return backend.FinishMinify(it, data, c.Name()), nil
}

var _ backend.Backend = (*Chain)(nil)
