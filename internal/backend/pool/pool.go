package pool

import (
	"context"
	"fmt"
	"runtime"

	"pixelmill/internal/backend"
	"pixelmill/internal/encoderpool"
	"pixelmill/internal/item"
	"pixelmill/internal/services"
	"pixelmill/internal/sniff"
)

// Options configures a pool backend.
type Options struct {
	// Pool is an optional caller-owned shared pool. When nil, an ad-hoc
	// pool is created per Transform call from Workers and Codecs.
	Pool    *encoderpool.Pool
	Workers int
	Codecs  []encoderpool.Codec

	// EncodeOptions maps a target format to its codec options. Minify uses
	// the entry matching the sniffed input format; generate requires
	// exactly one entry.
	EncodeOptions map[string]map[string]any

	Resize *backend.Resize
	Prober backend.Prober
}

// Backend runs codecs on an encoder pool.
type Backend struct {
	mode backend.Mode
	opts Options
}

// NewMinify builds the minify variant.
func NewMinify(opts Options) (*Backend, error) { return newBackend(backend.ModeMinify, opts) }

// NewGenerate builds the generate variant.
func NewGenerate(opts Options) (*Backend, error) { return newBackend(backend.ModeGenerate, opts) }

func newBackend(mode backend.Mode, opts Options) (*Backend, error) {
	if opts.Pool == nil && len(opts.Codecs) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "pool", "new", "either a shared pool or a codec set is required", nil)
	}
	if opts.Workers < 0 {
		return nil, services.Wrap(services.ErrConfiguration, "pool", "new", fmt.Sprintf("worker count must not be negative, got %d", opts.Workers), nil)
	}
	return &Backend{mode: mode, opts: opts}, nil
}

func (b *Backend) Name() string { return "pool-" + b.mode.String() }

// Setup retains the shared pool so a sibling's teardown cannot close it
// mid-batch. Ad-hoc mode has nothing to set up.
func (b *Backend) Setup(context.Context) error {
	if b.opts.Pool != nil {
		b.opts.Pool.MarkShared()
		b.opts.Pool.Retain()
	}
	return nil
}

// Teardown releases the shared pool reference. It never closes a shared
// pool; that is the owner's decision.
func (b *Backend) Teardown(context.Context) error {
	if b.opts.Pool != nil {
		b.opts.Pool.Release()
	}
	return nil
}

// Transform re-encodes the item's payload on the pool.
func (b *Backend) Transform(ctx context.Context, it *item.Item) (*item.Item, error) {
	ctx = services.WithItemID(services.WithBackend(ctx, b.Name()), it.ID)

	p := b.opts.Pool
	if p == nil {
		workers := b.opts.Workers
		if workers == 0 {
			workers = runtime.NumCPU()
		}
		adHoc, err := encoderpool.New(workers, b.opts.Codecs...)
		if err != nil {
			return nil, err
		}
		defer adHoc.Close()
		p = adHoc
	}

	format, err := b.targetFormat(it)
	if err != nil {
		return nil, err
	}
	if format == "" {
		return nil, nil
	}

	encodeOpts := b.opts.EncodeOptions[format]
	if plan, err := backend.ResolveResize(ctx, b.opts.Resize, it.Data, b.opts.Prober); err != nil {
		if services.IsConfiguration(err) {
			return nil, err
		}
		backend.RecordFailure(it, b.Name(), err)
		return nil, nil
	} else if plan != nil {
		merged := make(map[string]any, len(encodeOpts)+1)
		for k, v := range encodeOpts {
			merged[k] = v
		}
		merged["resize"] = plan
		encodeOpts = merged
	}

	encoded, err := p.Encode(ctx, format, it.Data, encodeOpts)
	if err != nil {
		if services.IsConfiguration(err) {
			return nil, err
		}
		backend.RecordFailure(it, b.Name(), err)
		return nil, nil
	}

	if b.mode == backend.ModeGenerate {
		return backend.FinishGenerate(it, encoded, b.Name(), format), nil
	}
	return backend.FinishMinify(it, encoded, b.Name()), nil
}

// targetFormat decides which codec the call uses. An empty format with no
// error means the step already recorded a diagnostic and should decline.
func (b *Backend) targetFormat(it *item.Item) (string, error) {
	if b.mode == backend.ModeGenerate {
		switch len(b.opts.EncodeOptions) {
		case 0:
			it.AddError(fmt.Sprintf("%s: no target format configured on encodeOptions, nothing to do", b.Name()))
			return "", nil
		case 1:
			for format := range b.opts.EncodeOptions {
				return format, nil
			}
		}
		it.AddError(fmt.Sprintf("%s: %d target formats configured on encodeOptions, one output per call", b.Name(), len(b.opts.EncodeOptions)))
		return "", nil
	}

	detected, ok := sniff.Detect(it.Data)
	if !ok {
		it.AddError(fmt.Sprintf("%s: input format not recognized", b.Name()))
		return "", nil
	}
	return detected.Extension, nil
}

var (
	_ backend.Backend   = (*Backend)(nil)
	_ backend.Lifecycle = (*Backend)(nil)
)
