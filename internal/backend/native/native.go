package native

import (
	"context"
	"fmt"

	"pixelmill/internal/backend"
	"pixelmill/internal/item"
	"pixelmill/internal/services"
	"pixelmill/internal/sniff"
)

// ProcessSpec is one processor invocation: optional preprocessing followed
// by an encode into Format.
type ProcessSpec struct {
	Format  string
	Options map[string]any
	Resize  *backend.ResizePlan
	Rotate  *int
}

// Processor wraps the external image processor. It doubles as the metadata
// prober used to resolve percent resizes.
type Processor interface {
	backend.Prober
	Process(ctx context.Context, data []byte, spec ProcessSpec) ([]byte, error)
}

// Options configures a native backend.
type Options struct {
	Processor     Processor
	EncodeOptions map[string]map[string]any
	Resize        *backend.Resize
	Rotate        *int
}

// Backend drives a single external processor.
type Backend struct {
	mode backend.Mode
	opts Options
}

// NewMinify builds the minify variant.
func NewMinify(opts Options) (*Backend, error) { return newBackend(backend.ModeMinify, opts) }

// NewGenerate builds the generate variant.
func NewGenerate(opts Options) (*Backend, error) { return newBackend(backend.ModeGenerate, opts) }

func newBackend(mode backend.Mode, opts Options) (*Backend, error) {
	if opts.Processor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "native", "new", "a processor is required", nil)
	}
	return &Backend{mode: mode, opts: opts}, nil
}

func (b *Backend) Name() string { return "native-" + b.mode.String() }

// Transform probes, preprocesses, and re-encodes the payload in one
// processor call.
func (b *Backend) Transform(ctx context.Context, it *item.Item) (*item.Item, error) {
	ctx = services.WithItemID(services.WithBackend(ctx, b.Name()), it.ID)

	format, err := b.targetFormat(it)
	if err != nil || format == "" {
		return nil, err
	}

	plan, err := backend.ResolveResize(ctx, b.opts.Resize, it.Data, b.opts.Processor)
	if err != nil {
		if services.IsConfiguration(err) {
			return nil, err
		}
		backend.RecordFailure(it, b.Name(), err)
		return nil, nil
	}

	spec := ProcessSpec{
		Format:  format,
		Options: b.opts.EncodeOptions[format],
		Resize:  plan,
		Rotate:  b.opts.Rotate,
	}
	encoded, err := b.opts.Processor.Process(ctx, it.Data, spec)
	if err != nil {
		backend.RecordFailure(it, b.Name(), err)
		return nil, nil
	}

	if b.mode == backend.ModeGenerate {
		return backend.FinishGenerate(it, encoded, b.Name(), format), nil
	}
	return backend.FinishMinify(it, encoded, b.Name()), nil
}

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

var _ backend.Backend = (*Backend)(nil)
