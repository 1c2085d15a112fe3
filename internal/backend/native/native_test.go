package native

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pixelmill/internal/backend"
	"pixelmill/internal/item"
	"pixelmill/internal/services"
)

var (
	pngBytes  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x04, 'I', 'D', 'A', 'T', 0, 0, 0, 0, 0, 0, 0, 0}
	webpBytes = append([]byte("RIFF\x24\x00\x00\x00"), []byte("WEBPVP8 ")...)
)

type fakeProcessor struct {
	dims     backend.Dimensions
	probeErr error
	out      []byte
	err      error
	lastSpec ProcessSpec
	calls    int
}

func (p *fakeProcessor) Metadata(context.Context, []byte) (backend.Dimensions, error) {
	return p.dims, p.probeErr
}

func (p *fakeProcessor) Process(_ context.Context, data []byte, spec ProcessSpec) ([]byte, error) {
	p.calls++
	p.lastSpec = spec
	if p.err != nil {
		return nil, p.err
	}
	if p.out != nil {
		return p.out, nil
	}
	return data, nil
}

func TestNew_RequiresProcessor(t *testing.T) {
	if _, err := NewMinify(Options{}); !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestMinify_Success(t *testing.T) {
	proc := &fakeProcessor{out: pngBytes}
	b, err := NewMinify(Options{Processor: proc, EncodeOptions: map[string]map[string]any{"png": {"compressionLevel": 9}}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	in := item.New("logo.png", pngBytes)
	out, err := b.Transform(context.Background(), in)
	if err != nil || out == nil {
		t.Fatalf("transform: %v %v", out, err)
	}
	if proc.calls != 1 {
		t.Fatalf("processor invoked %d times, want exactly once", proc.calls)
	}
	if proc.lastSpec.Format != "png" {
		t.Fatalf("format = %q", proc.lastSpec.Format)
	}
	if proc.lastSpec.Options["compressionLevel"] != 9 {
		t.Fatalf("options not forwarded: %v", proc.lastSpec.Options)
	}
}

func TestGenerate_SingleTargetRenames(t *testing.T) {
	proc := &fakeProcessor{out: webpBytes}
	b, _ := NewGenerate(Options{Processor: proc, EncodeOptions: map[string]map[string]any{"webp": {}}})
	in := item.New("photos/cat.jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0})
	out, err := b.Transform(context.Background(), in)
	if err != nil || out == nil {
		t.Fatalf("transform: %v %v", out, err)
	}
	if out.Filename != "photos/cat.webp" {
		t.Fatalf("filename = %q", out.Filename)
	}
}

func TestGenerate_TargetCardinality(t *testing.T) {
	proc := &fakeProcessor{}
	for name, encodeOpts := range map[string]map[string]map[string]any{
		"zero": {},
		"two":  {"webp": {}, "avif": {}},
	} {
		t.Run(name, func(t *testing.T) {
			b, _ := NewGenerate(Options{Processor: proc, EncodeOptions: encodeOpts})
			in := item.New("logo.png", pngBytes)
			out, err := b.Transform(context.Background(), in)
			if err != nil || out != nil {
				t.Fatalf("expected nil result, got %v %v", out, err)
			}
			if len(in.Errors) != 1 {
				t.Fatalf("expected exactly one error, got %+v", in.Errors)
			}
		})
	}
}

func TestPercentResizeUsesProcessorProbe(t *testing.T) {
	proc := &fakeProcessor{dims: backend.Dimensions{Width: 640, Height: 481}, out: pngBytes}
	b, _ := NewMinify(Options{
		Processor: proc,
		Resize:    &backend.Resize{Unit: "percent", Width: 25, Height: 25},
	})
	in := item.New("logo.png", pngBytes)
	if out, err := b.Transform(context.Background(), in); err != nil || out == nil {
		t.Fatalf("transform: %v %v", out, err)
	}
	plan := proc.lastSpec.Resize
	if plan == nil || plan.Width != 160 || plan.Height != 121 {
		t.Fatalf("resize plan = %+v, want 160x121 (ceiling rounded)", plan)
	}
}

func TestResizeDisabledIsSkipped(t *testing.T) {
	enabled := false
	proc := &fakeProcessor{out: pngBytes}
	b, _ := NewMinify(Options{
		Processor: proc,
		Resize:    &backend.Resize{Enabled: &enabled, Unit: "percent", Width: 25},
	})
	in := item.New("logo.png", pngBytes)
	if out, err := b.Transform(context.Background(), in); err != nil || out == nil {
		t.Fatalf("transform: %v %v", out, err)
	}
	if proc.lastSpec.Resize != nil {
		t.Fatalf("disabled resize still planned: %+v", proc.lastSpec.Resize)
	}
}

func TestRotateForwarded(t *testing.T) {
	rotate := 90
	proc := &fakeProcessor{out: pngBytes}
	b, _ := NewMinify(Options{Processor: proc, Rotate: &rotate})
	in := item.New("logo.png", pngBytes)
	if out, err := b.Transform(context.Background(), in); err != nil || out == nil {
		t.Fatalf("transform: %v %v", out, err)
	}
	if proc.lastSpec.Rotate == nil || *proc.lastSpec.Rotate != 90 {
		t.Fatalf("rotate not forwarded: %+v", proc.lastSpec.Rotate)
	}
}

func TestProbeFailureBecomesItemError(t *testing.T) {
	proc := &fakeProcessor{probeErr: errors.New("corrupt header")}
	b, _ := NewMinify(Options{Processor: proc, Resize: &backend.Resize{Unit: "percent", Width: 50}})
	in := item.New("logo.png", pngBytes)
	out, err := b.Transform(context.Background(), in)
	if err != nil {
		t.Fatalf("probe faults must not propagate: %v", err)
	}
	if out != nil || len(in.Errors) != 1 {
		t.Fatalf("expected recorded failure, got %v %+v", out, in.Errors)
	}
	if !strings.Contains(in.Errors[0].Message, "corrupt header") {
		t.Fatalf("error should carry the cause: %+v", in.Errors[0])
	}
}

func TestProcessorFaultBecomesItemError(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("libvips aborted")}
	b, _ := NewMinify(Options{Processor: proc})
	in := item.New("logo.png", pngBytes)
	out, err := b.Transform(context.Background(), in)
	if err != nil {
		t.Fatalf("processor faults must not propagate: %v", err)
	}
	if out != nil || len(in.Errors) != 1 {
		t.Fatalf("expected recorded failure, got %v %+v", out, in.Errors)
	}
}

func TestMinify_MismatchWarns(t *testing.T) {
	proc := &fakeProcessor{out: webpBytes}
	b, _ := NewMinify(Options{Processor: proc})
	in := item.New("logo.png", pngBytes)
	out, err := b.Transform(context.Background(), in)
	if err != nil || out != nil {
		t.Fatalf("expected nil result, got %v %v", out, err)
	}
	if len(in.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", in.Warnings)
	}
}
