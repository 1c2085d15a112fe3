package backend

import (
	"context"
	"fmt"
	"math"

	"pixelmill/internal/services"
)

// Resize is the codec-agnostic preprocessing block backends accept.
// Enabled defaults to true when width or height is set; an explicit false
// disables the resize even when dimensions are present.
type Resize struct {
	Enabled *bool
	Unit    string // "px" (default) or "percent"
	Width   int
	Height  int
}

// Dimensions are the decoded pixel dimensions of a source payload.
type Dimensions struct {
	Width  int
	Height int
}

// Prober reports the decoded dimensions of a payload. Percent-unit resizes
// resolve against these before anything is handed to an encoder.
type Prober interface {
	Metadata(ctx context.Context, data []byte) (Dimensions, error)
}

// ResizePlan is a resolved resize in absolute pixels.
type ResizePlan struct {
	Width  int
	Height int
}

// ResolveResize turns a Resize block into an absolute-pixel plan. It
// returns nil when no resize applies. Percent units are resolved against
// the probed source dimensions with ceiling rounding.
func ResolveResize(ctx context.Context, r *Resize, data []byte, prober Prober) (*ResizePlan, error) {
	if r == nil {
		return nil, nil
	}
	if r.Enabled != nil && !*r.Enabled {
		return nil, nil
	}
	if r.Width <= 0 && r.Height <= 0 {
		return nil, nil
	}
	switch r.Unit {
	case "", "px":
		return &ResizePlan{Width: r.Width, Height: r.Height}, nil
	case "percent":
		if prober == nil {
			return nil, services.Wrap(services.ErrConfiguration, "backend", "resize", "percent resize requires a metadata prober", nil)
		}
		dims, err := prober.Metadata(ctx, data)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "backend", "resize", "probe source dimensions", err)
		}
		plan := &ResizePlan{}
		if r.Width > 0 {
			plan.Width = int(math.Ceil(float64(dims.Width) * float64(r.Width) / 100))
		}
		if r.Height > 0 {
			plan.Height = int(math.Ceil(float64(dims.Height) * float64(r.Height) / 100))
		}
		return plan, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "backend", "resize", fmt.Sprintf("unknown resize unit %q", r.Unit), nil)
	}
}
