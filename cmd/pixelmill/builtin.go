package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"regexp"
	"strings"

	"pixelmill/internal/backend"
	"pixelmill/internal/backend/chain"
	"pixelmill/internal/backend/native"
	"pixelmill/internal/encoderpool"
	"pixelmill/internal/sniff"
)

// The CLI bundles the standard library's image codecs as its stock
// collaborators so the pipeline is usable out of the box. The orchestration
// core never touches these; external encoders plug into the same seams.

func builtinRegistry() *chain.Registry {
	reg := chain.NewRegistry()
	register := func(name, format string) {
		_ = reg.Register(name, func(_ context.Context, data []byte, opts map[string]any) ([]byte, error) {
			detected, ok := sniff.Detect(data)
			if !ok || detected.Extension != format {
				// Plugins only handle their own format; anything else
				// passes through untouched.
				return data, nil
			}
			img, err := decodeImage(data)
			if err != nil {
				return nil, err
			}
			return encodeImage(img, format, opts)
		})
	}
	register("png", "png")
	register("jpeg", "jpg")
	register("gif", "gif")
	return reg
}

type builtinCodec struct {
	ext string
}

func (c builtinCodec) Name() string      { return "builtin-" + c.ext }
func (c builtinCodec) Extension() string { return c.ext }

func (c builtinCodec) Encode(_ context.Context, data []byte, opts map[string]any) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	if plan, ok := opts["resize"].(*backend.ResizePlan); ok && plan != nil {
		img = scaleNearest(img, plan.Width, plan.Height)
	}
	return encodeImage(img, c.ext, opts)
}

func builtinCodecs() []encoderpool.Codec {
	return []encoderpool.Codec{
		builtinCodec{ext: "png"},
		builtinCodec{ext: "jpg"},
		builtinCodec{ext: "gif"},
	}
}

// builtinProcessor adapts the stdlib codecs to the native backend's
// processor seam.
type builtinProcessor struct{}

func (builtinProcessor) Metadata(_ context.Context, data []byte) (backend.Dimensions, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return backend.Dimensions{}, err
	}
	return backend.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func (builtinProcessor) Process(_ context.Context, data []byte, spec native.ProcessSpec) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	if spec.Rotate != nil {
		img, err = rotateQuarter(img, *spec.Rotate)
		if err != nil {
			return nil, err
		}
	}
	if spec.Resize != nil {
		img = scaleNearest(img, spec.Resize.Width, spec.Resize.Height)
	}
	return encodeImage(img, spec.Format, spec.Options)
}

// builtinSVGMinifier squeezes inter-tag whitespace. A real deployment
// plugs an external optimizer into the same seam.
type builtinSVGMinifier struct{}

var interTagSpace = regexp.MustCompile(`>\s+<`)

func (builtinSVGMinifier) Minify(_ context.Context, data []byte, _ map[string]any) ([]byte, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "<") {
		return nil, fmt.Errorf("payload does not look like SVG markup")
	}
	return []byte(interTagSpace.ReplaceAllString(trimmed, "><")), nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func encodeImage(img image.Image, format string, opts map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "jpg", "jpeg":
		quality := intOption(opts, "quality", 85)
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("builtin codecs cannot produce %q", format)
	}
	return buf.Bytes(), nil
}

func intOption(opts map[string]any, key string, fallback int) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// scaleNearest resizes with nearest-neighbor sampling. A zero width or
// height is derived from the other dimension preserving aspect ratio.
func scaleNearest(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 || (width <= 0 && height <= 0) {
		return img
	}
	if width <= 0 {
		width = srcW * height / srcH
	}
	if height <= 0 {
		height = srcH * width / srcW
	}
	if width == srcW && height == srcH {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		sy := bounds.Min.Y + y*srcH/height
		for x := 0; x < width; x++ {
			sx := bounds.Min.X + x*srcW/width
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}

func rotateQuarter(img image.Image, degrees int) (image.Image, error) {
	degrees = ((degrees % 360) + 360) % 360
	if degrees%90 != 0 {
		return nil, fmt.Errorf("builtin processor only rotates in 90 degree steps, got %d", degrees)
	}
	if degrees == 0 {
		return img, nil
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	var dst *image.RGBA
	if degrees == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch degrees {
			case 90:
				dst.Set(h-1-y, x, c)
			case 180:
				dst.Set(w-1-x, h-1-y, c)
			case 270:
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst, nil
}
