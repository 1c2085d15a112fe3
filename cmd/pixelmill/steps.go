package main

import (
	"fmt"

	"pixelmill/internal/backend"
	"pixelmill/internal/backend/chain"
	"pixelmill/internal/backend/native"
	"pixelmill/internal/backend/pool"
	"pixelmill/internal/backend/vector"
	"pixelmill/internal/config"
	"pixelmill/internal/pipeline"
)

// buildStepSpecs maps configuration steps onto pipeline step specs,
// binding the builtin collaborators for each backend family.
func buildStepSpecs(cfg *config.Config) ([]pipeline.StepSpec, error) {
	registry := builtinRegistry()
	specs := make([]pipeline.StepSpec, 0, len(cfg.Steps))
	for i, step := range cfg.Steps {
		mode, err := parseMode(step.Mode)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		spec := pipeline.StepSpec{Kind: pipeline.Kind(step.Kind), Mode: mode}
		switch spec.Kind {
		case pipeline.KindChain:
			plugins := make([]chain.PluginSpec, 0, len(step.Plugins))
			for _, ref := range step.Plugins {
				plugins = append(plugins, chain.PluginSpec{Name: ref.Name, Options: ref.Options})
			}
			spec.Chain = chain.Options{Registry: registry, Plugins: plugins}
		case pipeline.KindPool:
			spec.Pool = pool.Options{
				Workers:       step.Workers,
				Codecs:        builtinCodecs(),
				EncodeOptions: step.Encode,
				Resize:        convertResize(step.Resize),
				Prober:        builtinProcessor{},
			}
		case pipeline.KindNative:
			spec.Native = native.Options{
				Processor:     builtinProcessor{},
				EncodeOptions: step.Encode,
				Resize:        convertResize(step.Resize),
				Rotate:        step.Rotate,
			}
		case pipeline.KindVector:
			spec.Vector = vector.Options{Minifier: builtinSVGMinifier{}}
		default:
			return nil, fmt.Errorf("step %d: unknown kind %q", i, step.Kind)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseMode(mode string) (backend.Mode, error) {
	switch mode {
	case "", "minify":
		return backend.ModeMinify, nil
	case "generate":
		return backend.ModeGenerate, nil
	default:
		return backend.ModeMinify, fmt.Errorf("unknown mode %q", mode)
	}
}

func convertResize(r *config.Resize) *backend.Resize {
	if r == nil {
		return nil
	}
	return &backend.Resize{
		Enabled: r.Enabled,
		Unit:    r.Unit,
		Width:   r.Width,
		Height:  r.Height,
	}
}
