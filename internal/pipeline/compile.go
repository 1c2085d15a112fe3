package pipeline

import (
	"fmt"

	"pixelmill/internal/backend"
	"pixelmill/internal/backend/chain"
	"pixelmill/internal/backend/native"
	"pixelmill/internal/backend/pool"
	"pixelmill/internal/backend/vector"
	"pixelmill/internal/services"
)

// Kind tags a step spec with its backend family.
type Kind string

const (
	KindChain  Kind = "chain"
	KindPool   Kind = "pool"
	KindNative Kind = "native"
	KindVector Kind = "vector"
)

// StepSpec is one tagged step description: exactly the option structure
// matching Kind is consulted, nothing is probed at run time.
type StepSpec struct {
	Kind Kind
	Mode backend.Mode

	Chain  chain.Options
	Pool   pool.Options
	Native native.Options
	Vector vector.Options
}

// Compile turns step specs into backends, switching exhaustively over the
// kind tag. Unknown kinds and unsupported kind/mode pairings are
// configuration errors.
func Compile(specs []StepSpec) ([]backend.Backend, error) {
	steps := make([]backend.Backend, 0, len(specs))
	for i, spec := range specs {
		b, err := compileStep(spec)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, b)
	}
	return steps, nil
}

func compileStep(spec StepSpec) (backend.Backend, error) {
	switch spec.Kind {
	case KindChain:
		if spec.Mode == backend.ModeGenerate {
			return chain.NewGenerate(spec.Chain)
		}
		return chain.NewMinify(spec.Chain)
	case KindPool:
		if spec.Mode == backend.ModeGenerate {
			return pool.NewGenerate(spec.Pool)
		}
		return pool.NewMinify(spec.Pool)
	case KindNative:
		if spec.Mode == backend.ModeGenerate {
			return native.NewGenerate(spec.Native)
		}
		return native.NewMinify(spec.Native)
	case KindVector:
		if spec.Mode == backend.ModeGenerate {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "compile", "vector backends have no generate variant", nil)
		}
		return vector.NewMinify(spec.Vector)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "compile", fmt.Sprintf("unknown backend kind %q", spec.Kind), nil)
	}
}
