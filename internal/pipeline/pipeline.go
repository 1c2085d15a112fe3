package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"pixelmill/internal/backend"
	"pixelmill/internal/item"
	"pixelmill/internal/scheduler"
	"pixelmill/internal/services"
)

// Pipeline applies an ordered list of backends to work items.
type Pipeline struct {
	steps  []backend.Backend
	logger *slog.Logger
}

// New constructs a pipeline over the given steps.
func New(steps []backend.Backend, logger *slog.Logger) (*Pipeline, error) {
	for i, s := range steps {
		if s == nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", fmt.Sprintf("nil backend at step %d", i), nil)
		}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{steps: steps, logger: logger}, nil
}

// Setup initializes every lifecycle-aware step. On failure the already
// initialized steps are torn down again.
func (p *Pipeline) Setup(ctx context.Context) error {
	for i, s := range p.steps {
		lc, ok := s.(backend.Lifecycle)
		if !ok {
			continue
		}
		if err := lc.Setup(ctx); err != nil {
			p.teardownRange(ctx, i)
			return err
		}
	}
	return nil
}

// Teardown releases every lifecycle-aware step. It runs on both success
// and failure paths and tolerates repeated calls by the backends' own
// idempotence.
func (p *Pipeline) Teardown(ctx context.Context) error {
	return p.teardownRange(ctx, len(p.steps))
}

func (p *Pipeline) teardownRange(ctx context.Context, n int) error {
	var first error
	for i := 0; i < n; i++ {
		lc, ok := p.steps[i].(backend.Lifecycle)
		if !ok {
			continue
		}
		if err := lc.Teardown(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run applies the steps to one item in order. A step that declines keeps
// the previous item; configuration errors abort the call.
func (p *Pipeline) Run(ctx context.Context, it *item.Item) (*item.Item, error) {
	ctx = services.WithItemID(ctx, it.ID)
	current := it
	for _, step := range p.steps {
		out, err := step.Transform(ctx, current)
		if err != nil {
			return nil, err
		}
		if out == nil {
			p.logger.Debug("step produced no result",
				slog.String("backend", step.Name()),
				slog.String("filename", current.Filename))
			continue
		}
		current = out
	}
	return current, nil
}

// RunBatch pushes every item's full step sequence through the bounded
// scheduler as one task, so the limit caps in-flight items rather than
// individual steps. Lifecycle setup and teardown bracket the batch;
// teardown runs even when the batch fails.
func (p *Pipeline) RunBatch(ctx context.Context, items []*item.Item, limit int) ([]*item.Item, error) {
	if err := p.Setup(ctx); err != nil {
		return nil, err
	}
	defer p.Teardown(ctx)

	tasks := make([]scheduler.Task[*item.Item], len(items))
	for i, it := range items {
		it := it
		tasks[i] = func(taskCtx context.Context) (*item.Item, error) {
			return p.Run(taskCtx, it)
		}
	}
	return scheduler.Throttle(ctx, limit, tasks)
}
