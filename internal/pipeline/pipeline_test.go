package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"pixelmill/internal/backend"
	"pixelmill/internal/backend/chain"
	"pixelmill/internal/item"
	"pixelmill/internal/services"
)

type stubBackend struct {
	name      string
	transform func(ctx context.Context, it *item.Item) (*item.Item, error)
	setups    atomic.Int64
	teardowns atomic.Int64
	failSetup bool
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Transform(ctx context.Context, it *item.Item) (*item.Item, error) {
	if s.transform != nil {
		return s.transform(ctx, it)
	}
	out := it.Clone()
	out.AppendInfoString("touchedBy", s.name)
	return out, nil
}

func (s *stubBackend) Setup(context.Context) error {
	s.setups.Add(1)
	if s.failSetup {
		return errors.New("setup failed")
	}
	return nil
}

func (s *stubBackend) Teardown(context.Context) error {
	s.teardowns.Add(1)
	return nil
}

func TestRun_AppliesStepsInOrder(t *testing.T) {
	p, err := New([]backend.Backend{&stubBackend{name: "a"}, &stubBackend{name: "b"}}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := p.Run(context.Background(), item.New("x.png", nil))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	touched := out.Info["touchedBy"].([]string)
	if len(touched) != 2 || touched[0] != "a" || touched[1] != "b" {
		t.Fatalf("step order: %v", touched)
	}
}

func TestRun_NilStepResultKeepsPreviousItem(t *testing.T) {
	declining := &stubBackend{name: "declines", transform: func(_ context.Context, it *item.Item) (*item.Item, error) {
		it.AddWarning("skipped")
		return nil, nil
	}}
	p, _ := New([]backend.Backend{&stubBackend{name: "a"}, declining, &stubBackend{name: "c"}}, nil)
	in := item.New("x.png", nil)
	out, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	touched := out.Info["touchedBy"].([]string)
	if len(touched) != 2 || touched[0] != "a" || touched[1] != "c" {
		t.Fatalf("declined step should be transparent: %v", touched)
	}
}

func TestRun_ConfigurationErrorAborts(t *testing.T) {
	bad := &stubBackend{name: "bad", transform: func(context.Context, *item.Item) (*item.Item, error) {
		return nil, services.Wrap(services.ErrConfiguration, "bad", "transform", "broken options", nil)
	}}
	p, _ := New([]backend.Backend{bad}, nil)
	if _, err := p.Run(context.Background(), item.New("x.png", nil)); !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunBatch_PreservesItemOrder(t *testing.T) {
	p, _ := New([]backend.Backend{&stubBackend{name: "a"}}, nil)
	items := []*item.Item{
		item.New("one.png", nil),
		item.New("two.png", nil),
		item.New("three.png", nil),
	}
	out, err := p.RunBatch(context.Background(), items, 2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for i := range items {
		if out[i].Filename != items[i].Filename {
			t.Fatalf("slot %d holds %q, want %q", i, out[i].Filename, items[i].Filename)
		}
	}
}

func TestRunBatch_LifecycleBracketsBatch(t *testing.T) {
	step := &stubBackend{name: "pooled"}
	p, _ := New([]backend.Backend{step}, nil)
	if _, err := p.RunBatch(context.Background(), []*item.Item{item.New("x.png", nil)}, 1); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if step.setups.Load() != 1 || step.teardowns.Load() != 1 {
		t.Fatalf("setup/teardown counts: %d/%d", step.setups.Load(), step.teardowns.Load())
	}
}

func TestRunBatch_TeardownRunsOnFailure(t *testing.T) {
	step := &stubBackend{name: "pooled"}
	failing := &stubBackend{name: "boom", transform: func(context.Context, *item.Item) (*item.Item, error) {
		return nil, errors.New("boom")
	}}
	p, _ := New([]backend.Backend{step, failing}, nil)
	if _, err := p.RunBatch(context.Background(), []*item.Item{item.New("x.png", nil)}, 1); err == nil {
		t.Fatal("expected batch failure")
	}
	if step.teardowns.Load() != 1 {
		t.Fatalf("teardown did not run on failure path: %d", step.teardowns.Load())
	}
}

func TestRunBatch_SetupFailureUnwindsInitializedSteps(t *testing.T) {
	first := &stubBackend{name: "first"}
	second := &stubBackend{name: "second", failSetup: true}
	p, _ := New([]backend.Backend{first, second}, nil)
	if _, err := p.RunBatch(context.Background(), nil, 1); err == nil {
		t.Fatal("expected setup failure")
	}
	if first.teardowns.Load() != 1 {
		t.Fatalf("initialized step not unwound: %d", first.teardowns.Load())
	}
	if second.teardowns.Load() != 0 {
		t.Fatalf("failed step should not be torn down: %d", second.teardowns.Load())
	}
}

func TestNew_RejectsNilStep(t *testing.T) {
	if _, err := New([]backend.Backend{nil}, nil); !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCompile_UnknownKind(t *testing.T) {
	_, err := Compile([]StepSpec{{Kind: "holographic"}})
	if !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCompile_VectorGenerateRejected(t *testing.T) {
	_, err := Compile([]StepSpec{{Kind: KindVector, Mode: backend.ModeGenerate}})
	if !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCompile_ChainStep(t *testing.T) {
	reg := chain.NewRegistry()
	if err := reg.Register("noop", func(_ context.Context, data []byte, _ map[string]any) ([]byte, error) {
		return data, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	steps, err := Compile([]StepSpec{{
		Kind:  KindChain,
		Chain: chain.Options{Registry: reg, Plugins: []chain.PluginSpec{{Name: "noop"}}},
	}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(steps) != 1 || steps[0].Name() != "chain-minify" {
		t.Fatalf("unexpected steps: %v", steps)
	}
}
