package pythia_scheduler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/nn"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/testutil"
)

func newOptimizer(t *testing.T) optim.Optimizer {
	t.Helper()
	opt, err := optim.NewSGD([]optim.ParamGroup{{Params: []*nn.Parameter{nn.Zeros("w", 1)}}}, optim.SGDConfig{LR: 1})
	require.NoError(t, err)
	return opt
}

func TestLambda(t *testing.T) {
	p := Params{UseWarmup: true, WarmupIterations: 4, WarmupFactor: 0.2, LRSteps: []int{6, 8}, LRRatio: 0.1}

	want := map[int]float64{
		0: 0.2,
		2: 0.6,
		4: 1,
		5: 1,
		6: 0.1,
		7: 0.1,
		8: 0.01,
	}
	for it, lr := range want {
		if math.Abs(p.Lambda(it)-lr) > 1e-12 {
			t.Errorf("iteration %d: expected %v, got %v", it, lr, p.Lambda(it))
		}
	}

	p.WarmupIterations = 0
	require.Equal(t, 1.0, p.Lambda(0))
}

func TestFactory_ReadsTrainingParametersFromRegistry(t *testing.T) {
	reg := registry.New()
	reg.Load(&Module{})
	reg.Register(registry.ConfigKey, testutil.Node(t, map[string]any{
		"training_parameters": map[string]any{
			"use_warmup":        true,
			"warmup_iterations": 2,
			"warmup_factor":     0.5,
			"lr_steps":          []any{3},
			"lr_ratio":          0.5,
			"batch_size":        32,
		},
	}))

	factory, err := reg.SchedulerFactory(Name)
	require.NoError(t, err)
	opt := newOptimizer(t)
	s, err := factory(opt, config.EmptyNode())
	require.NoError(t, err)

	got := []float64{s.LastLR()[0]}
	for i := 0; i < 4; i++ {
		s.Step()
		got = append(got, opt.LR())
	}
	want := []float64{0.5, 0.75, 1, 0.5, 0.5}
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-12, "iteration %d", i)
	}
}

func TestFactory_ParamsTakePriority(t *testing.T) {
	reg := registry.New()
	reg.Register(registry.ConfigKey, testutil.Node(t, map[string]any{
		"training_parameters": map[string]any{"lr_steps": []any{1}, "lr_ratio": 0.5},
	}))

	s, err := Factory(reg)(newOptimizer(t), testutil.Node(t, map[string]any{"lr_ratio": 0.1}))
	require.NoError(t, err)
	s.Step()
	require.InDelta(t, 0.1, s.LastLR()[0], 1e-12)
}

func TestFactory_WithoutPublishedConfigUsesDefaults(t *testing.T) {
	s, err := Factory(registry.New())(newOptimizer(t), config.EmptyNode())
	require.NoError(t, err)
	require.Equal(t, []float64{1}, s.LastLR())
	require.Equal(t, "PythiaScheduler", s.Name())
}

func TestFactory_RejectsInvalidParams(t *testing.T) {
	reg := registry.New()
	tests := map[string]map[string]any{
		"unknown key":      {"gamma": 0.1},
		"negative warmup":  {"warmup_iterations": -1},
		"unsorted steps":   {"lr_steps": []any{5, 2}},
		"non-numeric step": {"lr_steps": []any{"a"}},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Factory(reg)(newOptimizer(t), testutil.Node(t, params))
			require.Error(t, err)
		})
	}
}
