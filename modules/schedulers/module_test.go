package schedulers

import (
	"testing"

	"github.com/stretchr/testify/require"
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

func TestModule_Registers(t *testing.T) {
	reg := registry.New()
	reg.Load(&Module{})
	require.Equal(t, []string{"cosine_annealing", "exponential", "multi_step", "step"}, reg.Names(registry.Scheduler))
}

func TestFactories(t *testing.T) {
	tests := []struct {
		name    string
		factory optim.SchedulerFactory
		params  map[string]any
		after   float64
		errText string
	}{
		{name: "step", factory: Step, params: map[string]any{"step_size": 1, "gamma": 0.5}, after: 0.5},
		{name: "step without step_size", factory: Step, params: map[string]any{}, errText: "step_size"},
		{name: "multi_step", factory: MultiStep, params: map[string]any{"milestones": []any{1, 2}}, after: 0.1},
		{name: "multi_step scalar milestone", factory: MultiStep, params: map[string]any{"milestones": 1, "gamma": 0.5}, after: 0.5},
		{name: "exponential", factory: Exponential, params: map[string]any{"gamma": 0.9}, after: 0.9},
		{name: "exponential without gamma", factory: Exponential, params: map[string]any{}, errText: "gamma"},
		{name: "cosine_annealing", factory: CosineAnnealing, params: map[string]any{"T_max": 2, "eta_min": 0.2}, after: 0.6},
		{name: "unknown parameter", factory: CosineAnnealing, params: map[string]any{"T_max": 2, "gama": 1}, errText: "unexpected parameter(s): gama"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opt := newOptimizer(t)
			s, err := tc.factory(opt, testutil.Node(t, tc.params))
			if tc.errText != "" {
				require.ErrorContains(t, err, tc.errText)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, 1.0, opt.LR(), 1e-12)
			s.Step()
			require.InDelta(t, tc.after, opt.LR(), 1e-12)
		})
	}
}
