package adam_w

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/trainbuild/internal/nn"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/testutil"
)

func TestModule_RegistersOutsideBuiltins(t *testing.T) {
	reg := registry.New()
	reg.Load(&Module{})
	_, err := reg.OptimizerFactory(Name)
	require.NoError(t, err)
	_, builtin := optim.LookupOptimizer(Name)
	require.False(t, builtin)
}

func TestNew_CorrectBias(t *testing.T) {
	step := func(correctBias bool) float64 {
		p := nn.NewParameter("w", []float64{0})
		p.Grad[0] = 1
		opt, err := New([]optim.ParamGroup{{Params: []*nn.Parameter{p}}}, testutil.Node(t, map[string]any{
			"lr":           0.1,
			"weight_decay": 0,
			"correct_bias": correctBias,
		}))
		require.NoError(t, err)
		require.NoError(t, opt.Step())
		return p.Data[0]
	}

	// corrected: m_hat = 1, v_hat = 1
	require.InDelta(t, -0.1, step(true), 1e-6)
	// uncorrected: m = 0.1, v = 0.001
	require.InDelta(t, -0.1*0.1/(math.Sqrt(0.001)+1e-8), step(false), 1e-9)
}

func TestNew_RejectsUnknownParams(t *testing.T) {
	p := nn.Zeros("w", 1)
	_, err := New([]optim.ParamGroup{{Params: []*nn.Parameter{p}}}, testutil.Node(t, map[string]any{"momentum": 0.9}))
	require.ErrorContains(t, err, "unexpected parameter(s): momentum")
}
