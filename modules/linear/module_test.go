package linear

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/trainbuild/internal/model"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/testutil"
)

func build(t *testing.T, attrs map[string]any) *Model {
	t.Helper()
	m, err := New(context.Background(), testutil.Node(t, attrs))
	require.NoError(t, err)
	require.NoError(t, m.Build(context.Background()))
	return m.(*Model)
}

func TestModule_Registers(t *testing.T) {
	reg := registry.New()
	reg.Load(&Module{})
	_, err := reg.ModelFactory(Name)
	require.NoError(t, err)
}

func TestNew_ReadsAttributes(t *testing.T) {
	m := build(t, map[string]any{"model": "linear", "in_features": 3})
	require.Equal(t, 3, m.InputSize())
	require.Len(t, m.Parameters(), 2)
	require.Len(t, m.Weight.Data, 3)

	_, err := New(context.Background(), testutil.Node(t, map[string]any{"in_features": 0}))
	require.ErrorContains(t, err, "in_features")

	_, err = New(context.Background(), testutil.Node(t, map[string]any{"hidden": 4}))
	require.ErrorContains(t, err, "unexpected parameter(s): hidden")
}

func TestLoss_AccumulatesGradient(t *testing.T) {
	m := build(t, map[string]any{"in_features": 2})
	m.Weight.Data[0], m.Weight.Data[1] = 1, 0

	loss, err := m.Loss(model.Batch{
		Inputs:  [][]float64{{1, 2}, {0, 1}},
		Targets: []float64{0, 1},
	})
	require.NoError(t, err)
	// predictions 1 and 0, diffs 1 and -1
	require.InDelta(t, 1.0, loss, 1e-12)
	require.InDelta(t, 1.0, m.Weight.Grad[0], 1e-12)
	require.InDelta(t, 1.0, m.Weight.Grad[1], 1e-12)
	require.InDelta(t, 0.0, m.Bias.Grad[0], 1e-12)

	_, err = m.Loss(model.Batch{Inputs: [][]float64{{1}}, Targets: []float64{0}})
	require.ErrorContains(t, err, "expected 2")
}

func TestOptimizerParameters_BiasGroup(t *testing.T) {
	m := build(t, map[string]any{"bias_lr_multiplier": 2})
	cfg := testutil.Node(t, map[string]any{
		"optimizer_attributes": map[string]any{"type": "SGD", "params": map[string]any{"lr": 0.1}},
	})

	groups, err := model.OptimizerParameters(m, cfg)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "bias", groups[1].Params[0].Name)
	require.InDelta(t, 0.2, groups[1].LR, 1e-12)

	_, err = model.OptimizerParameters(m, testutil.Node(t, map[string]any{}))
	require.ErrorContains(t, err, "requires optimizer_attributes.params.lr")

	plain := build(t, map[string]any{})
	groups, err = model.OptimizerParameters(plain, cfg)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	frozen := build(t, map[string]any{"bias_lr_multiplier": 0})
	groups, err = model.OptimizerParameters(frozen, cfg)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.True(t, groups[1].HasLR())
	require.Zero(t, groups[1].LR)
}
