package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/model"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/testutil"
)

func newStubModel(t *testing.T) model.Model {
	t.Helper()
	m, err := testutil.NewStubModel(context.Background(), testutil.Node(t, map[string]any{"model": "stub"}))
	require.NoError(t, err)
	return m
}

func TestBuildOptimizer_RequiresType(t *testing.T) {
	ctx, _ := testutil.LogContext()
	reg := registry.New()
	called := false
	reg.RegisterOptimizer("", func(groups []optim.ParamGroup, params config.Node) (optim.Optimizer, error) {
		called = true
		return nil, nil
	})

	for _, cfg := range []map[string]any{
		{},
		{"optimizer_attributes": map[string]any{}},
		{"optimizer_attributes": map[string]any{"params": map[string]any{"lr": 0.1}}},
		{"optimizer_attributes": map[string]any{"type": []any{"SGD"}}},
	} {
		opt, err := BuildOptimizer(ctx, reg, newStubModel(t), testutil.Node(t, cfg))
		require.ErrorIs(t, err, ErrConfigValidation)
		require.Nil(t, opt)
	}
	require.False(t, called)
}

func TestBuildOptimizer_BuiltinTakesPrecedence(t *testing.T) {
	ctx, _ := testutil.LogContext()
	reg := registry.New()
	reg.Load(&testutil.SimpleModule{OptimizerName: "SGD", Optimizer: testutil.StubOptimizerFactory("registry")})
	cfg := testutil.Node(t, map[string]any{
		"optimizer_attributes": map[string]any{"type": "SGD", "params": map[string]any{"lr": 0.05}},
	})

	opt, err := BuildOptimizer(ctx, reg, newStubModel(t), cfg)
	require.NoError(t, err)
	_, isBuiltin := opt.(*optim.SGD)
	require.True(t, isBuiltin)
	require.Equal(t, 0.05, opt.LR())
}

func TestBuildOptimizer_FallsBackToRegistry(t *testing.T) {
	ctx, _ := testutil.LogContext()
	reg := registry.New()
	reg.Load(&testutil.SimpleModule{OptimizerName: "custom", Optimizer: testutil.StubOptimizerFactory("registry")})
	m := newStubModel(t)
	cfg := testutil.Node(t, map[string]any{
		"optimizer_attributes": map[string]any{"type": "custom", "params": map[string]any{"lr": 0.3}},
	})

	opt, err := BuildOptimizer(ctx, reg, m, cfg)
	require.NoError(t, err)
	stub, ok := opt.(*testutil.StubOptimizer)
	require.True(t, ok)
	require.Equal(t, "registry", stub.Label)
	require.Len(t, stub.Groups, 1)
	require.Equal(t, m.Parameters(), stub.Groups[0].Params)
	lr, err := stub.Params.Get("lr").AsFloat()
	require.NoError(t, err)
	require.Equal(t, 0.3, lr)
}

func TestBuildOptimizer_UnresolvedType(t *testing.T) {
	ctx, _ := testutil.LogContext()
	cfg := testutil.Node(t, map[string]any{"optimizer_attributes": map[string]any{"type": "Lion"}})

	_, err := BuildOptimizer(ctx, registry.New(), newStubModel(t), cfg)
	require.ErrorIs(t, err, ErrConfigValidation)
	require.ErrorContains(t, err, "'Lion'")
}

func TestBuildOptimizer_MissingParamsWarnsAndDefaults(t *testing.T) {
	ctx, logs := testutil.LogContext()
	cfg := testutil.Node(t, map[string]any{"optimizer_attributes": map[string]any{"type": "Adam"}})

	opt, err := BuildOptimizer(ctx, registry.New(), newStubModel(t), cfg)
	require.NoError(t, err)
	require.Equal(t, optim.DefaultAdamConfig().LR, opt.LR())
	require.Contains(t, logs.String(), "level=WARN")
	require.Contains(t, logs.String(), "optimizer attributes has no params defined")
}

func TestBuildOptimizer_ConstructorErrorsPropagate(t *testing.T) {
	ctx, _ := testutil.LogContext()
	cfg := testutil.Node(t, map[string]any{
		"optimizer_attributes": map[string]any{"type": "SGD", "params": map[string]any{"momentum": -1}},
	})

	_, err := BuildOptimizer(ctx, registry.New(), newStubModel(t), cfg)
	require.ErrorContains(t, err, "invalid momentum")
}
