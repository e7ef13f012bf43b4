package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/model"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/testutil"
)

func TestBuildModel_RunsLifecycleHooksInOrder(t *testing.T) {
	ctx, _ := testutil.LogContext()
	reg := registry.New()
	reg.Load(&testutil.SimpleModule{ModelName: "stub", Model: testutil.NewStubModel})
	cfg := testutil.Node(t, map[string]any{"model": "stub", "hidden": 4})

	m, err := BuildModel(ctx, reg, cfg)
	require.NoError(t, err)

	stub := m.(*testutil.StubModel)
	require.Equal(t, "stub", stub.Name())
	require.Equal(t, []string{"build", "init_losses_and_metrics"}, stub.Calls)
	require.True(t, stub.Config.Value().RawEquals(cfg.Value()))
}

func TestBuildModel_UnregisteredNameWritesDiagnosticThenFails(t *testing.T) {
	ctx, _ := testutil.LogContext()
	reg := registry.New()
	w := &testutil.MessageWriter{}
	reg.Register(registry.WriterKey, w)

	m, err := BuildModel(ctx, reg, testutil.Node(t, map[string]any{"model": "ghost"}))
	require.Nil(t, m)
	require.ErrorIs(t, err, ErrNilFactory)
	require.ErrorIs(t, err, registry.ErrNotFound)
	require.Equal(t, []string{"No model registered for name: ghost"}, w.Messages())
}

func TestBuildModel_WithoutWriterLogsDiagnostic(t *testing.T) {
	ctx, logs := testutil.LogContext()

	_, err := BuildModel(ctx, registry.New(), testutil.Node(t, map[string]any{"model": "ghost"}))
	require.ErrorIs(t, err, ErrNilFactory)
	require.Contains(t, logs.String(), "No model registered for name: ghost")
}

func TestBuildModel_HookErrorsPropagate(t *testing.T) {
	ctx, _ := testutil.LogContext()
	boom := errors.New("boom")
	reg := registry.New()
	reg.RegisterModel("broken", func(ctx context.Context, cfg config.Node) (model.Model, error) {
		m, err := testutil.NewStubModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		m.(*testutil.StubModel).BuildErr = boom
		return m, nil
	})

	_, err := BuildModel(ctx, reg, testutil.Node(t, map[string]any{"model": "broken"}))
	require.ErrorIs(t, err, boom)
}

func TestBuildModel_NonStringNameIsRejected(t *testing.T) {
	ctx, _ := testutil.LogContext()
	reg := registry.New()
	reg.Load(&testutil.SimpleModule{ModelName: "stub", Model: testutil.NewStubModel})
	w := &testutil.MessageWriter{}
	reg.Register(registry.WriterKey, w)

	m, err := BuildModel(ctx, reg, testutil.Node(t, map[string]any{"model": []any{"stub"}}))
	require.Nil(t, m)
	require.ErrorIs(t, err, ErrConfigValidation)
	require.Empty(t, w.Messages())
}
