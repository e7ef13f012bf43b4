package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/testutil"
	"github.com/vk/trainbuild/internal/writer"
)

func writeExperiment(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const experimentHCL = `
model = "linear"

model_attributes "linear" {
  in_features = 3
}

optimizer_attributes {
  type = "Adam"
  params = {
    lr = 0.05
  }
}

training_parameters {
  max_iterations = 20
  log_interval   = 10
  lr_scheduler   = true
}

scheduler_attributes {
  type = "step"
  params = {
    step_size = 10
    gamma     = 0.5
  }
}
`

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)
	_, err = NewConfig(Config{Args: &config.Args{}})
	require.Error(t, err)

	cfg, err := NewConfig(Config{Args: &config.Args{ConfigPath: "x.hcl"}, LogLevel: "info"})
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestNewApp_RegistersWriterAndCoreModules(t *testing.T) {
	a, _ := SetupAppTest(t, &Config{RunID: "run-42"})

	require.Equal(t, "run-42", a.RunID())
	v, ok := a.Registry().Get(registry.WriterKey)
	require.True(t, ok)
	require.Equal(t, "run-42", v.(*writer.Writer).RunID())

	require.Equal(t, []string{"base_trainer"}, a.Registry().Names(registry.Trainer))
	require.Equal(t, []string{"linear"}, a.Registry().Names(registry.Model))
	require.Equal(t, []string{"adam_w"}, a.Registry().Names(registry.Optimizer))
	require.Equal(t, []string{"cosine_annealing", "exponential", "multi_step", "pythia", "step"}, a.Registry().Names(registry.Scheduler))
}

func TestApp_RunTrainsEndToEnd(t *testing.T) {
	appConfig := &Config{Args: &config.Args{
		ConfigPath: writeExperiment(t, experimentHCL),
		Fields:     map[string]any{"seed": 3},
	}}
	a, logs := SetupAppTest(t, appConfig)

	require.NoError(t, a.Run(context.Background(), appConfig))

	out := logs.String()
	require.Contains(t, out, "run_id="+a.RunID())
	require.Contains(t, out, `builtin_optimizers="[Adagrad Adam AdamW RMSprop SGD]"`)
	require.Contains(t, out, "Trainer loaded.")
	require.Contains(t, out, "Training progress.")
	require.Contains(t, out, "Training finished.")
	require.NotContains(t, out, "level=ERROR")

	cfg, ok := a.Registry().Get(registry.ConfigKey)
	require.True(t, ok)
	seed, err := cfg.(config.Node).Get("training_parameters.seed").AsInt()
	require.NoError(t, err)
	require.Equal(t, 3, seed)
}

func TestApp_RunPropagatesBuildErrors(t *testing.T) {
	appConfig := &Config{Args: &config.Args{
		ConfigPath: writeExperiment(t, `training_parameters {
  trainer = "ghost"
}
`),
	}}
	a, _ := SetupAppTest(t, appConfig)

	err := a.Run(context.Background(), appConfig)
	require.ErrorIs(t, err, registry.ErrNotFound)
	require.ErrorContains(t, err, "failed to build trainer")
}

func TestApp_CustomModules(t *testing.T) {
	appConfig := &Config{Args: &config.Args{
		ConfigPath: writeExperiment(t, `training_parameters {
  trainer = "demo_trainer"
}
`),
	}}
	a, _ := SetupAppTest(t, appConfig, &testutil.SimpleModule{TrainerName: "demo_trainer", Trainer: testutil.NewStubTrainer})

	require.NoError(t, a.Run(context.Background(), appConfig))

	tr, err := a.BuildTrainer(context.Background(), appConfig)
	require.NoError(t, err)
	stub := tr.(*testutil.StubTrainer)
	require.Same(t, appConfig.Args, stub.Args())
	require.Empty(t, a.Registry().Names(registry.Model))
}

func TestNewLogger(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	logger := newLogger("warn", "json", "run-1", buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "shown", entry["msg"])
	require.Equal(t, "value", entry["key"])
	require.Equal(t, "run-1", entry["run_id"])

	buf = &testutil.SafeBuffer{}
	newLogger("unknown", "text", "", buf).Info("visible")
	require.Contains(t, buf.String(), "level=INFO msg=visible")
	require.NotContains(t, buf.String(), "run_id")

	buf = &testutil.SafeBuffer{}
	newLogger("DEBUG", "text", "", buf).Debug("verbose")
	require.Contains(t, buf.String(), "level=DEBUG msg=verbose")
}
