package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/trainbuild/internal/builder"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_TrainsFromTOML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "experiment.toml", `
model = "linear"

[optimizer_attributes]
type = "SGD"

[optimizer_attributes.params]
lr = 0.1

[training_parameters]
max_iterations = 10
log_interval = 5
`)
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-config", path, "-log-format", "json", "training_parameters.batch_size=4"})
	require.NoError(t, err)
	require.Contains(t, out.String(), `"msg":"Training finished."`)
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should see `shouldExit=true` and return a nil error.
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	// The run function should propagate the error from cli.Parse.
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_MissingOptimizerType(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "experiment.yaml", "model: linear\n")
	err := run(context.Background(), &bytes.Buffer{}, []string{"-config", path})
	require.ErrorIs(t, err, builder.ErrConfigValidation)
}
