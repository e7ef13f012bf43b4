package app

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/writer"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	writer   *writer.Writer
	runID    string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without explicit modules the compiled-in core modules are registered.
func NewApp(outW io.Writer, appConfig *Config, modules ...registry.Module) *App {
	runID := appConfig.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, runID, outW)
	logger.Debug("Logger configured successfully.")

	w := writer.New(logger, runID)

	reg := registry.New()
	reg.Register(registry.WriterKey, w)
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Load(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		writer:   w,
		runID:    runID,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// RunID returns the id of this run.
func (a *App) RunID() string {
	return a.runID
}
