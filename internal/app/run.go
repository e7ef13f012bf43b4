package app

import (
	"context"
	"fmt"

	"github.com/vk/trainbuild/internal/builder"
	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/trainer"
)

// Run builds the trainer described by appConfig.Args, loads it and trains it.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer func() {
		if err := a.writer.Close(); err != nil {
			a.logger.Warn("Failed to close diagnostic stream.", "error", err)
		}
	}()

	a.logger.Info("Registered factories.",
		"trainers", a.registry.Names(registry.Trainer),
		"models", a.registry.Names(registry.Model),
		"builtin_optimizers", optim.OptimizerNames(),
		"optimizers", a.registry.Names(registry.Optimizer),
		"schedulers", a.registry.Names(registry.Scheduler),
	)

	t, err := a.BuildTrainer(ctx, appConfig)
	if err != nil {
		return err
	}

	if err := t.Load(ctx); err != nil {
		return fmt.Errorf("failed to load trainer: %w", err)
	}
	a.logger.Info("🚀 Starting training...")
	if err := t.Train(ctx); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	a.logger.Info("🏁 Training finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}

// BuildTrainer builds the trainer without loading or running it.
func (a *App) BuildTrainer(ctx context.Context, appConfig *Config) (trainer.Trainer, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	t, err := builder.BuildTrainer(ctx, a.registry, appConfig.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to build trainer: %w", err)
	}
	return t, nil
}
