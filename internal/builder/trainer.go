package builder

import (
	"context"
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/loader"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/trainer"
)

// BuildTrainer assembles the configuration described by args, publishes it
// in reg and constructs the trainer named by training_parameters.trainer.
func BuildTrainer(ctx context.Context, reg *registry.Registry, args *config.Args) (trainer.Trainer, error) {
	return buildTrainer(ctx, reg, loader.New(), args)
}

// buildTrainer is BuildTrainer reading the configuration file through l.
func buildTrainer(ctx context.Context, reg *registry.Registry, l config.Loader, args *config.Args) (trainer.Trainer, error) {
	logger := ctxlog.FromContext(ctx)
	if args == nil {
		args = &config.Args{}
	}

	configuration, err := config.New(ctx, l, args.ConfigPath)
	if err != nil {
		return nil, err
	}

	// Update with the config override if passed.
	if err := configuration.OverrideWithCmdConfig(ctx, args.ConfigOverride); err != nil {
		return nil, fmt.Errorf("failed to apply config override: %w", err)
	}
	// Then with the discrete options.
	if err := configuration.OverrideWithCmdOpts(ctx, args.Opts); err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}
	// Finally with the arguments that were passed explicitly.
	if err := configuration.UpdateWithArgs(ctx, args); err != nil {
		return nil, fmt.Errorf("failed to apply arguments: %w", err)
	}
	configuration.Freeze()

	// Runtime arguments stay mutable.
	configuration.SetArgs(args)
	logger.Debug("Configuration assembled and frozen.", "path", args.ConfigPath)

	cfg := configuration.Config()
	reg.Register(registry.ConfigKey, cfg)
	reg.Register(registry.ConfigurationKey, configuration)

	trainerType := cfg.String("training_parameters.trainer", "")
	factory, err := reg.TrainerFactory(trainerType)
	if err != nil {
		return nil, err
	}
	logger.Debug("Constructing trainer.", "type", trainerType)

	t, err := factory(ctx, configuration)
	if err != nil {
		return nil, fmt.Errorf("failed to construct trainer '%s': %w", trainerType, err)
	}
	t.SetArgs(args)
	return t, nil
}
