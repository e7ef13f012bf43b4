package builder

import (
	"context"
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/model"
	"github.com/vk/trainbuild/internal/registry"
)

// BuildModel constructs the model named by the "model" field of cfg and
// runs its lifecycle hooks.
func BuildModel(ctx context.Context, reg *registry.Registry, cfg config.Node) (model.Model, error) {
	logger := ctxlog.FromContext(ctx)
	name, _, err := stringField(cfg, "model")
	if err != nil {
		return nil, err
	}

	factory, lookupErr := reg.ModelFactory(name)
	if lookupErr != nil {
		write(ctx, reg, fmt.Sprintf("No model registered for name: %s", name))
	}
	if factory == nil {
		if lookupErr != nil {
			return nil, fmt.Errorf("model '%s': %w: %w", name, ErrNilFactory, lookupErr)
		}
		return nil, fmt.Errorf("model '%s': %w", name, ErrNilFactory)
	}

	logger.Debug("Constructing model.", "model", name)
	m, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to construct model '%s': %w", name, err)
	}

	if err := m.Build(ctx); err != nil {
		return nil, fmt.Errorf("failed to build model '%s': %w", name, err)
	}
	if err := m.InitLossesAndMetrics(ctx); err != nil {
		return nil, fmt.Errorf("failed to init losses and metrics of model '%s': %w", name, err)
	}
	return m, nil
}
