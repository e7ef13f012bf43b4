package builder

import (
	"context"
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
)

// DefaultSchedulerType is used when scheduler_attributes has no type.
const DefaultSchedulerType = "pythia"

// BuildScheduler constructs the scheduler described by scheduler_attributes
// for opt.
func BuildScheduler(ctx context.Context, reg *registry.Registry, opt optim.Optimizer, cfg config.Node) (optim.Scheduler, error) {
	logger := ctxlog.FromContext(ctx)

	attrs, ok := cfg.Lookup("scheduler_attributes")
	if !ok || attrs.IsNull() {
		attrs = config.EmptyNode()
	}

	schedulerType, ok, err := stringField(attrs, "type")
	if err != nil {
		return nil, fmt.Errorf("scheduler attributes: %w", err)
	}
	if !ok {
		logger.Warn("No type for scheduler specified even though lr_scheduler is True, setting default.", "type", DefaultSchedulerType)
		schedulerType = DefaultSchedulerType
	}

	params := paramsOf(ctx, attrs, "scheduler attributes has no params defined, defaulting to {}.")

	// A missing scheduler is not reported here; construction fails instead.
	factory, _, lookupErr := resolve(registry.Scheduler, schedulerType, map[Source]lookupFunc[optim.SchedulerFactory]{
		Registry: reg.SchedulerFactory,
	})
	if factory == nil {
		if lookupErr != nil {
			return nil, fmt.Errorf("scheduler '%s': %w: %w", schedulerType, ErrNilFactory, lookupErr)
		}
		return nil, fmt.Errorf("scheduler '%s': %w", schedulerType, ErrNilFactory)
	}
	logger.Debug("Constructing scheduler.", "type", schedulerType)

	s, err := factory(opt, params)
	if err != nil {
		return nil, fmt.Errorf("failed to construct scheduler '%s': %w", schedulerType, err)
	}
	return s, nil
}
