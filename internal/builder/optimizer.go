package builder

import (
	"context"
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/model"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
)

// BuildOptimizer constructs the optimizer described by
// optimizer_attributes, bound to the parameters of m.
func BuildOptimizer(ctx context.Context, reg *registry.Registry, m model.Model, cfg config.Node) (optim.Optimizer, error) {
	logger := ctxlog.FromContext(ctx)
	attrs := cfg.Get("optimizer_attributes")

	optimizerType, ok, err := stringField(attrs, "type")
	if err != nil {
		return nil, fmt.Errorf("optimizer attributes: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: optimizer attributes must have a 'type' key specifying the type of optimizer (built-in or registered)", ErrConfigValidation)
	}

	params := paramsOf(ctx, attrs, "optimizer attributes has no params defined, defaulting to {}.")

	factory, source, err := resolve(registry.Optimizer, optimizerType, map[Source]lookupFunc[optim.Factory]{
		Builtin: func(name string) (optim.Factory, error) {
			if f, ok := optim.LookupOptimizer(name); ok {
				return f, nil
			}
			return nil, fmt.Errorf("optimizer '%s': %w", name, registry.ErrNotFound)
		},
		Registry: reg.OptimizerFactory,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: no optimizer of type '%s' present in either built-in optimizers or the registry", ErrConfigValidation, optimizerType)
	}
	logger.Debug("Resolved optimizer.", "type", optimizerType, "source", source)

	groups, err := model.OptimizerParameters(m, cfg)
	if err != nil {
		return nil, err
	}

	opt, err := factory(groups, params)
	if err != nil {
		return nil, fmt.Errorf("failed to construct optimizer '%s': %w", optimizerType, err)
	}
	return opt, nil
}

// paramsOf returns the "params" child of attrs, or an empty node with a
// warning when it is absent.
func paramsOf(ctx context.Context, attrs config.Node, warning string) config.Node {
	params, ok := attrs.Lookup("params")
	if !ok || params.IsNull() {
		ctxlog.FromContext(ctx).Warn(warning)
		return config.EmptyNode()
	}
	return params
}

// stringField reads the string at key. ok is false when the key is absent
// or null; a value that is not a string is a validation error, never
// replaced by a default.
func stringField(n config.Node, key string) (value string, ok bool, err error) {
	v, found := n.Lookup(key)
	if !found || v.IsNull() {
		return "", false, nil
	}
	value, err = v.AsString()
	if err != nil {
		return "", true, fmt.Errorf("%w: '%s': %w", ErrConfigValidation, key, err)
	}
	return value, true, nil
}
