package builder

import (
	"fmt"

	"github.com/vk/trainbuild/internal/registry"
)

// Source is a place a factory can be resolved from.
type Source string

const (
	// Builtin is the built-in optimizer namespace of the optim package.
	Builtin Source = "builtin"
	// Registry is the registry category of the same kind.
	Registry Source = "registry"
)

var resolutionOrder = map[registry.Category][]Source{
	registry.Trainer:   {Registry},
	registry.Model:     {Registry},
	registry.Optimizer: {Builtin, Registry},
	registry.Scheduler: {Registry},
}

// orderOf returns a copy of the sources consulted for category, in order.
func orderOf(category registry.Category) []Source {
	return append([]Source(nil), resolutionOrder[category]...)
}

// lookupFunc resolves a name within one source.
type lookupFunc[F any] func(name string) (F, error)

// resolve walks the resolution order of category and returns the first
// factory found with its source. When no source has the name, the zero F
// is returned with the error of the last source consulted.
func resolve[F any](category registry.Category, name string, sources map[Source]lookupFunc[F]) (F, Source, error) {
	var zero F
	lastErr := fmt.Errorf("%s '%s': %w", category, name, registry.ErrNotFound)
	for _, src := range orderOf(category) {
		lookup, ok := sources[src]
		if !ok {
			continue
		}
		f, err := lookup(name)
		if err == nil {
			return f, src, nil
		}
		lastErr = err
	}
	return zero, "", lastErr
}
