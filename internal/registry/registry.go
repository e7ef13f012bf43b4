package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/trainbuild/internal/optim"
)

// ErrNotFound is returned when no factory is registered under a name.
var ErrNotFound = errors.New("not registered")

// Category names a kind of factory held by the registry.
type Category string

const (
	Trainer   Category = "trainer"
	Model     Category = "model"
	Optimizer Category = "optimizer"
	Scheduler Category = "scheduler"
)

// Keys of the generic slot shared between components.
const (
	ConfigKey        = "config"
	ConfigurationKey = "configuration"
	WriterKey        = "writer"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all the registered factories and shared objects for a
// single application instance.
type Registry struct {
	trainers   map[string]TrainerFactory
	models     map[string]ModelFactory
	optimizers map[string]optim.Factory
	schedulers map[string]optim.SchedulerFactory
	objects    map[string]any
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		trainers:   make(map[string]TrainerFactory),
		models:     make(map[string]ModelFactory),
		optimizers: make(map[string]optim.Factory),
		schedulers: make(map[string]optim.SchedulerFactory),
		objects:    make(map[string]any),
	}
}

// Load registers every module with r.
func (r *Registry) Load(modules ...Module) {
	for _, mod := range modules {
		mod.Register(r)
	}
}

// Register stores value under key in the generic slot, replacing any
// previous value.
func (r *Registry) Register(key string, value any) {
	if _, exists := r.objects[key]; exists {
		slog.Debug("Replacing registered object.", "key", key)
	}
	r.objects[key] = value
}

// Get returns the value registered under key.
func (r *Registry) Get(key string) (any, bool) {
	v, ok := r.objects[key]
	return v, ok
}

// Names lists the names registered in category, sorted.
func (r *Registry) Names(category Category) []string {
	var names []string
	switch category {
	case Trainer:
		names = keys(r.trainers)
	case Model:
		names = keys(r.models)
	case Optimizer:
		names = keys(r.optimizers)
	case Scheduler:
		names = keys(r.schedulers)
	}
	sort.Strings(names)
	return names
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func notFound(category Category, name string) error {
	return fmt.Errorf("%s '%s': %w", category, name, ErrNotFound)
}

func register[F any](m map[string]F, category Category, name string, f F) {
	if _, exists := m[name]; exists {
		panic(fmt.Sprintf("%s factory with name '%s' already registered", category, name))
	}
	slog.Debug("Registering factory.", "category", category, "name", name)
	m[name] = f
}
