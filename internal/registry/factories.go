package registry

import (
	"context"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/model"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/trainer"
)

// TrainerFactory constructs a trainer from the frozen configuration wrapper.
type TrainerFactory func(ctx context.Context, configuration *config.Configuration) (trainer.Trainer, error)

// ModelFactory constructs a model from the resolved configuration tree.
type ModelFactory func(ctx context.Context, cfg config.Node) (model.Model, error)

// RegisterTrainer registers a trainer factory.
func (r *Registry) RegisterTrainer(name string, f TrainerFactory) {
	register(r.trainers, Trainer, name, f)
}

// RegisterModel registers a model factory.
func (r *Registry) RegisterModel(name string, f ModelFactory) {
	register(r.models, Model, name, f)
}

// RegisterOptimizer registers a custom optimizer factory.
func (r *Registry) RegisterOptimizer(name string, f optim.Factory) {
	register(r.optimizers, Optimizer, name, f)
}

// RegisterScheduler registers a scheduler factory.
func (r *Registry) RegisterScheduler(name string, f optim.SchedulerFactory) {
	register(r.schedulers, Scheduler, name, f)
}

// TrainerFactory looks up a trainer factory.
func (r *Registry) TrainerFactory(name string) (TrainerFactory, error) {
	f, ok := r.trainers[name]
	if !ok {
		return nil, notFound(Trainer, name)
	}
	return f, nil
}

// ModelFactory looks up a model factory.
func (r *Registry) ModelFactory(name string) (ModelFactory, error) {
	f, ok := r.models[name]
	if !ok {
		return nil, notFound(Model, name)
	}
	return f, nil
}

// OptimizerFactory looks up a custom optimizer factory.
func (r *Registry) OptimizerFactory(name string) (optim.Factory, error) {
	f, ok := r.optimizers[name]
	if !ok {
		return nil, notFound(Optimizer, name)
	}
	return f, nil
}

// SchedulerFactory looks up a scheduler factory.
func (r *Registry) SchedulerFactory(name string) (optim.SchedulerFactory, error) {
	f, ok := r.schedulers[name]
	if !ok {
		return nil, notFound(Scheduler, name)
	}
	return f, nil
}
