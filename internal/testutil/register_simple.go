package testutil

import (
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
)

// SimpleModule is a test helper for easily creating a mock module that
// registers any combination of factories under the given names.
type SimpleModule struct {
	TrainerName string
	Trainer     registry.TrainerFactory

	ModelName string
	Model     registry.ModelFactory

	OptimizerName string
	Optimizer     optim.Factory

	SchedulerName string
	Scheduler     optim.SchedulerFactory
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.TrainerName != "" && m.Trainer != nil {
		r.RegisterTrainer(m.TrainerName, m.Trainer)
	}
	if m.ModelName != "" && m.Model != nil {
		r.RegisterModel(m.ModelName, m.Model)
	}
	if m.OptimizerName != "" && m.Optimizer != nil {
		r.RegisterOptimizer(m.OptimizerName, m.Optimizer)
	}
	if m.SchedulerName != "" && m.Scheduler != nil {
		r.RegisterScheduler(m.SchedulerName, m.Scheduler)
	}
}
