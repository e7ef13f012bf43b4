// Package schedulers registers the built-in learning-rate schedules under
// configuration-friendly names.
package schedulers

import (
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every scheduler factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterScheduler("step", Step)
	r.RegisterScheduler("multi_step", MultiStep)
	r.RegisterScheduler("exponential", Exponential)
	r.RegisterScheduler("cosine_annealing", CosineAnnealing)
}

// Step builds a StepLR from step_size and gamma (default 0.1).
func Step(opt optim.Optimizer, params config.Node) (optim.Scheduler, error) {
	r := config.NewReader(params)
	stepSize := r.Int("step_size", 0)
	gamma := r.Float("gamma", 0.1)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("step: %w", err)
	}
	return optim.NewStepLR(opt, stepSize, gamma)
}

// MultiStep builds a MultiStepLR from milestones and gamma (default 0.1).
func MultiStep(opt optim.Optimizer, params config.Node) (optim.Scheduler, error) {
	r := config.NewReader(params)
	milestones := r.Ints("milestones", nil)
	gamma := r.Float("gamma", 0.1)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("multi_step: %w", err)
	}
	return optim.NewMultiStepLR(opt, milestones, gamma)
}

// Exponential builds an ExponentialLR from gamma.
func Exponential(opt optim.Optimizer, params config.Node) (optim.Scheduler, error) {
	r := config.NewReader(params)
	gamma := r.Float("gamma", 0)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("exponential: %w", err)
	}
	if gamma <= 0 {
		return nil, fmt.Errorf("exponential: gamma must be positive, got %v", gamma)
	}
	return optim.NewExponentialLR(opt, gamma)
}

// CosineAnnealing builds a CosineAnnealingLR from T_max and eta_min.
func CosineAnnealing(opt optim.Optimizer, params config.Node) (optim.Scheduler, error) {
	r := config.NewReader(params)
	tMax := r.Int("T_max", 0)
	etaMin := r.Float("eta_min", 0)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("cosine_annealing: %w", err)
	}
	return optim.NewCosineAnnealingLR(opt, tMax, etaMin)
}
