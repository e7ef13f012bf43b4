// Package pythia_scheduler registers the "pythia" scheduler: a linear
// warmup followed by multi-step decay, driven by the training parameters.
package pythia_scheduler

import (
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
)

// Name is the registry name of the scheduler.
const Name = "pythia"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the scheduler factory. The factory reads the
// configuration the trainer builder published in r.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterScheduler(Name, Factory(r))
}

// Params are the schedule settings.
type Params struct {
	UseWarmup        bool
	WarmupIterations int
	WarmupFactor     float64
	LRSteps          []int
	LRRatio          float64
}

// DefaultParams returns the settings used when neither the scheduler params
// nor the training parameters set them.
func DefaultParams() Params {
	return Params{WarmupIterations: 1000, WarmupFactor: 0.2, LRRatio: 0.1}
}

// Lambda returns the learning-rate multiplier for an iteration. During
// warmup it rises linearly from WarmupFactor to 1; afterwards it is LRRatio
// raised to the number of LRSteps passed.
func (p Params) Lambda(iteration int) float64 {
	if p.UseWarmup && p.WarmupIterations > 0 && iteration <= p.WarmupIterations {
		alpha := float64(iteration) / float64(p.WarmupIterations)
		return p.WarmupFactor*(1-alpha) + alpha
	}
	idx := optim.BisectRight(p.LRSteps, iteration)
	mult := 1.0
	for i := 0; i < idx; i++ {
		mult *= p.LRRatio
	}
	return mult
}

// Factory returns the scheduler factory reading fallbacks from the
// configuration registered in r.
func Factory(r *registry.Registry) optim.SchedulerFactory {
	return func(opt optim.Optimizer, params config.Node) (optim.Scheduler, error) {
		var training config.Node
		if v, ok := r.Get(registry.ConfigKey); ok {
			if cfg, ok := v.(config.Node); ok {
				training = cfg.Get("training_parameters")
			}
		}

		p, err := resolveParams(params, training)
		if err != nil {
			return nil, err
		}
		return optim.NewSchedule("PythiaScheduler", opt, func(epoch int, base float64) float64 {
			return base * p.Lambda(epoch)
		})
	}
}

// resolveParams reads every setting from params first and from the
// training parameters second.
func resolveParams(params, training config.Node) (Params, error) {
	p := DefaultParams()

	fallback := config.NewReader(training)
	p.UseWarmup = fallback.Bool("use_warmup", p.UseWarmup)
	p.WarmupIterations = fallback.Int("warmup_iterations", p.WarmupIterations)
	p.WarmupFactor = fallback.Float("warmup_factor", p.WarmupFactor)
	p.LRSteps = fallback.Ints("lr_steps", p.LRSteps)
	p.LRRatio = fallback.Float("lr_ratio", p.LRRatio)
	if err := fallback.DecodeErr(); err != nil {
		return Params{}, fmt.Errorf("%s: training_parameters: %w", Name, err)
	}

	own := config.NewReader(params)
	p.UseWarmup = own.Bool("use_warmup", p.UseWarmup)
	p.WarmupIterations = own.Int("warmup_iterations", p.WarmupIterations)
	p.WarmupFactor = own.Float("warmup_factor", p.WarmupFactor)
	p.LRSteps = own.Ints("lr_steps", p.LRSteps)
	p.LRRatio = own.Float("lr_ratio", p.LRRatio)
	if err := own.Err(); err != nil {
		return Params{}, fmt.Errorf("%s: %w", Name, err)
	}

	if p.WarmupIterations < 0 {
		return Params{}, fmt.Errorf("%s: warmup_iterations must not be negative, got %d", Name, p.WarmupIterations)
	}
	steps := append([]int(nil), p.LRSteps...)
	for i := 1; i < len(steps); i++ {
		if steps[i] < steps[i-1] {
			return Params{}, fmt.Errorf("%s: lr_steps must be sorted, got %v", Name, steps)
		}
	}
	p.LRSteps = steps
	return p, nil
}
