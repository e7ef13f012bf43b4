package optim

import (
	"fmt"
	"math"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/nn"
)

// AdagradConfig holds the hyperparameters of Adagrad.
type AdagradConfig struct {
	LR                      float64
	LRDecay                 float64
	WeightDecay             float64
	InitialAccumulatorValue float64
	Eps                     float64
}

// DefaultAdagradConfig returns the Adagrad defaults.
func DefaultAdagradConfig() AdagradConfig {
	return AdagradConfig{LR: 1e-2, Eps: 1e-10}
}

// Adagrad adapts the step of each weight to its accumulated squared gradient.
type Adagrad struct {
	paramSet
	cfg  AdagradConfig
	step int
	sum  map[*nn.Parameter][]float64
}

// NewAdagrad creates an Adagrad optimizer.
func NewAdagrad(params []ParamGroup, cfg AdagradConfig) (*Adagrad, error) {
	if cfg.LRDecay < 0 {
		return nil, fmt.Errorf("Adagrad: invalid lr_decay value: %v", cfg.LRDecay)
	}
	if cfg.WeightDecay < 0 {
		return nil, fmt.Errorf("Adagrad: invalid weight_decay value: %v", cfg.WeightDecay)
	}
	if cfg.InitialAccumulatorValue < 0 {
		return nil, fmt.Errorf("Adagrad: invalid initial_accumulator_value: %v", cfg.InitialAccumulatorValue)
	}
	if cfg.Eps < 0 {
		return nil, fmt.Errorf("Adagrad: invalid epsilon value: %v", cfg.Eps)
	}
	g, err := newGroups("Adagrad", params, cfg.LR)
	if err != nil {
		return nil, err
	}
	return &Adagrad{paramSet: g, cfg: cfg, sum: make(map[*nn.Parameter][]float64)}, nil
}

// Step performs a single optimization step.
func (o *Adagrad) Step() error {
	o.step++
	return o.each(func(group *ParamGroup, p *nn.Parameter) error {
		sum, ok := o.sum[p]
		if !ok {
			sum = make([]float64, len(p.Data))
			for i := range sum {
				sum[i] = o.cfg.InitialAccumulatorValue
			}
			o.sum[p] = sum
		}
		clr := group.LR / (1 + float64(o.step-1)*o.cfg.LRDecay)
		for i := range p.Data {
			g := p.Grad[i]
			if o.cfg.WeightDecay != 0 {
				g += o.cfg.WeightDecay * p.Data[i]
			}
			sum[i] += g * g
			p.Data[i] -= clr * g / (math.Sqrt(sum[i]) + o.cfg.Eps)
		}
		return nil
	})
}

func adagradFromParams(groups []ParamGroup, params config.Node) (Optimizer, error) {
	cfg := DefaultAdagradConfig()
	r := config.NewReader(params)
	cfg.LR = r.Float("lr", cfg.LR)
	cfg.LRDecay = r.Float("lr_decay", cfg.LRDecay)
	cfg.WeightDecay = r.Float("weight_decay", cfg.WeightDecay)
	cfg.InitialAccumulatorValue = r.Float("initial_accumulator_value", cfg.InitialAccumulatorValue)
	cfg.Eps = r.Float("eps", cfg.Eps)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("Adagrad: %w", err)
	}
	return NewAdagrad(groups, cfg)
}
