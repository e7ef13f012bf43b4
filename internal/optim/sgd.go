package optim

import (
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/nn"
)

// SGDConfig holds the hyperparameters of SGD.
type SGDConfig struct {
	LR          float64
	Momentum    float64
	Dampening   float64
	WeightDecay float64
	Nesterov    bool
}

// DefaultSGDConfig returns the SGD defaults.
func DefaultSGDConfig() SGDConfig {
	return SGDConfig{LR: 1e-3}
}

// SGD implements stochastic gradient descent with optional momentum.
type SGD struct {
	paramSet
	cfg      SGDConfig
	velocity map[*nn.Parameter][]float64
}

// NewSGD creates an SGD optimizer.
func NewSGD(params []ParamGroup, cfg SGDConfig) (*SGD, error) {
	if cfg.Momentum < 0 {
		return nil, fmt.Errorf("SGD: invalid momentum value: %v", cfg.Momentum)
	}
	if cfg.WeightDecay < 0 {
		return nil, fmt.Errorf("SGD: invalid weight_decay value: %v", cfg.WeightDecay)
	}
	if cfg.Nesterov && (cfg.Momentum <= 0 || cfg.Dampening != 0) {
		return nil, fmt.Errorf("SGD: nesterov momentum requires a momentum and zero dampening")
	}
	g, err := newGroups("SGD", params, cfg.LR)
	if err != nil {
		return nil, err
	}
	return &SGD{paramSet: g, cfg: cfg, velocity: make(map[*nn.Parameter][]float64)}, nil
}

// Step performs a single optimization step.
func (s *SGD) Step() error {
	return s.each(func(group *ParamGroup, p *nn.Parameter) error {
		_, seen := s.velocity[p]
		var buf []float64
		if s.cfg.Momentum != 0 {
			buf = slot(s.velocity, p)
		}
		for i := range p.Data {
			d := p.Grad[i]
			if s.cfg.WeightDecay != 0 {
				d += s.cfg.WeightDecay * p.Data[i]
			}
			if s.cfg.Momentum != 0 {
				if !seen {
					buf[i] = d
				} else {
					buf[i] = s.cfg.Momentum*buf[i] + (1-s.cfg.Dampening)*d
				}
				if s.cfg.Nesterov {
					d += s.cfg.Momentum * buf[i]
				} else {
					d = buf[i]
				}
			}
			p.Data[i] -= group.LR * d
		}
		return nil
	})
}

func sgdFromParams(groups []ParamGroup, params config.Node) (Optimizer, error) {
	cfg := DefaultSGDConfig()
	r := config.NewReader(params)
	cfg.LR = r.Float("lr", cfg.LR)
	cfg.Momentum = r.Float("momentum", cfg.Momentum)
	cfg.Dampening = r.Float("dampening", cfg.Dampening)
	cfg.WeightDecay = r.Float("weight_decay", cfg.WeightDecay)
	cfg.Nesterov = r.Bool("nesterov", cfg.Nesterov)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("SGD: %w", err)
	}
	return NewSGD(groups, cfg)
}
