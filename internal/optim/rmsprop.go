package optim

import (
	"fmt"
	"math"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/nn"
)

// RMSpropConfig holds the hyperparameters of RMSprop.
type RMSpropConfig struct {
	LR          float64
	Alpha       float64
	Eps         float64
	WeightDecay float64
	Momentum    float64
	Centered    bool
}

// DefaultRMSpropConfig returns the RMSprop defaults.
func DefaultRMSpropConfig() RMSpropConfig {
	return RMSpropConfig{LR: 1e-2, Alpha: 0.99, Eps: 1e-8}
}

// RMSprop scales each step by a running average of squared gradients.
type RMSprop struct {
	paramSet
	cfg      RMSpropConfig
	square   map[*nn.Parameter][]float64
	gradAvg  map[*nn.Parameter][]float64
	momentum map[*nn.Parameter][]float64
}

// NewRMSprop creates an RMSprop optimizer.
func NewRMSprop(params []ParamGroup, cfg RMSpropConfig) (*RMSprop, error) {
	if cfg.Alpha < 0 {
		return nil, fmt.Errorf("RMSprop: invalid alpha value: %v", cfg.Alpha)
	}
	if cfg.Eps < 0 {
		return nil, fmt.Errorf("RMSprop: invalid epsilon value: %v", cfg.Eps)
	}
	if cfg.Momentum < 0 {
		return nil, fmt.Errorf("RMSprop: invalid momentum value: %v", cfg.Momentum)
	}
	g, err := newGroups("RMSprop", params, cfg.LR)
	if err != nil {
		return nil, err
	}
	return &RMSprop{
		paramSet: g,
		cfg:      cfg,
		square:   make(map[*nn.Parameter][]float64),
		gradAvg:  make(map[*nn.Parameter][]float64),
		momentum: make(map[*nn.Parameter][]float64),
	}, nil
}

// Step performs a single optimization step.
func (o *RMSprop) Step() error {
	return o.each(func(group *ParamGroup, p *nn.Parameter) error {
		sq := slot(o.square, p)
		for i := range p.Data {
			g := p.Grad[i]
			if o.cfg.WeightDecay != 0 {
				g += o.cfg.WeightDecay * p.Data[i]
			}
			sq[i] = o.cfg.Alpha*sq[i] + (1-o.cfg.Alpha)*g*g

			avg := sq[i]
			if o.cfg.Centered {
				ga := slot(o.gradAvg, p)
				ga[i] = o.cfg.Alpha*ga[i] + (1-o.cfg.Alpha)*g
				avg -= ga[i] * ga[i]
			}
			denom := math.Sqrt(avg) + o.cfg.Eps

			if o.cfg.Momentum > 0 {
				buf := slot(o.momentum, p)
				buf[i] = o.cfg.Momentum*buf[i] + g/denom
				p.Data[i] -= group.LR * buf[i]
			} else {
				p.Data[i] -= group.LR * g / denom
			}
		}
		return nil
	})
}

func rmspropFromParams(groups []ParamGroup, params config.Node) (Optimizer, error) {
	cfg := DefaultRMSpropConfig()
	r := config.NewReader(params)
	cfg.LR = r.Float("lr", cfg.LR)
	cfg.Alpha = r.Float("alpha", cfg.Alpha)
	cfg.Eps = r.Float("eps", cfg.Eps)
	cfg.WeightDecay = r.Float("weight_decay", cfg.WeightDecay)
	cfg.Momentum = r.Float("momentum", cfg.Momentum)
	cfg.Centered = r.Bool("centered", cfg.Centered)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("RMSprop: %w", err)
	}
	return NewRMSprop(groups, cfg)
}
