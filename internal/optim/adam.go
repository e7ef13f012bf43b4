package optim

import (
	"fmt"
	"math"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/nn"
)

// AdamConfig holds the hyperparameters shared by Adam and AdamW.
type AdamConfig struct {
	LR          float64
	Beta1       float64
	Beta2       float64
	Eps         float64
	WeightDecay float64
	// CorrectBias applies the bias correction of the moment estimates.
	CorrectBias bool
}

// DefaultAdamConfig returns the Adam defaults.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{
		LR:          1e-3,
		Beta1:       0.9,
		Beta2:       0.999,
		Eps:         1e-8,
		WeightDecay: 0,
		CorrectBias: true,
	}
}

// DefaultAdamWConfig returns the AdamW defaults.
func DefaultAdamWConfig() AdamConfig {
	cfg := DefaultAdamConfig()
	cfg.WeightDecay = 1e-2
	return cfg
}

// Adam implements Adam. With decoupled set it is AdamW: weight decay is
// applied to the weights directly instead of being added to the gradient.
type Adam struct {
	paramSet
	cfg       AdamConfig
	decoupled bool
	step      int
	m         map[*nn.Parameter][]float64
	v         map[*nn.Parameter][]float64
}

// NewAdam creates an Adam optimizer.
func NewAdam(params []ParamGroup, cfg AdamConfig) (*Adam, error) {
	return newAdam("Adam", params, cfg, false)
}

// NewAdamW creates an AdamW optimizer.
func NewAdamW(params []ParamGroup, cfg AdamConfig) (*Adam, error) {
	return newAdam("AdamW", params, cfg, true)
}

func newAdam(name string, params []ParamGroup, cfg AdamConfig, decoupled bool) (*Adam, error) {
	if cfg.Beta1 < 0 || cfg.Beta1 >= 1 {
		return nil, fmt.Errorf("%s: invalid beta parameter at index 0: %v", name, cfg.Beta1)
	}
	if cfg.Beta2 < 0 || cfg.Beta2 >= 1 {
		return nil, fmt.Errorf("%s: invalid beta parameter at index 1: %v", name, cfg.Beta2)
	}
	if cfg.Eps < 0 {
		return nil, fmt.Errorf("%s: invalid epsilon value: %v", name, cfg.Eps)
	}
	g, err := newGroups(name, params, cfg.LR)
	if err != nil {
		return nil, err
	}
	return &Adam{
		paramSet:  g,
		cfg:       cfg,
		decoupled: decoupled,
		m:         make(map[*nn.Parameter][]float64),
		v:         make(map[*nn.Parameter][]float64),
	}, nil
}

// StepCount returns the number of steps taken.
func (a *Adam) StepCount() int {
	return a.step
}

// Step performs a single optimization step.
func (a *Adam) Step() error {
	a.step++
	bc1, bc2 := 1.0, 1.0
	if a.cfg.CorrectBias {
		bc1 = 1 - math.Pow(a.cfg.Beta1, float64(a.step))
		bc2 = 1 - math.Pow(a.cfg.Beta2, float64(a.step))
	}

	return a.each(func(group *ParamGroup, p *nn.Parameter) error {
		m := slot(a.m, p)
		v := slot(a.v, p)
		for i := range p.Data {
			g := p.Grad[i]
			if a.cfg.WeightDecay != 0 {
				if a.decoupled {
					p.Data[i] *= 1 - group.LR*a.cfg.WeightDecay
				} else {
					g += a.cfg.WeightDecay * p.Data[i]
				}
			}
			m[i] = a.cfg.Beta1*m[i] + (1-a.cfg.Beta1)*g
			v[i] = a.cfg.Beta2*v[i] + (1-a.cfg.Beta2)*g*g
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			p.Data[i] -= group.LR * mHat / (math.Sqrt(vHat) + a.cfg.Eps)
		}
		return nil
	})
}

// ReadAdamConfig decodes Adam hyperparameters from a params reader on top
// of cfg, so optimizers built on Adam share the built-in parameter names.
func ReadAdamConfig(r *config.Reader, cfg AdamConfig) AdamConfig {
	cfg.LR = r.Float("lr", cfg.LR)
	if betas := r.Floats("betas", nil); betas != nil {
		if len(betas) == 2 {
			cfg.Beta1, cfg.Beta2 = betas[0], betas[1]
		} else {
			cfg.Beta1 = -1
		}
	}
	cfg.Eps = r.Float("eps", cfg.Eps)
	cfg.WeightDecay = r.Float("weight_decay", cfg.WeightDecay)
	return cfg
}

func adamFromParams(groups []ParamGroup, params config.Node) (Optimizer, error) {
	r := config.NewReader(params)
	cfg := ReadAdamConfig(r, DefaultAdamConfig())
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("Adam: %w", err)
	}
	return NewAdam(groups, cfg)
}

func adamWFromParams(groups []ParamGroup, params config.Node) (Optimizer, error) {
	r := config.NewReader(params)
	cfg := ReadAdamConfig(r, DefaultAdamWConfig())
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("AdamW: %w", err)
	}
	return NewAdamW(groups, cfg)
}

