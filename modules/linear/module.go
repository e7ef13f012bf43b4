package linear

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/model"
	"github.com/vk/trainbuild/internal/nn"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
)

// Name is the registry name of the model.
const Name = "linear"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the model factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel(Name, New)
}

// Model is a linear regression model y = w·x + b trained on mean squared
// error.
type Model struct {
	model.Base
	inFeatures     int
	biasMultiplier float64
	biasGroup      bool

	Weight *nn.Parameter
	Bias   *nn.Parameter
}

// New is the registry.ModelFactory of the model. It reads in_features and
// bias_lr_multiplier from the model attributes.
func New(_ context.Context, cfg config.Node) (model.Model, error) {
	r := config.NewReader(cfg)
	r.String("model", Name)
	m := &Model{
		inFeatures:     r.Int("in_features", 1),
		biasMultiplier: r.Float("bias_lr_multiplier", 0),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}
	if v, ok := cfg.Lookup("bias_lr_multiplier"); ok && !v.IsNull() {
		m.biasGroup = true
	}
	if m.inFeatures <= 0 {
		return nil, fmt.Errorf("linear: in_features must be positive, got %d", m.inFeatures)
	}
	return m, nil
}

func (m *Model) Name() string { return Name }

// InputSize returns the number of input features.
func (m *Model) InputSize() int { return m.inFeatures }

// Build allocates the weights.
func (m *Model) Build(context.Context) error {
	m.Weight = nn.Zeros("weight", m.inFeatures)
	m.Bias = nn.Zeros("bias", 1)
	return nil
}

func (m *Model) Parameters() []*nn.Parameter {
	if m.Weight == nil {
		return nil
	}
	return []*nn.Parameter{m.Weight, m.Bias}
}

// Predict returns w·x + b.
func (m *Model) Predict(x []float64) float64 {
	y := m.Bias.Data[0]
	for j, w := range m.Weight.Data {
		y += w * x[j]
	}
	return y
}

// Loss returns the mean squared error over the batch and accumulates its
// gradient into the parameters.
func (m *Model) Loss(batch model.Batch) (float64, error) {
	if m.Weight == nil {
		return 0, errors.New("linear: model is not built")
	}
	n := len(batch.Inputs)
	if n == 0 || n != len(batch.Targets) {
		return 0, fmt.Errorf("linear: batch has %d inputs and %d targets", n, len(batch.Targets))
	}

	var loss float64
	scale := 2 / float64(n)
	for i, x := range batch.Inputs {
		if len(x) != m.inFeatures {
			return 0, fmt.Errorf("linear: sample %d has %d features, expected %d", i, len(x), m.inFeatures)
		}
		diff := m.Predict(x) - batch.Targets[i]
		loss += diff * diff
		for j := range m.Weight.Grad {
			m.Weight.Grad[j] += scale * diff * x[j]
		}
		m.Bias.Grad[0] += scale * diff
	}
	return loss / float64(n), nil
}

// OptimizerParameters puts the bias in its own group when a bias learning
// rate multiplier is configured. A zero multiplier freezes the bias.
func (m *Model) OptimizerParameters(cfg config.Node) ([]optim.ParamGroup, error) {
	if m.Weight == nil {
		return nil, errors.New("linear: model is not built")
	}
	if !m.biasGroup {
		return []optim.ParamGroup{{Params: m.Parameters()}}, nil
	}
	lrNode, ok := cfg.Lookup("optimizer_attributes.params.lr")
	if !ok {
		return nil, errors.New("linear: bias_lr_multiplier requires optimizer_attributes.params.lr")
	}
	lr, err := lrNode.AsFloat()
	if err != nil {
		return nil, fmt.Errorf("linear: optimizer lr: %w", err)
	}
	return []optim.ParamGroup{
		{Params: []*nn.Parameter{m.Weight}},
		optim.ParamGroup{Params: []*nn.Parameter{m.Bias}}.WithLR(lr * m.biasMultiplier),
	}, nil
}
