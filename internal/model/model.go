package model

import (
	"context"
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/nn"
	"github.com/vk/trainbuild/internal/optim"
)

// Model is a trainable model.
type Model interface {
	// Name returns the registry name the model was built under.
	Name() string
	// Parameters returns every parameter of the model.
	Parameters() []*nn.Parameter
	// Build allocates the model's layers once it has been constructed.
	Build(ctx context.Context) error
	// InitLossesAndMetrics prepares losses and metrics after Build.
	InitLossesAndMetrics(ctx context.Context) error
}

// Base provides no-op lifecycle hooks for embedding.
type Base struct{}

func (Base) Build(context.Context) error {
	return nil
}

func (Base) InitLossesAndMetrics(context.Context) error {
	return nil
}

// Batch is a minibatch of regression samples.
type Batch struct {
	Inputs  [][]float64
	Targets []float64
}

// LossComputer is implemented by models that can compute a loss for a batch
// and accumulate its gradients into their parameters.
type LossComputer interface {
	Loss(batch Batch) (float64, error)
}

// ParameterGrouper is implemented by models that split their parameters into
// optimizer groups.
type ParameterGrouper interface {
	OptimizerParameters(cfg config.Node) ([]optim.ParamGroup, error)
}

// OptimizerParameters returns the parameter groups an optimizer for m should
// be bound to.
func OptimizerParameters(m Model, cfg config.Node) ([]optim.ParamGroup, error) {
	if g, ok := m.(ParameterGrouper); ok {
		groups, err := g.OptimizerParameters(cfg)
		if err != nil {
			return nil, fmt.Errorf("model %s: selecting optimizer parameters: %w", m.Name(), err)
		}
		return groups, nil
	}
	params := nn.Trainable(m.Parameters())
	if len(params) == 0 {
		return nil, fmt.Errorf("model %s has no trainable parameters", m.Name())
	}
	return []optim.ParamGroup{{Params: params}}, nil
}
