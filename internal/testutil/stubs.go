package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/model"
	"github.com/vk/trainbuild/internal/nn"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/trainer"
)

// StubTrainer records the configuration it was constructed with.
type StubTrainer struct {
	trainer.Base
	Loaded  bool
	Trained bool
}

func (s *StubTrainer) Load(context.Context) error {
	s.Loaded = true
	return nil
}

func (s *StubTrainer) Train(context.Context) error {
	s.Trained = true
	return nil
}

// NewStubTrainer is a registry.TrainerFactory for StubTrainer.
func NewStubTrainer(_ context.Context, configuration *config.Configuration) (trainer.Trainer, error) {
	return &StubTrainer{Base: trainer.NewBase(configuration)}, nil
}

// StubModel is a model with a single two-element weight vector that counts
// its lifecycle hook calls.
type StubModel struct {
	Config    config.Node
	Weight    *nn.Parameter
	Calls     []string
	BuildErr  error
	modelName string
}

func (m *StubModel) Name() string { return m.modelName }

func (m *StubModel) Parameters() []*nn.Parameter { return []*nn.Parameter{m.Weight} }

func (m *StubModel) Build(context.Context) error {
	m.Calls = append(m.Calls, "build")
	return m.BuildErr
}

func (m *StubModel) InitLossesAndMetrics(context.Context) error {
	m.Calls = append(m.Calls, "init_losses_and_metrics")
	return nil
}

// NewStubModel is a registry.ModelFactory for StubModel.
func NewStubModel(_ context.Context, cfg config.Node) (model.Model, error) {
	return &StubModel{
		Config:    cfg,
		Weight:    nn.Zeros("weight", 2),
		modelName: cfg.String("model", ""),
	}, nil
}

// StubOptimizer records the arguments it was constructed with.
type StubOptimizer struct {
	optim.Optimizer
	Groups []optim.ParamGroup
	Params config.Node
	Label  string
}

// StubOptimizerFactory returns an optim.Factory producing StubOptimizers
// labelled with label, wrapping a plain SGD so schedulers can drive it.
func StubOptimizerFactory(label string) optim.Factory {
	return func(groups []optim.ParamGroup, params config.Node) (optim.Optimizer, error) {
		inner, err := optim.NewSGD(groups, optim.SGDConfig{LR: 0.1})
		if err != nil {
			return nil, err
		}
		return &StubOptimizer{Optimizer: inner, Groups: groups, Params: params, Label: label}, nil
	}
}

// StubScheduler records the arguments it was constructed with.
type StubScheduler struct {
	Optimizer optim.Optimizer
	Params    config.Node
	steps     int
}

func (s *StubScheduler) Name() string { return "stub" }

func (s *StubScheduler) Step() { s.steps++ }

func (s *StubScheduler) LastLR() []float64 { return []float64{s.Optimizer.LR()} }

// NewStubScheduler is an optim.SchedulerFactory for StubScheduler.
func NewStubScheduler(opt optim.Optimizer, params config.Node) (optim.Scheduler, error) {
	return &StubScheduler{Optimizer: opt, Params: params}, nil
}

// MessageWriter captures diagnostic messages.
type MessageWriter struct {
	mu       sync.Mutex
	messages []string
}

func (w *MessageWriter) Write(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msg)
}

// Messages returns the captured messages.
func (w *MessageWriter) Messages() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.messages...)
}

// Node builds a config.Node from a Go tree, failing the test on error.
func Node(t *testing.T, tree map[string]any) config.Node {
	t.Helper()
	n, err := config.FromGo(tree)
	require.NoError(t, err)
	return n
}
