// Package base_trainer registers "base_trainer", the default trainer. On
// Load it builds the model, optimizer and optional scheduler through the
// builder package; on Train it fits the model to a synthetic regression
// task generated from the configured seed.
package base_trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vk/trainbuild/internal/builder"
	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/model"
	"github.com/vk/trainbuild/internal/nn"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/internal/trainer"
	"github.com/vk/trainbuild/internal/writer"
)

// Name is the registry name of the trainer.
const Name = "base_trainer"

// ErrNotLoaded is returned by Train before a successful Load.
var ErrNotLoaded = errors.New("trainer is not loaded")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the trainer factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTrainer(Name, Factory(r))
}

// Factory returns the trainer factory. Trainers built by it resolve their
// components through r.
func Factory(r *registry.Registry) registry.TrainerFactory {
	return func(ctx context.Context, configuration *config.Configuration) (trainer.Trainer, error) {
		return New(r, configuration), nil
	}
}

type levelWriter interface {
	WriteLevel(level slog.Level, msg string, args ...any)
}

// Trainer is the default trainer.
type Trainer struct {
	trainer.Base
	reg *registry.Registry

	params  Parameters
	runType string
	out     any

	Model     model.Model
	Optimizer optim.Optimizer
	Scheduler optim.Scheduler

	lastLoss float64
}

// New creates a trainer over configuration.
func New(r *registry.Registry, configuration *config.Configuration) *Trainer {
	return &Trainer{Base: trainer.NewBase(configuration), reg: r}
}

// Parameters returns the training parameters read by Load.
func (t *Trainer) Parameters() Parameters {
	return t.params
}

// LastLoss returns the loss of the last training iteration or evaluation.
func (t *Trainer) LastLoss() float64 {
	return t.lastLoss
}

// Load builds the model, the optimizer and, when lr_scheduler is set, the
// scheduler.
func (t *Trainer) Load(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("trainer", Name)
	cfg := t.Config()

	params, err := ReadParameters(cfg.Get("training_parameters"))
	if err != nil {
		return err
	}
	t.params = params
	t.runType = cfg.String("run_type", "train")
	t.out, _ = t.reg.Get(registry.WriterKey)

	if err := t.connectEventStream(ctx); err != nil {
		return err
	}

	m, err := builder.BuildModel(ctx, t.reg, modelConfig(cfg))
	if err != nil {
		return err
	}
	opt, err := builder.BuildOptimizer(ctx, t.reg, m, cfg)
	if err != nil {
		return err
	}
	var sched optim.Scheduler
	if params.LRScheduler {
		sched, err = builder.BuildScheduler(ctx, t.reg, opt, cfg)
		if err != nil {
			return err
		}
	}
	t.Model, t.Optimizer, t.Scheduler = m, opt, sched

	logger.Debug("Trainer components built.", "model", m.Name(), "optimizer", opt.Name(), "scheduler", schedulerName(sched))
	t.report(ctx, slog.LevelInfo, "Trainer loaded.", "model", m.Name(), "optimizer", opt.Name())
	return nil
}

// Train runs the training loop when the run type includes "train", then
// evaluates when it includes "val" or "inference".
func (t *Trainer) Train(ctx context.Context) error {
	if t.Model == nil || t.Optimizer == nil {
		return ErrNotLoaded
	}
	lc, ok := t.Model.(model.LossComputer)
	if !ok {
		return fmt.Errorf("model %s cannot compute a loss", t.Model.Name())
	}
	task := newSyntheticTask(t.params.Seed, inputSize(t.Model))

	if strings.Contains(t.runType, "train") {
		if err := t.fit(ctx, lc, task); err != nil {
			return err
		}
	} else {
		ctxlog.FromContext(ctx).Info("Run type does not include training, skipping.", "run_type", t.runType)
	}

	if strings.Contains(t.runType, "val") || strings.Contains(t.runType, "inference") {
		loss, err := t.evaluate(lc, task)
		if err != nil {
			return err
		}
		t.report(ctx, slog.LevelInfo, "Evaluation finished.", "loss", loss)
	}
	return nil
}

func (t *Trainer) fit(ctx context.Context, lc model.LossComputer, task *syntheticTask) error {
	params := t.Model.Parameters()
	t.report(ctx, slog.LevelInfo, "Starting training.", "max_iterations", t.params.MaxIterations)

	for it := 1; it <= t.params.MaxIterations; it++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("training interrupted at iteration %d: %w", it, err)
		}

		t.Optimizer.ZeroGrad()
		loss, err := lc.Loss(task.Batch(t.params.BatchSize))
		if err != nil {
			return fmt.Errorf("iteration %d: %w", it, err)
		}
		if t.params.ClipGradients {
			nn.ClipGradNorm(params, t.params.MaxGradL2Norm)
		}
		if err := t.Optimizer.Step(); err != nil {
			return fmt.Errorf("iteration %d: %w", it, err)
		}
		if t.Scheduler != nil {
			t.Scheduler.Step()
		}
		t.lastLoss = loss

		if t.params.LogInterval > 0 && it%t.params.LogInterval == 0 {
			t.report(ctx, slog.LevelInfo, "Training progress.", "iteration", it, "loss", loss, "lr", t.Optimizer.LR())
		}
	}

	t.report(ctx, slog.LevelInfo, "Training finished.", "iterations", t.params.MaxIterations, "loss", t.lastLoss)
	return nil
}

func (t *Trainer) evaluate(lc model.LossComputer, task *syntheticTask) (float64, error) {
	loss, err := lc.Loss(task.Batch(t.params.BatchSize))
	t.Optimizer.ZeroGrad()
	if err != nil {
		return 0, fmt.Errorf("evaluation: %w", err)
	}
	t.lastLoss = loss
	return loss, nil
}

func (t *Trainer) connectEventStream(ctx context.Context) error {
	es := t.params.EventStream
	if es.URL == "" {
		return nil
	}
	w, ok := t.out.(*writer.Writer)
	if !ok {
		ctxlog.FromContext(ctx).Warn("Event stream configured but no writer is registered, ignoring.", "url", es.URL)
		return nil
	}
	sink, err := writer.DialSocketIO(ctx, writer.SocketIOOptions{
		URL:                es.URL,
		Namespace:          es.Namespace,
		Event:              es.Event,
		InsecureSkipVerify: es.InsecureSkipVerify,
	})
	if err != nil {
		return fmt.Errorf("failed to connect event stream: %w", err)
	}
	w.Attach(sink)
	return nil
}

func (t *Trainer) report(ctx context.Context, level slog.Level, msg string, args ...any) {
	switch w := t.out.(type) {
	case levelWriter:
		w.WriteLevel(level, msg, args...)
	case builder.MessageWriter:
		w.Write(msg)
	default:
		ctxlog.FromContext(ctx).Log(ctx, level, msg, args...)
	}
}

// modelConfig returns the attributes of the configured model with the
// model field copied over as is, which is what the model factory is built
// from. A malformed model field is left for BuildModel to reject.
func modelConfig(cfg config.Node) config.Node {
	name := cfg.String("model", "")
	attrs, ok := cfg.Get("model_attributes").Lookup(name)
	if !ok || name == "" || !attrs.IsObject() {
		attrs = config.EmptyNode()
	}
	named, _ := config.FromGo(map[string]any{"model": cfg.Get("model")})
	return config.Merge(attrs, named)
}

func inputSize(m model.Model) int {
	if s, ok := m.(interface{ InputSize() int }); ok {
		return s.InputSize()
	}
	return 1
}

func schedulerName(s optim.Scheduler) string {
	if s == nil {
		return "none"
	}
	return s.Name()
}
