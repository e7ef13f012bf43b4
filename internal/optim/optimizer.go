// Package optim is the built-in optimization namespace: first-order
// optimizers over nn.Parameter groups and learning-rate schedulers that
// drive the groups' learning rates.
//
// Optimizers listed by LookupOptimizer are the "framework" classes that
// configuration can name directly (SGD, Adam, ...). Schedulers are exposed
// as constructors only; configuration reaches them through the registry.
package optim

import (
	"fmt"
	"sort"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/nn"
)

// Optimizer updates parameters from their gradients.
type Optimizer interface {
	// Name returns the optimizer type name for logging.
	Name() string
	// Step performs a single optimization step.
	Step() error
	// ZeroGrad resets the gradients of every parameter.
	ZeroGrad()
	// ParamGroups exposes the groups so schedulers can adjust their LR.
	ParamGroups() []*ParamGroup
	// LR returns the learning rate of the first group.
	LR() float64
	// SetLR sets the learning rate of every group.
	SetLR(lr float64)
}

// Scheduler adjusts the learning rates of an optimizer's groups.
type Scheduler interface {
	Name() string
	// Step advances the schedule by one iteration.
	Step()
	// LastLR returns the learning rate computed for each group by the last step.
	LastLR() []float64
}

// ParamGroup is a set of parameters sharing hyperparameters. A group with
// neither a non-zero LR nor one set through WithLR inherits the
// optimizer-wide learning rate; WithLR(0) freezes the group.
type ParamGroup struct {
	Params    []*nn.Parameter
	LR        float64
	InitialLR float64

	lrSet bool
}

// WithLR returns a copy of g with its own learning rate, zero included.
func (g ParamGroup) WithLR(lr float64) ParamGroup {
	g.LR = lr
	g.lrSet = true
	return g
}

// HasLR reports whether the group carries its own learning rate.
func (g ParamGroup) HasLR() bool {
	return g.lrSet || g.LR != 0
}

// Factory constructs an optimizer over groups from keyword parameters.
type Factory func(groups []ParamGroup, params config.Node) (Optimizer, error)

// SchedulerFactory constructs a scheduler bound to opt from keyword parameters.
type SchedulerFactory func(opt Optimizer, params config.Node) (Scheduler, error)

var builtinOptimizers = map[string]Factory{
	"SGD":     sgdFromParams,
	"Adam":    adamFromParams,
	"AdamW":   adamWFromParams,
	"RMSprop": rmspropFromParams,
	"Adagrad": adagradFromParams,
}

// LookupOptimizer resolves a built-in optimizer by its exact type name.
func LookupOptimizer(name string) (Factory, bool) {
	f, ok := builtinOptimizers[name]
	return f, ok
}

// OptimizerNames lists the built-in optimizer type names.
func OptimizerNames() []string {
	names := make([]string, 0, len(builtinOptimizers))
	for name := range builtinOptimizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// paramSet is the bookkeeping shared by every optimizer.
type paramSet struct {
	name   string
	groups []*ParamGroup
}

func newGroups(name string, in []ParamGroup, lr float64) (paramSet, error) {
	if lr < 0 {
		return paramSet{}, fmt.Errorf("%s: invalid learning rate: %v", name, lr)
	}
	if len(in) == 0 {
		return paramSet{}, fmt.Errorf("%s: optimizer got an empty parameter list", name)
	}
	out := make([]*ParamGroup, len(in))
	for i := range in {
		g := in[i]
		if !g.HasLR() {
			g.LR = lr
		}
		g.lrSet = true
		if g.LR < 0 {
			return paramSet{}, fmt.Errorf("%s: invalid learning rate in group %d: %v", name, i, g.LR)
		}
		g.InitialLR = g.LR
		out[i] = &g
	}
	return paramSet{name: name, groups: out}, nil
}

func (g *paramSet) Name() string {
	return g.name
}

func (g *paramSet) ParamGroups() []*ParamGroup {
	return g.groups
}

func (g *paramSet) ZeroGrad() {
	for _, group := range g.groups {
		for _, p := range group.Params {
			p.ZeroGrad()
		}
	}
}

func (g *paramSet) LR() float64 {
	return g.groups[0].LR
}

func (g *paramSet) SetLR(lr float64) {
	for _, group := range g.groups {
		group.LR = lr
	}
}

// each visits every trainable parameter with its group.
func (g *paramSet) each(fn func(group *ParamGroup, p *nn.Parameter) error) error {
	for _, group := range g.groups {
		for _, p := range group.Params {
			if !p.RequiresGrad || len(p.Grad) != len(p.Data) {
				continue
			}
			if err := fn(group, p); err != nil {
				return fmt.Errorf("%s: parameter %s: %w", g.name, p.Name, err)
			}
		}
	}
	return nil
}

// slot returns per-parameter state, allocating it on first use.
func slot(state map[*nn.Parameter][]float64, p *nn.Parameter) []float64 {
	s, ok := state[p]
	if !ok {
		s = make([]float64, len(p.Data))
		state[p] = s
	}
	return s
}
