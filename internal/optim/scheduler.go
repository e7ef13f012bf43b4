package optim

import (
	"fmt"
	"math"
	"sort"
)

// LRFunc computes the learning rate of a group at an epoch from its
// initial learning rate.
type LRFunc func(epoch int, baseLR float64) float64

// Schedule drives the learning rate of every group of an optimizer with a
// closed-form LRFunc. Construction performs the initial step, so the groups
// hold the epoch 0 rate as soon as the schedule exists.
type Schedule struct {
	name    string
	opt     Optimizer
	fn      LRFunc
	baseLRs []float64
	lastLRs []float64
	epoch   int
}

// NewSchedule binds fn to opt under the given name.
func NewSchedule(name string, opt Optimizer, fn LRFunc) (*Schedule, error) {
	if opt == nil {
		return nil, fmt.Errorf("%s: optimizer is nil", name)
	}
	groups := opt.ParamGroups()
	base := make([]float64, len(groups))
	for i, g := range groups {
		base[i] = g.InitialLR
	}
	s := &Schedule{name: name, opt: opt, fn: fn, baseLRs: base, epoch: -1}
	s.Step()
	return s, nil
}

func (s *Schedule) Name() string {
	return s.name
}

// Epoch returns the number of steps taken since construction.
func (s *Schedule) Epoch() int {
	return s.epoch
}

// Step advances the schedule and writes the new rate into every group.
func (s *Schedule) Step() {
	s.epoch++
	groups := s.opt.ParamGroups()
	lrs := make([]float64, len(groups))
	for i, g := range groups {
		lrs[i] = s.fn(s.epoch, s.baseLRs[i])
		g.LR = lrs[i]
	}
	s.lastLRs = lrs
}

func (s *Schedule) LastLR() []float64 {
	out := make([]float64, len(s.lastLRs))
	copy(out, s.lastLRs)
	return out
}

// NewLambdaLR scales the initial rate by lambda(epoch).
func NewLambdaLR(opt Optimizer, lambda func(epoch int) float64) (*Schedule, error) {
	if lambda == nil {
		return nil, fmt.Errorf("LambdaLR: lambda is nil")
	}
	return NewSchedule("LambdaLR", opt, func(epoch int, base float64) float64 {
		return base * lambda(epoch)
	})
}

// NewStepLR decays the rate by gamma every stepSize epochs.
func NewStepLR(opt Optimizer, stepSize int, gamma float64) (*Schedule, error) {
	if stepSize <= 0 {
		return nil, fmt.Errorf("StepLR: step_size must be positive, got %d", stepSize)
	}
	return NewSchedule("StepLR", opt, func(epoch int, base float64) float64 {
		return base * math.Pow(gamma, float64(epoch/stepSize))
	})
}

// NewMultiStepLR decays the rate by gamma once the epoch reaches each milestone.
func NewMultiStepLR(opt Optimizer, milestones []int, gamma float64) (*Schedule, error) {
	ms := append([]int(nil), milestones...)
	sort.Ints(ms)
	return NewSchedule("MultiStepLR", opt, func(epoch int, base float64) float64 {
		return base * math.Pow(gamma, float64(BisectRight(ms, epoch)))
	})
}

// NewExponentialLR decays the rate by gamma every epoch.
func NewExponentialLR(opt Optimizer, gamma float64) (*Schedule, error) {
	return NewSchedule("ExponentialLR", opt, func(epoch int, base float64) float64 {
		return base * math.Pow(gamma, float64(epoch))
	})
}

// NewCosineAnnealingLR anneals the rate from its initial value to etaMin
// over tMax epochs along a half cosine, then restarts.
func NewCosineAnnealingLR(opt Optimizer, tMax int, etaMin float64) (*Schedule, error) {
	if tMax <= 0 {
		return nil, fmt.Errorf("CosineAnnealingLR: T_max must be positive, got %d", tMax)
	}
	return NewSchedule("CosineAnnealingLR", opt, func(epoch int, base float64) float64 {
		return etaMin + (base-etaMin)*(1+math.Cos(math.Pi*float64(epoch)/float64(tMax)))/2
	})
}

// BisectRight returns the number of elements of the sorted slice a that
// are less than or equal to x.
func BisectRight(a []int, x int) int {
	return sort.Search(len(a), func(i int) bool { return a[i] > x })
}
