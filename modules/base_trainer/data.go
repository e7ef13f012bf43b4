package base_trainer

import (
	"math/rand"

	"github.com/vk/trainbuild/internal/model"
)

// syntheticTask samples a noisy linear regression problem. The same seed
// always yields the same batches.
type syntheticTask struct {
	rng     *rand.Rand
	weights []float64
	bias    float64
	noise   float64
}

func newSyntheticTask(seed int64, inFeatures int) *syntheticTask {
	weights := make([]float64, inFeatures)
	for j := range weights {
		weights[j] = float64(j+1) / float64(inFeatures)
	}
	return &syntheticTask{
		rng:     rand.New(rand.NewSource(seed)),
		weights: weights,
		bias:    0.5,
		noise:   0.01,
	}
}

// Batch draws n samples with inputs uniform in [-1, 1].
func (s *syntheticTask) Batch(n int) model.Batch {
	b := model.Batch{
		Inputs:  make([][]float64, n),
		Targets: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x := make([]float64, len(s.weights))
		y := s.bias
		for j, w := range s.weights {
			x[j] = s.rng.Float64()*2 - 1
			y += w * x[j]
		}
		b.Inputs[i] = x
		b.Targets[i] = y + s.noise*s.rng.NormFloat64()
	}
	return b
}
