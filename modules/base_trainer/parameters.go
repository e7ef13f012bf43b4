package base_trainer

import (
	"fmt"

	"github.com/vk/trainbuild/internal/config"
)

// Parameters are the training_parameters the trainer uses.
type Parameters struct {
	Seed          int64
	BatchSize     int
	MaxIterations int
	LogInterval   int
	LRScheduler   bool
	ClipGradients bool
	MaxGradL2Norm float64
	EventStream   EventStream
}

// EventStream configures the socket.io stream diagnostics are mirrored to.
type EventStream struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
}

// ReadParameters decodes training parameters. Keys used by other
// components (warmup settings, trainer name, ...) are ignored.
func ReadParameters(n config.Node) (Parameters, error) {
	r := config.NewReader(n)
	p := Parameters{
		Seed:          int64(r.Int("seed", 1)),
		BatchSize:     r.Int("batch_size", 32),
		MaxIterations: r.Int("max_iterations", 100),
		LogInterval:   r.Int("log_interval", 10),
		LRScheduler:   r.Bool("lr_scheduler", false),
		ClipGradients: r.Bool("clip_gradients", false),
		MaxGradL2Norm: r.Float("max_grad_l2_norm", 0.25),
	}
	if err := r.DecodeErr(); err != nil {
		return Parameters{}, fmt.Errorf("training_parameters: %w", err)
	}

	es := config.NewReader(n.Get("event_stream"))
	p.EventStream = EventStream{
		URL:                es.String("url", ""),
		Namespace:          es.String("namespace", "/"),
		Event:              es.String("event", "log"),
		InsecureSkipVerify: es.Bool("insecure_skip_verify", false),
	}
	if err := es.Err(); err != nil {
		return Parameters{}, fmt.Errorf("training_parameters.event_stream: %w", err)
	}

	if p.BatchSize <= 0 {
		return Parameters{}, fmt.Errorf("training_parameters: batch_size must be positive, got %d", p.BatchSize)
	}
	if p.MaxIterations < 0 {
		return Parameters{}, fmt.Errorf("training_parameters: max_iterations must not be negative, got %d", p.MaxIterations)
	}
	return p, nil
}
