// Package adam_w registers "adam_w", an AdamW variant whose bias
// correction can be switched off. It is not a built-in optimizer name, so
// configurations reach it through the registry.
package adam_w

import (
	"fmt"

	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/optim"
	"github.com/vk/trainbuild/internal/registry"
)

// Name is the registry name of the optimizer.
const Name = "adam_w"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the optimizer factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterOptimizer(Name, New)
}

// New is the optim.Factory of the optimizer. It accepts the AdamW
// parameters plus correct_bias.
func New(groups []optim.ParamGroup, params config.Node) (optim.Optimizer, error) {
	r := config.NewReader(params)
	cfg := optim.ReadAdamConfig(r, optim.DefaultAdamWConfig())
	cfg.CorrectBias = r.Bool("correct_bias", true)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}
	return optim.NewAdamW(groups, cfg)
}
