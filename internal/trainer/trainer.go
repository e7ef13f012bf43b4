// Package trainer defines the contract of a registered trainer.
package trainer

import (
	"context"

	"github.com/vk/trainbuild/internal/config"
)

// Trainer runs a training job described by a frozen configuration.
type Trainer interface {
	// Load builds everything the job needs: model, optimizer, scheduler.
	Load(ctx context.Context) error
	// Train runs the training loop.
	Train(ctx context.Context) error
	// SetArgs attaches the command-line arguments the trainer was built from.
	SetArgs(args *config.Args)
	// Args returns the attached command-line arguments.
	Args() *config.Args
}

// Base holds the configuration and arguments shared by trainers. It is
// meant to be embedded.
type Base struct {
	configuration *config.Configuration
	args          *config.Args
}

// NewBase creates a Base over configuration.
func NewBase(configuration *config.Configuration) Base {
	return Base{configuration: configuration}
}

// Configuration returns the configuration wrapper the trainer was built with.
func (b *Base) Configuration() *config.Configuration {
	return b.configuration
}

// Config returns the resolved configuration tree.
func (b *Base) Config() config.Node {
	if b.configuration == nil {
		return config.EmptyNode()
	}
	return b.configuration.Config()
}

func (b *Base) SetArgs(args *config.Args) {
	b.args = args
}

func (b *Base) Args() *config.Args {
	return b.args
}
