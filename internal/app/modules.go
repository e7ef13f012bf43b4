package app

import (
	"github.com/vk/trainbuild/internal/registry"
	"github.com/vk/trainbuild/modules/adam_w"
	"github.com/vk/trainbuild/modules/base_trainer"
	"github.com/vk/trainbuild/modules/linear"
	"github.com/vk/trainbuild/modules/pythia_scheduler"
	"github.com/vk/trainbuild/modules/schedulers"
)

// coreModules is the definitive list of all modules that are compiled into
// the trainbuild binary.
var coreModules = []registry.Module{
	&base_trainer.Module{},
	&linear.Module{},
	&pythia_scheduler.Module{},
	&schedulers.Module{},
	&adam_w.Module{},
}
