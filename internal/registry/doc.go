// Package registry provides the central "glue" for the module system.
//
// The Registry maps the string names used in configuration files (e.g.
// training_parameters.trainer = "base_trainer") to the compiled Go factories
// that construct trainers, models, optimizers and schedulers. Modules fill it
// during application startup through their Register method.
//
// Besides the four factory categories the registry holds a generic
// key/value slot used as a side channel between components: the trainer
// builder publishes "config" and "configuration" there and the application
// publishes its diagnostic "writer".
//
// A Registry is an explicit object passed to whoever needs it. It has no
// lock: it is populated at startup and used by one build at a time.
package registry
