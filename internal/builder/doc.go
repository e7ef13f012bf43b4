// Package builder turns a configuration into the objects of a training job.
//
// It exposes four independent factory functions: BuildTrainer,
// BuildModel, BuildOptimizer and BuildScheduler. Each reads its fields off
// the configuration, resolves a factory by name and constructs the object.
// A trainer built by BuildTrainer is expected to call the other three
// itself from its Load method.
//
// Where a factory is looked up is decided per category by a resolution
// table: optimizers are looked up among the built-in optimizers first and
// in the registry second, schedulers only in the registry.
//
// Missing optional fields fall back to defaults with a warning. A missing
// model or scheduler factory is not reported at lookup time: construction
// with the missing factory fails with ErrNilFactory, after the model
// builder wrote a diagnostic through the registry's "writer".
package builder
