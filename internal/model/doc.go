// Package model defines the contract every registered model satisfies.
//
// A model is constructed from the configuration by its registry factory and
// then initialised through two lifecycle hooks, Build and
// InitLossesAndMetrics, which the model builder always calls in that order.
// Embedding Base gives a model no-op hooks, so only models with real setup
// work need to implement them.
//
// OptimizerParameters decides which parameters an optimizer is bound to:
// models that group their parameters (for per-group learning rates)
// implement ParameterGrouper, everything else is optimized as one group of
// trainable parameters.
package model
