// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// An App owns an isolated logger, the diagnostic writer and a registry
// filled with the compiled-in modules. Run builds the trainer described by
// the configured arguments, loads it and trains it.
package app
