package config

// Args carries the parsed command-line arguments used to build a trainer.
type Args struct {
	// ConfigPath is the configuration file or directory to load.
	ConfigPath string
	// ConfigOverride is applied over the loaded file. It may be a JSON
	// object or HCL attribute syntax.
	ConfigOverride string
	// Opts are individual overrides, "dotted.key=value" or key value pairs.
	Opts []string
	// Fields holds arguments that were set explicitly and map onto
	// configuration keys of the same name (seed, model, batch_size, ...).
	Fields map[string]any
}
