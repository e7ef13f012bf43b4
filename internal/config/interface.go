package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from a file or directory path and returns
	// its tree.
	Load(ctx context.Context, path string) (Node, error)
}
