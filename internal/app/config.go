package app

import (
	"errors"

	"github.com/vk/trainbuild/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Args are the training arguments handed to the trainer builder.
	Args *config.Args

	LogFormat string
	LogLevel  string
	// RunID tags every log line and diagnostic event. Empty means generate one.
	RunID string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Args == nil || cfg.Args.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
