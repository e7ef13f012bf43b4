package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns the base configuration tree.
func Defaults() (Node, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(defaultsYAML, &raw); err != nil {
		return Node{}, fmt.Errorf("invalid built-in defaults: %w", err)
	}
	return FromGo(raw)
}
