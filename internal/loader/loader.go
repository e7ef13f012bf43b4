// Package loader implements config.Loader over several file formats. The
// format is chosen by extension; a directory path merges every supported
// file below it in lexical order.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vk/trainbuild/internal/config"
	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/fsutil"
	"github.com/vk/trainbuild/internal/hcl"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported configuration format")

// includesKey lists files a configuration file is layered over.
const includesKey = "includes"

// Extensions lists the supported configuration file extensions.
var Extensions = []string{".hcl", ".yaml", ".yml", ".toml", ".json"}

// Loader reads configuration files of any supported format.
type Loader struct {
	hcl *hcl.Loader
}

// New creates a Loader.
func New() *Loader {
	return &Loader{hcl: hcl.NewLoader()}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (config.Node, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return config.Node{}, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if !info.IsDir() {
		return l.loadFile(ctx, path, map[string]bool{})
	}

	files, err := fsutil.FindFilesByExtension(path, Extensions...)
	if err != nil {
		return config.Node{}, err
	}
	if len(files) == 0 {
		logger.Warn("No configuration files found in directory.", "path", path)
		return config.EmptyNode(), nil
	}
	logger.Debug("Discovered configuration files.", "count", len(files))

	merged := config.EmptyNode()
	for _, file := range files {
		n, err := l.loadFile(ctx, file, map[string]bool{})
		if err != nil {
			return config.Node{}, err
		}
		merged = config.Merge(merged, n)
	}
	return merged, nil
}

// loadFile decodes one file and layers it over its includes. seen holds
// the include chain and guards against cycles.
func (l *Loader) loadFile(ctx context.Context, path string, seen map[string]bool) (config.Node, error) {
	logger := ctxlog.FromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return config.Node{}, err
	}
	if seen[abs] {
		return config.Node{}, fmt.Errorf("include cycle detected at %s", path)
	}
	seen[abs] = true
	defer delete(seen, abs)

	n, err := l.decode(ctx, path)
	if err != nil {
		return config.Node{}, err
	}

	includes, ok := n.Lookup(includesKey)
	if !ok {
		return n, nil
	}

	base := config.EmptyNode()
	for _, item := range includes.Items() {
		rel, err := item.AsString()
		if err != nil {
			return config.Node{}, fmt.Errorf("%s: invalid include entry: %w", path, err)
		}
		incPath := rel
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(filepath.Dir(path), rel)
		}
		logger.Debug("Loading included configuration.", "from", path, "include", incPath)
		inc, err := l.loadFile(ctx, incPath, seen)
		if err != nil {
			return config.Node{}, fmt.Errorf("%s: include %s: %w", path, rel, err)
		}
		base = config.Merge(base, inc)
	}
	return config.Merge(base, n.Without(includesKey)), nil
}

func (l *Loader) decode(ctx context.Context, path string) (config.Node, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".hcl" {
		v, err := l.hcl.LoadFile(ctx, path)
		if err != nil {
			return config.Node{}, err
		}
		return config.NewNode(v), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config.Node{}, err
	}

	switch ext {
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return config.Node{}, fmt.Errorf("failed to parse YAML file %s: %w", path, err)
		}
		return config.FromGo(raw)
	case ".toml":
		var raw map[string]any
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return config.Node{}, fmt.Errorf("failed to parse TOML file %s: %w", path, err)
		}
		return config.FromGo(raw)
	case ".json":
		n, err := config.FromJSON(data)
		if err != nil {
			return config.Node{}, fmt.Errorf("failed to parse JSON file %s: %w", path, err)
		}
		return n, nil
	}
	return config.Node{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}
