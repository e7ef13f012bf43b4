package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/hcl"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var (
	// ErrFrozen is returned by every mutating method once Freeze was called.
	ErrFrozen = errors.New("configuration is frozen")
	// ErrUnknownOption is returned when a command-line option names a key
	// that is not present in the configuration.
	ErrUnknownOption = errors.New("unknown configuration option")
)

// Configuration owns the configuration tree and the layering that builds it.
type Configuration struct {
	config Node
	frozen bool
	args   *Args
}

// New loads path with loader and layers it over the built-in defaults.
func New(ctx context.Context, loader Loader, path string) (*Configuration, error) {
	logger := ctxlog.FromContext(ctx)

	defaults, err := Defaults()
	if err != nil {
		return nil, err
	}

	loaded, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	logger.Debug("Configuration file loaded.", "path", path, "keys", loaded.Keys())

	return &Configuration{config: Merge(defaults, loaded)}, nil
}

// FromNode wraps an already assembled tree without applying defaults.
func FromNode(n Node) *Configuration {
	if n.IsNull() {
		n = EmptyNode()
	}
	return &Configuration{config: n}
}

// Config returns the current tree.
func (c *Configuration) Config() Node {
	return c.config
}

// Args returns the runtime arguments attached to the configuration.
func (c *Configuration) Args() *Args {
	return c.args
}

// SetArgs attaches runtime arguments. This is allowed after Freeze since
// args are not part of the persisted tree.
func (c *Configuration) SetArgs(args *Args) {
	c.args = args
}

// Freeze makes the tree read-only.
func (c *Configuration) Freeze() {
	c.frozen = true
}

// Frozen reports whether Freeze was called.
func (c *Configuration) Frozen() bool {
	return c.frozen
}

// Set replaces the value at a dotted path, creating intermediate mappings.
func (c *Configuration) Set(path string, value any) error {
	if c.frozen {
		return fmt.Errorf("cannot set %q: %w", path, ErrFrozen)
	}
	v, err := toCty(value)
	if err != nil {
		return fmt.Errorf("cannot set %q: %w", path, err)
	}
	c.config = Node{v: setValue(c.config.v, splitPath(path), v)}
	return nil
}

// Merge deep-merges n over the current tree.
func (c *Configuration) Merge(n Node) error {
	if c.frozen {
		return fmt.Errorf("cannot merge: %w", ErrFrozen)
	}
	c.config = Merge(c.config, n)
	return nil
}

// OverrideWithCmdConfig merges an override string over the tree. JSON
// objects and HCL attribute syntax are both accepted; an empty string is a
// no-op.
func (c *Configuration) OverrideWithCmdConfig(ctx context.Context, override string) error {
	override = strings.TrimSpace(override)
	if override == "" {
		return nil
	}
	if c.frozen {
		return fmt.Errorf("cannot apply config override: %w", ErrFrozen)
	}
	logger := ctxlog.FromContext(ctx)

	var (
		val cty.Value
		err error
	)
	if strings.HasPrefix(override, "{") {
		val, err = parseJSON([]byte(override))
	} else {
		val, err = hcl.ParseAttributes(override)
	}
	if err != nil {
		return fmt.Errorf("invalid config override: %w", err)
	}
	if !isObjectLike(val) {
		return fmt.Errorf("invalid config override: expected an object, got %s", val.Type().FriendlyName())
	}

	c.config = Node{v: mergeValues(c.config.v, val)}
	logger.Debug("Applied config override.", "keys", Node{v: val}.Keys())
	return nil
}

// OverrideWithCmdOpts applies individual options. Each element is either
// "dotted.key=value" or a key followed by its value as the next element.
// Every segment of the key must already exist and the target must be a
// leaf, so typos fail loudly instead of adding dead keys.
func (c *Configuration) OverrideWithCmdOpts(ctx context.Context, opts []string) error {
	if len(opts) == 0 {
		return nil
	}
	if c.frozen {
		return fmt.Errorf("cannot apply options: %w", ErrFrozen)
	}
	logger := ctxlog.FromContext(ctx)

	pairs, err := pairOpts(opts)
	if err != nil {
		return err
	}

	for _, p := range pairs {
		if err := c.checkOptionPath(p.key); err != nil {
			return err
		}
		val := hcl.ParseValue(p.value)
		logger.Info("Overriding option.", "option", p.key, "value", p.value)
		c.config = Node{v: setValue(c.config.v, splitPath(p.key), val)}
	}
	return nil
}

// UpdateWithArgs replaces every leaf, at any depth, whose key equals the
// name of an explicitly set argument field.
func (c *Configuration) UpdateWithArgs(ctx context.Context, args *Args) error {
	if args == nil || len(args.Fields) == 0 {
		return nil
	}
	if c.frozen {
		return fmt.Errorf("cannot update with args: %w", ErrFrozen)
	}
	logger := ctxlog.FromContext(ctx)

	fields := make(map[string]cty.Value, len(args.Fields))
	for _, name := range sortedKeys(args.Fields) {
		raw := args.Fields[name]
		if raw == nil {
			continue
		}
		v, err := toCty(raw)
		if err != nil {
			return fmt.Errorf("argument %q: %w", name, err)
		}
		fields[name] = v
	}

	var updated []string
	c.config = Node{v: updateLeaves(c.config.v, "", fields, &updated)}
	if len(updated) > 0 {
		logger.Debug("Configuration updated from arguments.", "keys", updated)
	}
	return nil
}

func updateLeaves(v cty.Value, prefix string, fields map[string]cty.Value, updated *[]string) cty.Value {
	if !isObjectLike(v) {
		return v
	}
	out := make(map[string]cty.Value)
	for k, cv := range v.AsValueMap() {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if isObjectLike(cv) {
			out[k] = updateLeaves(cv, path, fields, updated)
			continue
		}
		if fv, ok := fields[k]; ok {
			out[k] = fv
			*updated = append(*updated, path)
			continue
		}
		out[k] = cv
	}
	return objectVal(out)
}

type optPair struct {
	key   string
	value string
}

func pairOpts(opts []string) ([]optPair, error) {
	var pairs []optPair
	for i := 0; i < len(opts); i++ {
		opt := opts[i]
		if key, value, ok := strings.Cut(opt, "="); ok && key != "" && !strings.ContainsAny(key, " \t") {
			pairs = append(pairs, optPair{key: key, value: value})
			continue
		}
		if i+1 >= len(opts) {
			return nil, fmt.Errorf("option %q has no value", opt)
		}
		pairs = append(pairs, optPair{key: opt, value: opts[i+1]})
		i++
	}
	return pairs, nil
}

func (c *Configuration) checkOptionPath(key string) error {
	segs := splitPath(key)
	cur := c.config.v
	for idx, seg := range segs {
		next, ok := child(cur, seg)
		if !ok {
			return fmt.Errorf("%w: %s is missing from configuration at field %s", ErrUnknownOption, key, seg)
		}
		if isObjectLike(next) && idx == len(segs)-1 {
			return fmt.Errorf("%w: %s is a mapping, only leaf values can be overridden", ErrUnknownOption, key)
		}
		if !isObjectLike(next) && idx < len(segs)-1 {
			return fmt.Errorf("%w: %s is not present after field %s", ErrUnknownOption, key, seg)
		}
		cur = next
	}
	return nil
}

func parseJSON(data []byte) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(data)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(data, ty)
}

// FromJSON builds a Node from a JSON document.
func FromJSON(data []byte) (Node, error) {
	v, err := parseJSON(data)
	if err != nil {
		return Node{}, err
	}
	return Node{v: v}, nil
}
