package hcl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader parses HCL configuration files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// LoadFile parses a single HCL file into an object value.
func (l *Loader) LoadFile(ctx context.Context, path string) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return cty.NilVal, fmt.Errorf("failed to decode HCL file %s: unexpected body type %T", path, file.Body)
	}

	val, err := bodyToValue(body, evalContext())
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to decode HCL file %s: %w", path, err)
	}
	logger.Debug("HCL loading complete.", "path", path, "top_level_keys", val.LengthInt())
	return val, nil
}

// ParseAttributes parses HCL attribute syntax, such as a config override
// passed on the command line, into an object value.
func ParseAttributes(src string) (cty.Value, error) {
	file, diags := hclsyntax.ParseConfig([]byte(src), "<config_override>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return cty.NilVal, fmt.Errorf("unexpected body type %T", file.Body)
	}
	return bodyToValue(body, evalContext())
}

// ParseValue decodes a single command-line option value. Anything that is a
// valid literal expression (numbers, bools, quoted strings, lists, objects)
// becomes that value; everything else is taken verbatim as a string.
func ParseValue(src string) cty.Value {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return cty.StringVal(src)
	}
	expr, diags := hclsyntax.ParseExpression([]byte(trimmed), "<opts>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.StringVal(src)
	}
	// A nil context rejects variable references, so bare words such as
	// `adam` stay strings instead of failing.
	val, diags := expr.Value(nil)
	if diags.HasErrors() || !val.IsWhollyKnown() {
		return cty.StringVal(src)
	}
	return val
}

// evalContext exposes the process environment as env.NAME.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if ok && name != "" {
			vars[name] = cty.StringVal(value)
		}
	}
	env := cty.MapValEmpty(cty.String)
	if len(vars) > 0 {
		env = cty.MapVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}
