package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// bodyToValue evaluates every attribute of a body and folds its blocks into
// nested mappings.
func bodyToValue(body *hclsyntax.Body, evalCtx *hcl.EvalContext) (cty.Value, error) {
	out := make(map[string]cty.Value)

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return cty.NilVal, diags
		}
		out[name] = val
	}

	for _, block := range body.Blocks {
		inner, err := bodyToValue(block.Body, evalCtx)
		if err != nil {
			return cty.NilVal, fmt.Errorf("in block %q: %w", block.Type, err)
		}
		// Wrap the block body in one mapping per label, innermost first.
		for i := len(block.Labels) - 1; i >= 0; i-- {
			inner = cty.ObjectVal(map[string]cty.Value{block.Labels[i]: inner})
		}
		if existing, ok := out[block.Type]; ok {
			if _, isAttr := body.Attributes[block.Type]; isAttr {
				return cty.NilVal, fmt.Errorf("%q is defined both as an attribute and as a block", block.Type)
			}
			inner = mergeObjects(existing, inner)
		}
		out[block.Type] = inner
	}

	if len(out) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(out), nil
}

// mergeObjects deep-merges two object values; non-objects in over win.
func mergeObjects(base, over cty.Value) cty.Value {
	if !isObject(base) || !isObject(over) {
		return over
	}
	out := make(map[string]cty.Value)
	for k, v := range base.AsValueMap() {
		out[k] = v
	}
	for k, v := range over.AsValueMap() {
		if bv, ok := out[k]; ok {
			out[k] = mergeObjects(bv, v)
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(out)
}

func isObject(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() {
		return false
	}
	return v.Type().IsObjectType() || v.Type().IsMapType()
}
