package config

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Node is a read-only view over one position in the configuration tree.
// The zero Node is a null node.
type Node struct {
	v cty.Value
}

// NewNode wraps a cty value.
func NewNode(v cty.Value) Node {
	return Node{v: v}
}

// EmptyNode returns an empty object node.
func EmptyNode() Node {
	return Node{v: cty.EmptyObjectVal}
}

// Value returns the underlying cty value.
func (n Node) Value() cty.Value {
	if n.v.IsNull() {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return n.v
}

// IsNull reports whether the node holds no value.
func (n Node) IsNull() bool {
	return n.v.IsNull()
}

// IsObject reports whether the node is a mapping.
func (n Node) IsObject() bool {
	return isObjectLike(n.v)
}

// Has reports whether key is a direct child of the node.
func (n Node) Has(key string) bool {
	_, ok := child(n.v, key)
	return ok
}

// Lookup resolves a dotted path such as "training_parameters.trainer".
func (n Node) Lookup(path string) (Node, bool) {
	cur := n.v
	for _, seg := range splitPath(path) {
		next, ok := child(cur, seg)
		if !ok {
			return Node{}, false
		}
		cur = next
	}
	return Node{v: cur}, true
}

// Get is Lookup without the presence flag. Missing paths yield a null node.
func (n Node) Get(path string) Node {
	got, _ := n.Lookup(path)
	return got
}

// Keys returns the sorted child keys of an object node.
func (n Node) Keys() []string {
	if !isObjectLike(n.v) {
		return nil
	}
	m := n.v.AsValueMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of children of an object or list node.
func (n Node) Len() int {
	if n.v.IsNull() || !n.v.IsKnown() {
		return 0
	}
	ty := n.v.Type()
	if ty.IsObjectType() || ty.IsMapType() || ty.IsListType() || ty.IsTupleType() || ty.IsSetType() {
		return n.v.LengthInt()
	}
	return 0
}

// Items returns the elements of a list node.
func (n Node) Items() []Node {
	if !isListLike(n.v) {
		return nil
	}
	out := make([]Node, 0, n.v.LengthInt())
	for it := n.v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		out = append(out, Node{v: ev})
	}
	return out
}

// AsString converts a scalar node to a string.
func (n Node) AsString() (string, error) {
	if n.v.IsNull() {
		return "", fmt.Errorf("value is null")
	}
	sv, err := convert.Convert(n.v, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot use %s as string: %w", n.v.Type().FriendlyName(), err)
	}
	return sv.AsString(), nil
}

// AsFloat converts a scalar node to a float64.
func (n Node) AsFloat() (float64, error) {
	bf, err := n.number()
	if err != nil {
		return 0, err
	}
	f, _ := bf.Float64()
	return f, nil
}

// AsInt converts a scalar node to an int. Fractional numbers are rejected.
func (n Node) AsInt() (int, error) {
	bf, err := n.number()
	if err != nil {
		return 0, err
	}
	i, acc := bf.Int64()
	if acc != big.Exact {
		return 0, fmt.Errorf("%s is not an integer", bf.Text('g', -1))
	}
	return int(i), nil
}

// AsBool converts a scalar node to a bool.
func (n Node) AsBool() (bool, error) {
	if n.v.IsNull() {
		return false, fmt.Errorf("value is null")
	}
	bv, err := convert.Convert(n.v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("cannot use %s as bool: %w", n.v.Type().FriendlyName(), err)
	}
	return bv.True(), nil
}

// String returns the string at path, or def when absent or null.
func (n Node) String(path, def string) string {
	got, ok := n.Lookup(path)
	if !ok || got.IsNull() {
		return def
	}
	s, err := got.AsString()
	if err != nil {
		return def
	}
	return s
}

// Interface converts the node into plain Go values: map[string]any, []any,
// string, bool, int or float64.
func (n Node) Interface() any {
	return toGo(n.v)
}

// GoString renders the node for logging.
func (n Node) GoString() string {
	return fmt.Sprintf("%#v", n.Interface())
}

func (n Node) number() (*big.Float, error) {
	if n.v.IsNull() {
		return nil, fmt.Errorf("value is null")
	}
	nv, err := convert.Convert(n.v, cty.Number)
	if err != nil {
		return nil, fmt.Errorf("cannot use %s as number: %w", n.v.Type().FriendlyName(), err)
	}
	return nv.AsBigFloat(), nil
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func isObjectLike(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	return ty.IsObjectType() || ty.IsMapType()
}

func isListLike(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	return ty.IsListType() || ty.IsTupleType() || ty.IsSetType()
}

func child(v cty.Value, key string) (cty.Value, bool) {
	if !isObjectLike(v) {
		return cty.NilVal, false
	}
	got, ok := v.AsValueMap()[key]
	return got, ok
}

func objectVal(m map[string]cty.Value) cty.Value {
	if len(m) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(m)
}

// mergeValues deep-merges over onto base. Mappings merge key by key, every
// other kind of value in over replaces the one in base.
func mergeValues(base, over cty.Value) cty.Value {
	if !isObjectLike(base) || !isObjectLike(over) {
		return over
	}
	out := make(map[string]cty.Value)
	for k, bv := range base.AsValueMap() {
		out[k] = bv
	}
	for k, ov := range over.AsValueMap() {
		if bv, ok := out[k]; ok {
			out[k] = mergeValues(bv, ov)
			continue
		}
		out[k] = ov
	}
	return objectVal(out)
}

// setValue returns a copy of v with path replaced by val, creating
// intermediate mappings as needed.
func setValue(v cty.Value, path []string, val cty.Value) cty.Value {
	if len(path) == 0 {
		return val
	}
	out := make(map[string]cty.Value)
	if isObjectLike(v) {
		for k, cv := range v.AsValueMap() {
			out[k] = cv
		}
	}
	next, ok := out[path[0]]
	if !ok {
		next = cty.NullVal(cty.DynamicPseudoType)
	}
	out[path[0]] = setValue(next, path[1:], val)
	return objectVal(out)
}

// withoutKey returns a copy of an object value with key removed.
func withoutKey(v cty.Value, key string) cty.Value {
	if !isObjectLike(v) {
		return v
	}
	out := make(map[string]cty.Value)
	for k, cv := range v.AsValueMap() {
		if k != key {
			out[k] = cv
		}
	}
	return objectVal(out)
}

// Merge returns base with over deep-merged on top of it.
func Merge(base, over Node) Node {
	if base.IsNull() {
		return over
	}
	if over.IsNull() {
		return base
	}
	return Node{v: mergeValues(base.v, over.v)}
}

// Without returns a copy of the node with the direct child key removed.
func (n Node) Without(key string) Node {
	return Node{v: withoutKey(n.v, key)}
}
