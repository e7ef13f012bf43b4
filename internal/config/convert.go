package config

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// ErrNaN is returned for NaN numbers, which the configuration tree cannot hold.
var ErrNaN = errors.New("NaN is not a valid configuration value")

// FromGo builds a Node from plain Go data as produced by the YAML and TOML
// decoders: maps with string keys, slices, strings, numbers, bools and nil.
func FromGo(x any) (Node, error) {
	v, err := toCty(x)
	if err != nil {
		return Node{}, err
	}
	return Node{v: v}, nil
}

func toCty(x any) (cty.Value, error) {
	switch t := x.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return t, nil
	case Node:
		return t.Value(), nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int8:
		return cty.NumberIntVal(int64(t)), nil
	case int16:
		return cty.NumberIntVal(int64(t)), nil
	case int32:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case uint:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint8:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint16:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(t)), nil
	case uint64:
		return cty.NumberUIntVal(t), nil
	case float32:
		return floatToCty(float64(t))
	case float64:
		return floatToCty(t)
	case time.Time:
		return cty.StringVal(t.Format(time.RFC3339)), nil
	case map[string]any:
		return mapToCty(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[fmt.Sprint(k)] = v
		}
		return mapToCty(m)
	case []any:
		return sliceToCty(t)
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return sliceToCty(items)
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return mapToCty(m)
	case reflect.Pointer:
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return toCty(rv.Elem().Interface())
	}
	return cty.NilVal, fmt.Errorf("unsupported configuration value of type %T", x)
}

func floatToCty(f float64) (cty.Value, error) {
	if math.IsNaN(f) {
		return cty.NilVal, ErrNaN
	}
	return cty.NumberFloatVal(f), nil
}

func mapToCty(m map[string]any) (cty.Value, error) {
	out := make(map[string]cty.Value, len(m))
	for k, v := range m {
		cv, err := toCty(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = cv
	}
	return objectVal(out), nil
}

func sliceToCty(items []any) (cty.Value, error) {
	if len(items) == 0 {
		return cty.EmptyTupleVal, nil
	}
	out := make([]cty.Value, len(items))
	for i, v := range items {
		cv, err := toCty(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = cv
	}
	return cty.TupleVal(out), nil
}

func toGo(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i)
			}
		}
		f, _ := bf.Float64()
		return f
	case isObjectLike(v):
		m := v.AsValueMap()
		out := make(map[string]any, len(m))
		for k, cv := range m {
			out[k] = toGo(cv)
		}
		return out
	case isListLike(v):
		out := []any{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, toGo(ev))
		}
		return out
	}
	return nil
}

// sortedKeys is used where deterministic iteration over Go maps matters.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
