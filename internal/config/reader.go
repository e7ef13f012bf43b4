package config

import (
	"fmt"
	"strings"
)

// Reader decodes keyword parameters out of a params node. It remembers the
// first decoding error and which keys were consumed, so a constructor can
// read everything it supports and then check Err once.
type Reader struct {
	node Node
	used map[string]bool
	err  error
}

// NewReader creates a Reader over a params node. A null node reads as empty.
func NewReader(n Node) *Reader {
	return &Reader{node: n, used: make(map[string]bool)}
}

func (r *Reader) lookup(key string) (Node, bool) {
	r.used[key] = true
	got, ok := r.node.Lookup(key)
	if !ok || got.IsNull() {
		return Node{}, false
	}
	return got, true
}

func (r *Reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("parameter %q: %w", key, err)
	}
}

// Float reads a number.
func (r *Reader) Float(key string, def float64) float64 {
	n, ok := r.lookup(key)
	if !ok {
		return def
	}
	f, err := n.AsFloat()
	if err != nil {
		r.fail(key, err)
		return def
	}
	return f
}

// Int reads an integer.
func (r *Reader) Int(key string, def int) int {
	n, ok := r.lookup(key)
	if !ok {
		return def
	}
	i, err := n.AsInt()
	if err != nil {
		r.fail(key, err)
		return def
	}
	return i
}

// Bool reads a bool.
func (r *Reader) Bool(key string, def bool) bool {
	n, ok := r.lookup(key)
	if !ok {
		return def
	}
	b, err := n.AsBool()
	if err != nil {
		r.fail(key, err)
		return def
	}
	return b
}

// String reads a string.
func (r *Reader) String(key, def string) string {
	n, ok := r.lookup(key)
	if !ok {
		return def
	}
	s, err := n.AsString()
	if err != nil {
		r.fail(key, err)
		return def
	}
	return s
}

// Floats reads a list of numbers. A scalar is read as a one-element list.
func (r *Reader) Floats(key string, def []float64) []float64 {
	n, ok := r.lookup(key)
	if !ok {
		return def
	}
	items := n.Items()
	if items == nil {
		items = []Node{n}
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, err := item.AsFloat()
		if err != nil {
			r.fail(key, err)
			return def
		}
		out = append(out, f)
	}
	return out
}

// Ints reads a list of integers. A scalar is read as a one-element list.
func (r *Reader) Ints(key string, def []int) []int {
	n, ok := r.lookup(key)
	if !ok {
		return def
	}
	items := n.Items()
	if items == nil {
		items = []Node{n}
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		i, err := item.AsInt()
		if err != nil {
			r.fail(key, err)
			return def
		}
		out = append(out, i)
	}
	return out
}

// DecodeErr returns the first decoding error, ignoring keys that were not
// read.
func (r *Reader) DecodeErr() error {
	return r.err
}

// Err returns the first decoding error, or an error naming every key of the
// params node that was never read.
func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}
	var unexpected []string
	for _, k := range r.node.Keys() {
		if !r.used[k] {
			unexpected = append(unexpected, k)
		}
	}
	if len(unexpected) > 0 {
		return fmt.Errorf("unexpected parameter(s): %s", strings.Join(unexpected, ", "))
	}
	return nil
}
