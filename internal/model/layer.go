package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrKeyNotFound is returned when a key is not present in a layer or schema.
var ErrKeyNotFound = errors.New("key not found")

// Keys compared as a whole even in deep (per-element) mode.
var wholeCompareKeys = map[string]bool{
	"bed_shape":           true,
	"compatible_printers": true,
	"compatible_prints":   true,
}

// IsWholeCompare reports whether key is never compared element by element.
func IsWholeCompare(key string) bool {
	return wholeCompareKeys[key]
}

// IndexedKey returns the "key#i" form used for vector elements.
func IndexedKey(key string, i int) string {
	return key + "#" + strconv.Itoa(i)
}

// SplitIndexedKey splits "key#i" into its option key and index.
func SplitIndexedKey(s string) (key string, index int, ok bool) {
	key, idx, found := strings.Cut(s, "#")
	if !found {
		return s, 0, false
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return s, 0, false
	}
	return key, n, true
}

// Layer is an ordered mapping of option keys to values.
type Layer struct {
	keys   []string
	values map[string]Value
}

// NewLayer returns an empty layer.
func NewLayer() *Layer {
	return &Layer{values: make(map[string]Value)}
}

// Set stores v under key, appending the key if it is new.
func (l *Layer) Set(key string, v Value) {
	if _, ok := l.values[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.values[key] = v
}

// Get returns the value stored under key.
func (l *Layer) Get(key string) (Value, error) {
	v, ok := l.values[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return v, nil
}

// Has reports whether key is present.
func (l *Layer) Has(key string) bool {
	_, ok := l.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (l *Layer) Keys() []string {
	return append([]string(nil), l.keys...)
}

func (l *Layer) Len() int {
	return len(l.keys)
}

// String returns the value under key formatted, or "" when absent.
func (l *Layer) String(key string) string {
	v, ok := l.values[key]
	if !ok {
		return ""
	}
	return v.String()
}

// Strings returns the string elements under key, or nil when absent.
func (l *Layer) Strings(key string) []string {
	v, ok := l.values[key]
	if !ok {
		return nil
	}
	return append([]string(nil), v.Strings...)
}

// Clone returns a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	out := &Layer{
		keys:   append([]string(nil), l.keys...),
		values: make(map[string]Value, len(l.values)),
	}
	for k, v := range l.values {
		out.values[k] = v.Clone()
	}
	return out
}

// Diff returns the keys whose values differ between l and other, in l's key
// order followed by keys only present in other. With deep set, vector values
// are compared element by element and reported as "key#i"; indices present on
// only one side are always reported.
func (l *Layer) Diff(other *Layer, deep bool) []string {
	var diff []string
	for _, key := range l.keys {
		a := l.values[key]
		b, ok := other.values[key]
		if !ok {
			diff = append(diff, key)
			continue
		}
		diff = appendValueDiff(diff, key, a, b, deep)
	}
	for _, key := range other.keys {
		if _, ok := l.values[key]; !ok {
			diff = append(diff, key)
		}
	}
	return diff
}

func appendValueDiff(diff []string, key string, a, b Value, deep bool) []string {
	if !deep || !a.IsVector() || a.Kind != b.Kind || IsWholeCompare(key) {
		if !a.Equal(b) {
			diff = append(diff, key)
		}
		return diff
	}
	n := max(a.Len(), b.Len())
	for i := 0; i < n; i++ {
		if !a.ElemEqual(b, i) {
			diff = append(diff, IndexedKey(key, i))
		}
	}
	return diff
}

// Equal reports whether both layers hold the same keys and values.
func (l *Layer) Equal(other *Layer) bool {
	return len(l.Diff(other, false)) == 0
}
