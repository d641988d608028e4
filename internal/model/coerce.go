package model

import (
	"fmt"
	"math"
)

// Coerce converts a raw decoded value (as produced by the TOML, YAML or JSON
// decoders) into a Value of the given kind. Strings are accepted for every
// kind and go through Parse.
func Coerce(kind Kind, raw any) (Value, error) {
	if s, ok := raw.(string); ok && kind != KindStrings && kind != KindString {
		return Parse(kind, s)
	}
	if !kind.IsVector() {
		return coerceScalar(kind, raw)
	}

	items, ok := toSlice(raw)
	if !ok {
		// A bare scalar for a vector option is a one-element vector.
		items = []any{raw}
	}
	out := Value{Kind: kind}
	for i, item := range items {
		if kind == KindPoints {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("element %d: expected point string, got %T", i, item)
			}
			p, err := ParsePoint(s)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Points = append(out.Points, p)
			continue
		}
		e, err := coerceScalar(kind.Elem(), item)
		if err != nil {
			return Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.Ints = append(out.Ints, e.Ints...)
		out.Bools = append(out.Bools, e.Bools...)
		out.Floats = append(out.Floats, e.Floats...)
		out.Strings = append(out.Strings, e.Strings...)
	}
	switch kind {
	case KindInts:
		out.Ints = orEmpty(out.Ints)
	case KindBools:
		out.Bools = orEmpty(out.Bools)
	case KindFloats:
		out.Floats = orEmpty(out.Floats)
	case KindStrings:
		out.Strings = orEmpty(out.Strings)
	case KindPoints:
		out.Points = orEmpty(out.Points)
	}
	return out, nil
}

func toSlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, true
	case []bool:
		out := make([]any, len(v))
		for i, b := range v {
			out[i] = b
		}
		return out, true
	}
	return nil, false
}

func coerceScalar(kind Kind, raw any) (Value, error) {
	if s, ok := raw.(string); ok {
		if kind == KindString {
			return Str(s), nil
		}
		return Parse(kind, s)
	}
	switch kind {
	case KindInt:
		switch v := raw.(type) {
		case int:
			return Int(v), nil
		case int64:
			return Value{Kind: KindInt, Ints: []int64{v}}, nil
		case uint64:
			if v > math.MaxInt64 {
				return Value{}, fmt.Errorf("int %d out of range", v)
			}
			return Value{Kind: KindInt, Ints: []int64{int64(v)}}, nil
		case float64:
			if v != math.Trunc(v) {
				return Value{}, fmt.Errorf("expected int, got %v", v)
			}
			if v < math.MinInt64 || v >= math.MaxInt64 {
				return Value{}, fmt.Errorf("int %v out of range", v)
			}
			return Value{Kind: KindInt, Ints: []int64{int64(v)}}, nil
		}
	case KindFloat:
		switch v := raw.(type) {
		case float64:
			return Float(v), nil
		case int:
			return Float(float64(v)), nil
		case int64:
			return Float(float64(v)), nil
		case uint64:
			return Float(float64(v)), nil
		}
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return Bool(v), nil
		case int:
			return Bool(v != 0), nil
		case int64:
			return Bool(v != 0), nil
		}
	}
	return Value{}, fmt.Errorf("expected %s, got %T", kind, raw)
}

// Raw converts v into plain Go values suitable for TOML encoding: scalars
// become int64, float64, bool or string; vectors become typed slices; points
// become "XxY" strings.
func Raw(v Value) any {
	switch v.Kind {
	case KindInt:
		return firstOr(v.Ints, 0)
	case KindBool:
		return firstOr(v.Bools, false)
	case KindFloat:
		return firstOr(v.Floats, 0)
	case KindString, KindEnum:
		return firstOr(v.Strings, "")
	case KindInts:
		return orEmpty(v.Ints)
	case KindBools:
		return orEmpty(v.Bools)
	case KindFloats:
		return orEmpty(v.Floats)
	case KindStrings:
		return orEmpty(v.Strings)
	case KindPoints:
		out := make([]string, len(v.Points))
		for i, p := range v.Points {
			out[i] = p.String()
		}
		return out
	}
	return nil
}

func firstOr[T any](s []T, def T) T {
	if len(s) == 0 {
		return def
	}
	return s[0]
}
