package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
)

// Kind identifies the representation stored in a Value.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindFloat
	KindString
	KindEnum
	KindInts
	KindBools
	KindFloats
	KindStrings
	KindPoints
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindInts:
		return "ints"
	case KindBools:
		return "bools"
	case KindFloats:
		return "floats"
	case KindStrings:
		return "strings"
	case KindPoints:
		return "points"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// IsVector reports whether values of this kind hold a variable number of elements.
func (k Kind) IsVector() bool {
	return k >= KindInts
}

// Elem returns the kind of a single element of a vector kind.
// Points have no scalar counterpart and stay KindPoints.
func (k Kind) Elem() Kind {
	switch k {
	case KindInts:
		return KindInt
	case KindBools:
		return KindBool
	case KindFloats:
		return KindFloat
	case KindStrings:
		return KindString
	default:
		return k
	}
}

// Value is a tagged configuration value. Scalars are stored as one-element
// slices so that comparison, cloning and formatting share one code path.
type Value struct {
	Kind    Kind      `json:"kind"`
	Ints    []int64   `json:"ints,omitempty"`
	Bools   []bool    `json:"bools,omitempty"`
	Floats  []float64 `json:"floats,omitempty"`
	Strings []string  `json:"strings,omitempty"`
	Points  []Point2D `json:"points,omitempty"`
}

func Int(v int) Value { return Value{Kind: KindInt, Ints: []int64{int64(v)}} }
func Bool(v bool) Value { return Value{Kind: KindBool, Bools: []bool{v}} }
func Float(v float64) Value { return Value{Kind: KindFloat, Floats: []float64{v}} }
func Str(v string) Value { return Value{Kind: KindString, Strings: []string{v}} }
func Enum(v string) Value { return Value{Kind: KindEnum, Strings: []string{v}} }
func Bools(vs ...bool) Value { return Value{Kind: KindBools, Bools: append([]bool{}, vs...)} }
func Floats(vs ...float64) Value {
	return Value{Kind: KindFloats, Floats: append([]float64{}, vs...)}
}
func Strings(vs ...string) Value {
	return Value{Kind: KindStrings, Strings: append([]string{}, vs...)}
}
func Points(ps ...Point2D) Value {
	return Value{Kind: KindPoints, Points: append([]Point2D{}, ps...)}
}

func Ints(vs ...int) Value {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = int64(v)
	}
	return Value{Kind: KindInts, Ints: out}
}

// IsVector reports whether v holds a variable number of elements.
func (v Value) IsVector() bool {
	return v.Kind.IsVector()
}

// Len returns the number of stored elements.
func (v Value) Len() int {
	switch v.Kind {
	case KindInt, KindInts:
		return len(v.Ints)
	case KindBool, KindBools:
		return len(v.Bools)
	case KindFloat, KindFloats:
		return len(v.Floats)
	case KindString, KindEnum, KindStrings:
		return len(v.Strings)
	case KindPoints:
		return len(v.Points)
	}
	return 0
}

// Equal compares kind and every stored element exactly.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt, KindInts:
		return slices.Equal(v.Ints, o.Ints)
	case KindBool, KindBools:
		return slices.Equal(v.Bools, o.Bools)
	case KindFloat, KindFloats:
		return slices.Equal(v.Floats, o.Floats)
	case KindString, KindEnum, KindStrings:
		return slices.Equal(v.Strings, o.Strings)
	case KindPoints:
		return slices.Equal(v.Points, o.Points)
	}
	return false
}

// ElemEqual compares element i of both values. An index missing from either
// side never compares equal.
func (v Value) ElemEqual(o Value, i int) bool {
	if v.Kind != o.Kind || i < 0 || i >= v.Len() || i >= o.Len() {
		return false
	}
	switch v.Kind {
	case KindInt, KindInts:
		return v.Ints[i] == o.Ints[i]
	case KindBool, KindBools:
		return v.Bools[i] == o.Bools[i]
	case KindFloat, KindFloats:
		return v.Floats[i] == o.Floats[i]
	case KindString, KindEnum, KindStrings:
		return v.Strings[i] == o.Strings[i]
	case KindPoints:
		return v.Points[i] == o.Points[i]
	}
	return false
}

// Elem returns element i as a value of the element kind.
func (v Value) Elem(i int) (Value, error) {
	if i < 0 || i >= v.Len() {
		return Value{}, fmt.Errorf("index %d out of range for %s value of length %d", i, v.Kind, v.Len())
	}
	out := Value{Kind: v.Kind.Elem()}
	switch v.Kind {
	case KindInt, KindInts:
		out.Ints = []int64{v.Ints[i]}
	case KindBool, KindBools:
		out.Bools = []bool{v.Bools[i]}
	case KindFloat, KindFloats:
		out.Floats = []float64{v.Floats[i]}
	case KindString, KindEnum, KindStrings:
		out.Strings = []string{v.Strings[i]}
	case KindPoints:
		out.Points = []Point2D{v.Points[i]}
	}
	return out, nil
}

// WithElem returns a copy of v whose element i is replaced by the first
// element of e.
func (v Value) WithElem(i int, e Value) (Value, error) {
	if e.Kind != v.Kind.Elem() || e.Len() == 0 {
		return Value{}, fmt.Errorf("cannot store %s element into %s value", e.Kind, v.Kind)
	}
	if i < 0 || i >= v.Len() {
		return Value{}, fmt.Errorf("index %d out of range for %s value of length %d", i, v.Kind, v.Len())
	}
	out := v.Clone()
	switch v.Kind {
	case KindInt, KindInts:
		out.Ints[i] = e.Ints[0]
	case KindBool, KindBools:
		out.Bools[i] = e.Bools[0]
	case KindFloat, KindFloats:
		out.Floats[i] = e.Floats[0]
	case KindString, KindEnum, KindStrings:
		out.Strings[i] = e.Strings[0]
	case KindPoints:
		out.Points[i] = e.Points[0]
	}
	return out, nil
}

// Resize returns a vector of length n. Added elements copy the last existing
// element, or the first element of fill when v is empty.
func (v Value) Resize(n int, fill Value) Value {
	if !v.IsVector() || n < 0 {
		return v.Clone()
	}
	out := v.Clone()
	switch v.Kind {
	case KindInts:
		out.Ints = resize(out.Ints, n, fill.Ints)
	case KindBools:
		out.Bools = resize(out.Bools, n, fill.Bools)
	case KindFloats:
		out.Floats = resize(out.Floats, n, fill.Floats)
	case KindStrings:
		out.Strings = resize(out.Strings, n, fill.Strings)
	case KindPoints:
		out.Points = resize(out.Points, n, fill.Points)
	}
	return out
}

func resize[T any](s []T, n int, fill []T) []T {
	if n <= len(s) {
		return s[:n]
	}
	var pad T
	switch {
	case len(s) > 0:
		pad = s[len(s)-1]
	case len(fill) > 0:
		pad = fill[0]
	}
	for len(s) < n {
		s = append(s, pad)
	}
	return s
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	var out Value
	if err := copier.CopyWithOption(&out, &v, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Sprintf("model: clone %s value: %v", v.Kind, err))
	}
	return out
}

// String formats v the way preset files and the CLI print it.
func (v Value) String() string {
	switch v.Kind {
	case KindInt, KindInts:
		parts := make([]string, len(v.Ints))
		for i, n := range v.Ints {
			parts[i] = strconv.FormatInt(n, 10)
		}
		return strings.Join(parts, ",")
	case KindBool, KindBools:
		parts := make([]string, len(v.Bools))
		for i, b := range v.Bools {
			parts[i] = "0"
			if b {
				parts[i] = "1"
			}
		}
		return strings.Join(parts, ",")
	case KindFloat, KindFloats:
		parts := make([]string, len(v.Floats))
		for i, f := range v.Floats {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, ",")
	case KindString, KindEnum:
		if len(v.Strings) == 0 {
			return ""
		}
		return v.Strings[0]
	case KindStrings:
		parts := make([]string, len(v.Strings))
		for i, s := range v.Strings {
			parts[i] = strconv.Quote(s)
		}
		return strings.Join(parts, ";")
	case KindPoints:
		parts := make([]string, len(v.Points))
		for i, p := range v.Points {
			parts[i] = p.String()
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// Parse reads the String form of a value of the given kind.
func Parse(kind Kind, s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch kind {
	case KindString:
		return Str(s), nil
	case KindEnum:
		return Enum(s), nil
	case KindStrings:
		if s == "" {
			return Strings(), nil
		}
		var out []string
		for _, part := range splitQuoted(s, ';') {
			part = strings.TrimSpace(part)
			if unq, err := strconv.Unquote(part); err == nil {
				part = unq
			}
			out = append(out, part)
		}
		return Strings(out...), nil
	case KindPoints:
		if s == "" {
			return Points(), nil
		}
		var pts []Point2D
		for _, part := range strings.Split(s, ",") {
			p, err := ParsePoint(part)
			if err != nil {
				return Value{}, err
			}
			pts = append(pts, p)
		}
		return Points(pts...), nil
	}

	var fields []string
	if s != "" {
		fields = strings.Split(s, ",")
	}
	if !kind.IsVector() && len(fields) != 1 {
		return Value{}, fmt.Errorf("expected a single %s, got %q", kind, s)
	}
	out := Value{Kind: kind}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		switch kind.Elem() {
		case KindInt:
			n, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return Value{}, fmt.Errorf("invalid int %q: %w", f, err)
			}
			out.Ints = append(out.Ints, n)
		case KindBool:
			b, err := parseBool(f)
			if err != nil {
				return Value{}, err
			}
			out.Bools = append(out.Bools, b)
		case KindFloat:
			x, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
			if err != nil {
				return Value{}, fmt.Errorf("invalid float %q: %w", f, err)
			}
			out.Floats = append(out.Floats, x)
		default:
			return Value{}, fmt.Errorf("unsupported kind %s", kind)
		}
	}
	if kind.IsVector() {
		switch kind {
		case KindInts:
			out.Ints = orEmpty(out.Ints)
		case KindBools:
			out.Bools = orEmpty(out.Bools)
		case KindFloats:
			out.Floats = orEmpty(out.Floats)
		}
	}
	return out, nil
}

// splitQuoted splits s at sep, ignoring separators inside double quotes.
func splitQuoted(s string, sep rune) []string {
	var (
		parts   []string
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == sep && !quoted:
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	return append(parts, cur.String())
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool %q", s)
}
