// Package compat decides whether a print, filament or SLA preset can be used
// together with a given printer and print preset.
package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/piwi3910/presettab/internal/model"
	govaluate "gopkg.in/Knetic/govaluate.v3"
)

var (
	regexLiteral   = regexp.MustCompile(`(=~|!~)\s*/((?:\\.|[^/\\])*)/`)
	doubleQuoted   = regexp.MustCompile(`"((?:\\.|[^"\\])*)"`)
	wordAnd        = regexp.MustCompile(`\band\b`)
	wordOr         = regexp.MustCompile(`\bor\b`)
	wordNot        = regexp.MustCompile(`\bnot\b`)
	indexedOption  = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\[(\d+)\]`)
	notEqualLegacy = regexp.MustCompile(`<>`)
)

// Translate rewrites a compatibility condition into govaluate syntax:
// and/or/not become &&/||/!, "s" becomes 's', /re/ after a match operator
// becomes a quoted pattern, and key[i] becomes the parameter [key#i].
func Translate(cond string) string {
	cond = regexLiteral.ReplaceAllStringFunc(cond, func(m string) string {
		sub := regexLiteral.FindStringSubmatch(m)
		pattern := strings.ReplaceAll(sub[2], `\/`, `/`)
		return sub[1] + " " + quote(pattern)
	})
	cond = doubleQuoted.ReplaceAllStringFunc(cond, func(m string) string {
		inner := doubleQuoted.FindStringSubmatch(m)[1]
		return quote(strings.ReplaceAll(inner, `\"`, `"`))
	})

	// Only rewrite outside single-quoted literals.
	parts := splitLiterals(cond)
	for i := 0; i < len(parts); i += 2 {
		s := parts[i]
		s = wordAnd.ReplaceAllString(s, "&&")
		s = wordOr.ReplaceAllString(s, "||")
		s = wordNot.ReplaceAllString(s, "!")
		s = notEqualLegacy.ReplaceAllString(s, "!=")
		s = indexedOption.ReplaceAllString(s, "[$1#$2]")
		parts[i] = s
	}
	return strings.Join(parts, "")
}

// quote produces a govaluate string literal. The lexer drops one level of
// backslashes, so they are doubled to reach the regexp engine intact.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// splitLiterals splits s into alternating code and single-quoted literal
// parts. Literals keep their quotes; even indices are code.
func splitLiterals(s string) []string {
	var parts []string
	start := 0
	inLiteral := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && inLiteral:
			i++
		case s[i] == '\'' && !inLiteral:
			parts = append(parts, s[start:i])
			start = i
			inLiteral = true
		case s[i] == '\'' && inLiteral:
			parts = append(parts, s[start:i+1])
			start = i + 1
			inLiteral = false
		}
	}
	return append(parts, s[start:])
}

// Parameters exposes a layer to the evaluator. Vectors are available both
// as key (first element) and key#i.
func Parameters(l *model.Layer) map[string]any {
	if l == nil {
		return map[string]any{}
	}
	params := make(map[string]any, l.Len())
	for _, key := range l.Keys() {
		v, err := l.Get(key)
		if err != nil {
			continue
		}
		if !v.IsVector() {
			if p, ok := param(v, 0); ok {
				params[key] = p
			}
			continue
		}
		for i := 0; i < v.Len(); i++ {
			p, _ := param(v, i)
			if i == 0 {
				params[key] = p
			}
			params[model.IndexedKey(key, i)] = p
		}
	}
	return params
}

func param(v model.Value, i int) (any, bool) {
	if i >= v.Len() {
		return nil, false
	}
	switch v.Kind.Elem() {
	case model.KindInt:
		return float64(v.Ints[i]), true
	case model.KindFloat:
		return v.Floats[i], true
	case model.KindBool:
		return v.Bools[i], true
	case model.KindString, model.KindEnum:
		return v.Strings[i], true
	case model.KindPoints:
		return v.Points[i].String(), true
	}
	return nil, false
}

// Evaluate evaluates a condition against the options of cfg.
func Evaluate(cond string, cfg *model.Layer) (bool, error) {
	expr, err := govaluate.NewEvaluableExpression(Translate(cond))
	if err != nil {
		return false, fmt.Errorf("failed to parse condition %q: %w", cond, err)
	}
	result, err := expr.Evaluate(Parameters(cfg))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate condition %q: %w", cond, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q evaluated to %T, expected bool", cond, result)
	}
	return b, nil
}
