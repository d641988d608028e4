package preset

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultName is the name of the built-in preset holding schema defaults.
	DefaultName = "- default -"
	// SuffixModified marks a preset with unsaved changes in selectors.
	SuffixModified = "(modified)"
)

const forbiddenNameChars = `<>[]:/\|?*"`

// NormalizeName returns the NFC form of a user supplied preset name with
// surrounding spaces and a trailing .ini or .toml extension removed, or
// ErrInvalidName.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(norm.NFC.String(name))
	for _, ext := range []string{".ini", ".toml"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			name = strings.TrimSpace(name[:len(name)-len(ext)])
		}
	}
	switch {
	case name == "":
		return "", fmt.Errorf("%w: name is empty", ErrInvalidName)
	case strings.ContainsAny(name, forbiddenNameChars):
		return "", fmt.Errorf("%w: %q contains one of %s", ErrInvalidName, name, forbiddenNameChars)
	case strings.Contains(name, SuffixModified):
		return "", fmt.Errorf("%w: %q contains the %q suffix", ErrInvalidName, name, SuffixModified)
	case name == DefaultName:
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return name, nil
}
