// Package preset holds named configuration presets, one collection per preset
// type, and tracks how the edited copy of the selected preset differs from its
// saved state and from its parent.
package preset

import (
	"slices"

	"github.com/piwi3910/presettab/internal/model"
)

// Preset is a named configuration.
type Preset struct {
	Name  string
	Alias string
	// Inherits names the parent preset in the same collection; empty for
	// system presets and presets detached from their parent.
	Inherits string
	Config   *model.Layer

	IsDefault    bool
	IsSystem     bool
	IsExternal   bool
	IsVisible    bool
	IsCompatible bool

	Vendor *model.VendorProfile
}

// IsUser reports whether the preset was created by the user.
func (p *Preset) IsUser() bool {
	return !p.IsDefault && !p.IsSystem
}

// Label returns the name shown in selectors.
func (p *Preset) Label(dirty bool) string {
	if dirty {
		return p.Name + " " + SuffixModified
	}
	return p.Name
}

// Status is a per-option bitmask.
type Status uint8

const (
	// StatusSystemValue is set when the option equals the parent's value.
	StatusSystemValue Status = 1 << iota
	// StatusInitValue is set when the option equals the saved value.
	StatusInitValue

	StatusClean = StatusSystemValue | StatusInitValue
)

func (s Status) IsSystemValue() bool { return s&StatusSystemValue != 0 }
func (s Status) IsInitValue() bool { return s&StatusInitValue != 0 }

// StatusMap holds the status of every option of the edited preset, keyed by
// option key (or key#i for vector elements in deep mode, or a count field key).
type StatusMap map[string]Status

// Modified returns the keys that differ from the saved preset, sorted.
func (m StatusMap) Modified() []string {
	return m.without(StatusInitValue)
}

// NonSystem returns the keys that differ from the parent preset, sorted.
func (m StatusMap) NonSystem() []string {
	return m.without(StatusSystemValue)
}

func (m StatusMap) without(bit Status) []string {
	var keys []string
	for k, s := range m {
		if s&bit == 0 {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Change describes one modified option for human readable summaries.
type Change struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Old      string `json:"old"`
	New      string `json:"new"`
}
