package preset

import "github.com/piwi3910/presettab/internal/compat"

// SelectPolicy decides what UpdateCompatible does with an incompatible
// selected preset.
type SelectPolicy int

const (
	// SelectAlways switches away from an incompatible selected preset.
	SelectAlways SelectPolicy = iota
	// SelectNever only flags presets.
	SelectNever
	// SelectOnlyIfWasCompatible switches only when the selected preset was
	// compatible before the update.
	SelectOnlyIfWasCompatible
)

func (p SelectPolicy) String() string {
	switch p {
	case SelectAlways:
		return "always"
	case SelectNever:
		return "never"
	case SelectOnlyIfWasCompatible:
		return "only-if-was-compatible"
	}
	return "unknown"
}

// UpdateCompatible flags every preset as compatible or not with printer (and
// print, when given) and applies policy to the selected preset. The
// replacement is preferred when it is visible and compatible, else the first
// visible compatible preset, else the default preset. It reports whether the
// selection changed.
func (c *Collection) UpdateCompatible(printer compat.Profile, print *compat.Profile, policy SelectPolicy, preferred string) bool {
	sel := c.Selected()
	wasCompatible := sel.IsCompatible
	for _, p := range c.presets {
		p.IsCompatible = compat.Compatible(c.Profile(p), printer, print)
	}
	if sel.IsCompatible || policy == SelectNever {
		return false
	}
	if policy == SelectOnlyIfWasCompatible && !wasCompatible {
		return false
	}
	next := c.firstCompatible(preferred)
	if next == c.selected {
		return false
	}
	c.log.Info("selected preset is incompatible, switching",
		"type", c.Type(), "preset", sel.Name, "selected", c.presets[next].Name, "policy", policy)
	c.selectIndex(next)
	return true
}

func (c *Collection) firstCompatible(preferred string) int {
	if i := c.index(preferred); i >= 0 && c.presets[i].IsVisible && c.presets[i].IsCompatible {
		return i
	}
	for i := 1; i < len(c.presets); i++ {
		if c.presets[i].IsVisible && c.presets[i].IsCompatible {
			return i
		}
	}
	return 0
}
