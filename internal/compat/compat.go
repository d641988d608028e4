package compat

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/piwi3910/presettab/internal/model"
)

// Profile is a preset as seen by the compatibility checks: its effective
// configuration and the vendor it ships under (inherited from its parent for
// user presets). Log receives condition evaluation failures; nil drops them.
type Profile struct {
	Name      string
	IsDefault bool
	Config    *model.Layer
	Vendor    *model.VendorProfile
	Log       *slog.Logger
}

func sameVendor(dep, target *model.VendorProfile) bool {
	if dep == nil {
		return true
	}
	return target != nil && dep.ID == target.ID
}

// WithPrinter reports whether dep may be used with printer. A vendor preset
// only works with printers of the same vendor. A non-empty
// compatible_printers list is a whitelist of printer names; otherwise
// compatible_printers_condition is evaluated against the printer config.
func WithPrinter(dep, printer Profile) bool {
	if !sameVendor(dep.Vendor, printer.Vendor) {
		return false
	}
	list := dep.Config.Strings("compatible_printers")
	cond := strings.TrimSpace(dep.Config.String("compatible_printers_condition"))
	if len(list) == 0 && cond != "" {
		return evaluate(dep, cond, printer.Config)
	}
	return dep.IsDefault || printer.Name == "" || len(list) == 0 || slices.Contains(list, printer.Name)
}

// WithPrint reports whether dep may be used with print on printer. The
// condition sees the print options layered over the printer options.
func WithPrint(dep, print, printer Profile) bool {
	if !sameVendor(dep.Vendor, print.Vendor) {
		return false
	}
	list := dep.Config.Strings("compatible_prints")
	cond := strings.TrimSpace(dep.Config.String("compatible_prints_condition"))
	if len(list) == 0 && cond != "" {
		return evaluate(dep, cond, merge(printer.Config, print.Config))
	}
	return dep.IsDefault || print.Name == "" || len(list) == 0 || slices.Contains(list, print.Name)
}

// Compatible combines WithPrinter and, when print is given, WithPrint.
func Compatible(dep, printer Profile, print *Profile) bool {
	if !WithPrinter(dep, printer) {
		return false
	}
	return print == nil || WithPrint(dep, *print, printer)
}

func evaluate(dep Profile, cond string, cfg *model.Layer) bool {
	ok, err := Evaluate(cond, cfg)
	if err != nil {
		if dep.Log != nil {
			dep.Log.Warn("compatibility condition failed, treating preset as incompatible", "preset", dep.Name, "error", err)
		}
		return false
	}
	return ok
}

func merge(base, over *model.Layer) *model.Layer {
	out := model.NewLayer()
	for _, l := range []*model.Layer{base, over} {
		if l == nil {
			continue
		}
		for _, key := range l.Keys() {
			v, _ := l.Get(key)
			out.Set(key, v)
		}
	}
	return out
}
