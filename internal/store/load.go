package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/piwi3910/presettab/internal/bundle"
	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

// LoadInto fills b with the vendor bundles under <root>/vendor and the user
// presets of s, then restores the selections of b's config. User presets
// clashing with a system preset are skipped with a warning.
func (s *FileStore) LoadInto(b *bundle.Bundle) error {
	var errs []error
	vendors, err := LoadVendors(filepath.Join(s.Root, VendorDir))
	if err != nil {
		errs = append(errs, err)
	}
	for _, vb := range vendors {
		b.AddVendor(vb.Vendor)
		for _, t := range model.PresetTypes() {
			if err := addAll(b, t, vb.Presets[t]); err != nil {
				errs = append(errs, fmt.Errorf("vendor %s: %w", vb.Vendor.ID, err))
			}
		}
	}

	for _, t := range model.PresetTypes() {
		presets, err := s.LoadPresets(t, model.SchemaFor(t))
		if err != nil {
			errs = append(errs, err)
		}
		for _, p := range presets {
			if err := b.Add(t, p); err != nil {
				s.log.Warn("user preset skipped", "type", t, "preset", p.Name, "error", err)
			}
		}
	}

	b.LoadSelections()
	return errors.Join(errs...)
}

func addAll(b *bundle.Bundle, t model.PresetType, presets []*preset.Preset) error {
	var errs []error
	for _, p := range presets {
		if err := b.Add(t, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
