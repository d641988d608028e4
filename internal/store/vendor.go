package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

// VendorDir is the directory below the data root holding vendor bundles.
const VendorDir = "vendor"

// VendorBundle is a vendor profile with the system presets it ships.
type VendorBundle struct {
	Vendor  *model.VendorProfile
	Presets map[model.PresetType][]*preset.Preset
}

type vendorFile struct {
	ID            string                    `yaml:"id"`
	Name          string                    `yaml:"name"`
	ConfigVersion string                    `yaml:"config_version"`
	Presets       map[string][]vendorPreset `yaml:"presets"`
}

type vendorPreset struct {
	Name     string         `yaml:"name"`
	Alias    string         `yaml:"alias,omitempty"`
	Inherits string         `yaml:"inherits,omitempty"`
	Config   map[string]any `yaml:"config"`
}

// isTemplate reports whether a vendor preset only serves as a base for
// others. Template names are wrapped in asterisks, e.g. "*common*".
func isTemplate(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "*") && strings.HasSuffix(name, "*")
}

// LoadVendors reads every *.yaml bundle in dir, sorted by file name. A
// missing directory yields no bundles.
func LoadVendors(dir string) ([]VendorBundle, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor bundles: %w", err)
	}
	var (
		bundles []VendorBundle
		errs    []error
	)
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		b, err := LoadVendor(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		bundles = append(bundles, b)
	}
	return bundles, errors.Join(errs...)
}

// LoadVendor reads one vendor bundle. Presets are layered over the schema
// defaults and over the bundle preset they inherit from; templates are used
// for inheritance only and are not returned.
func LoadVendor(path string) (VendorBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return VendorBundle{}, fmt.Errorf("failed to read vendor bundle: %w", err)
	}
	var f vendorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return VendorBundle{}, fmt.Errorf("failed to parse vendor bundle %s: %w", path, err)
	}
	vendor, err := model.NewVendorProfile(f.ID, f.Name, f.ConfigVersion)
	if err != nil {
		return VendorBundle{}, fmt.Errorf("vendor bundle %s: %w", path, err)
	}

	out := VendorBundle{Vendor: vendor, Presets: map[model.PresetType][]*preset.Preset{}}
	types := make([]string, 0, len(f.Presets))
	for typ := range f.Presets {
		types = append(types, typ)
	}
	slices.Sort(types)
	for _, typ := range types {
		t, err := model.ParsePresetType(typ)
		if err != nil {
			return VendorBundle{}, fmt.Errorf("vendor %s: %w", vendor.ID, err)
		}
		presets, err := resolveVendorPresets(model.SchemaFor(t), f.Presets[typ])
		if err != nil {
			return VendorBundle{}, fmt.Errorf("vendor %s %s presets: %w", vendor.ID, t, err)
		}
		for _, p := range presets {
			p.Vendor = vendor
		}
		out.Presets[t] = presets
	}
	return out, nil
}

func resolveVendorPresets(schema *model.Schema, defs []vendorPreset) ([]*preset.Preset, error) {
	byName := make(map[string]vendorPreset, len(defs))
	for _, d := range defs {
		if d.Name == "" {
			return nil, errors.New("preset without name")
		}
		if _, dup := byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", d.Name)
		}
		byName[d.Name] = d
	}

	resolved := map[string]*model.Layer{}
	var resolve func(name string, chain []string) (*model.Layer, error)
	resolve = func(name string, chain []string) (*model.Layer, error) {
		if cfg, ok := resolved[name]; ok {
			return cfg, nil
		}
		if slices.Contains(chain, name) {
			return nil, fmt.Errorf("inheritance cycle %s -> %s", strings.Join(chain, " -> "), name)
		}
		d, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("preset %q inherits unknown preset", chain[len(chain)-1])
		}
		cfg := schema.Defaults()
		if d.Inherits != "" {
			base, err := resolve(d.Inherits, append(chain, name))
			if err != nil {
				return nil, err
			}
			cfg = base.Clone()
		}
		if err := applyRaw(cfg, schema, d.Config); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		resolved[name] = cfg
		return cfg, nil
	}

	var out []*preset.Preset
	for _, d := range defs {
		cfg, err := resolve(d.Name, nil)
		if err != nil {
			return nil, err
		}
		if isTemplate(d.Name) {
			continue
		}
		out = append(out, &preset.Preset{
			Name:         d.Name,
			Alias:        d.Alias,
			Config:       cfg.Clone(),
			IsSystem:     true,
			IsVisible:    true,
			IsCompatible: true,
		})
	}
	return out, nil
}
