// Package bundle ties the preset collections of every type together: it
// negotiates preset switches across collections, keeps compatibility flags up
// to date and exposes one editing Tab per preset type.
package bundle

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

// Options configures a Bundle.
type Options struct {
	Storage preset.Storage
	Prompts Prompts
	Logger  *slog.Logger
	// Config holds the selections and preferences; a default config is used
	// when nil.
	Config *model.AppConfig
}

// Bundle is the application context owning one collection and one tab per
// preset type.
type Bundle struct {
	collections map[model.PresetType]*preset.Collection
	tabs        map[model.PresetType]*Tab
	vendors     map[string]*model.VendorProfile
	resolver    *Resolver
	prompts     Prompts
	config      *model.AppConfig
	log         *slog.Logger
}

// New creates a bundle whose collections hold only their default presets.
func New(opts Options) *Bundle {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		def := model.DefaultAppConfig()
		cfg = &def
	}

	b := &Bundle{
		collections: map[model.PresetType]*preset.Collection{},
		tabs:        map[model.PresetType]*Tab{},
		vendors:     map[string]*model.VendorProfile{},
		prompts:     opts.Prompts,
		config:      cfg,
		log:         log,
	}
	for _, t := range model.PresetTypes() {
		b.collections[t] = preset.NewCollection(model.SchemaFor(t),
			preset.WithStorage(opts.Storage),
			preset.WithLogger(log),
			preset.WithNoDefaults(cfg.NoDefaults),
		)
	}
	b.resolver = &Resolver{
		collections:      b.collections,
		prompts:          opts.Prompts,
		showIncompatible: func(t model.PresetType) bool { return b.tabs[t].ShowIncompatible() },
		log:              log,
	}
	for _, t := range model.PresetTypes() {
		tab := newTab(b.collections[t], b.resolver, log)
		tab.SetShowIncompatible(cfg.ShowIncompatible)
		b.tabs[t] = tab
	}
	return b
}

func (b *Bundle) Collection(t model.PresetType) *preset.Collection { return b.collections[t] }

func (b *Bundle) Tab(t model.PresetType) *Tab { return b.tabs[t] }

func (b *Bundle) Resolver() *Resolver { return b.resolver }

func (b *Bundle) Config() *model.AppConfig { return b.config }

// Add loads presets into the collection of type t.
func (b *Bundle) Add(t model.PresetType, presets ...*preset.Preset) error {
	for _, p := range presets {
		if p.Vendor != nil {
			b.AddVendor(p.Vendor)
		}
	}
	return b.collections[t].Add(presets...)
}

// AddVendor registers a vendor profile, keeping the newest config version
// per vendor id.
func (b *Bundle) AddVendor(v *model.VendorProfile) {
	if cur, ok := b.vendors[v.ID]; !ok || v.Newer(cur) {
		b.vendors[v.ID] = v
	}
}

// Vendors returns the registered vendor profiles sorted by id.
func (b *Bundle) Vendors() []*model.VendorProfile {
	out := make([]*model.VendorProfile, 0, len(b.vendors))
	for _, v := range b.vendors {
		out = append(out, v)
	}
	slices.SortFunc(out, func(x, y *model.VendorProfile) int { return cmp.Compare(x.ID, y.ID) })
	return out
}

// LoadSelections selects the presets recorded in the app config, printer
// first, then switches away from selections that are incompatible with it.
// Unknown names are skipped with a warning.
func (b *Bundle) LoadSelections() {
	order := []model.PresetType{
		model.TypePrinter, model.TypePrint, model.TypeSLAPrint, model.TypeFilament, model.TypeSLAMaterial,
	}
	for _, t := range order {
		name := b.config.SelectedPreset(t)
		if name == "" {
			continue
		}
		if err := b.collections[t].Select(name); err != nil {
			b.log.Warn("stored selection not loaded", "type", t, "preset", name, "error", err)
		}
	}
	b.resolver.UpdateCompatible(preset.SelectAlways, preset.SelectAlways)
	for _, t := range model.PresetTypes() {
		b.tabs[t].Reload()
		b.remember(t)
	}
}

func (b *Bundle) remember(t model.PresetType) {
	b.config.SetSelectedPreset(t, b.collections[t].Selected().Name)
}

func (b *Bundle) commit(res SwitchResult) {
	for _, t := range res.Touched() {
		b.tabs[t].Reload()
		b.remember(t)
	}
}

// Select switches collection t to name, asking the prompts about unsaved
// changes that would be lost.
func (b *Bundle) Select(t model.PresetType, name string) (SwitchResult, error) {
	res, err := b.resolver.Select(t, name)
	if err != nil {
		return res, err
	}
	b.commit(res)
	return res, nil
}

// Delete deletes the selected preset of t and selects the alternate preset.
func (b *Bundle) Delete(t model.PresetType) (SwitchResult, error) {
	res, err := b.resolver.DeleteCurrent(t)
	if err != nil {
		return res, err
	}
	b.commit(res)
	return res, nil
}

// Save stores the edited preset of t under name. Replacing another user
// preset needs ConfirmReplace. Afterwards the compatibility flags of every
// collection are refreshed without changing selections.
func (b *Bundle) Save(t model.PresetType, name string, detach bool) error {
	col := b.collections[t]
	normalized, err := preset.NormalizeName(name)
	if err != nil {
		return err
	}
	if existing := col.Find(normalized); existing != nil && existing != col.Selected() &&
		existing.IsUser() && !existing.IsExternal && !b.prompts.confirmReplace(t, normalized) {
		return fmt.Errorf("%w: %s preset %q", preset.ErrReplaceDeclined, t, normalized)
	}
	if err := col.SaveCurrentPreset(normalized, detach); err != nil {
		return err
	}
	b.resolver.UpdateCompatible(preset.SelectNever, preset.SelectNever)
	for _, tt := range model.PresetTypes() {
		b.tabs[tt].Reload()
	}
	b.remember(t)
	return nil
}

// ChangeSummary lists the unsaved changes of collection t.
func (b *Bundle) ChangeSummary(t model.PresetType) []preset.Change {
	return b.collections[t].Changes()
}
