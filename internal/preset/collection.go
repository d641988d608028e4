package preset

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/piwi3910/presettab/internal/compat"
	"github.com/piwi3910/presettab/internal/model"
)

// Storage persists user presets. Implementations must not change anything
// when they return an error.
type Storage interface {
	WritePreset(t model.PresetType, p *Preset) error
	DeletePreset(t model.PresetType, name string) error
}

// Option configures a Collection.
type Option func(*Collection)

// WithStorage sets the storage used by save and delete.
func WithStorage(s Storage) Option {
	return func(c *Collection) { c.storage = s }
}

// WithLogger sets the collection logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collection) {
		if l != nil {
			c.log = l
		}
	}
}

// WithNoDefaults hides the "- default -" preset while other presets exist.
func WithNoDefaults(hide bool) Option {
	return func(c *Collection) { c.noDefaults = hide }
}

// Collection is the ordered list of presets of one type together with the
// selected preset and its edited copy. Index 0 always holds the default
// preset.
type Collection struct {
	schema   *model.Schema
	presets  []*Preset
	selected int
	edited   *model.Layer

	status      StatusMap
	subscribers []func(StatusMap)

	storage    Storage
	log        *slog.Logger
	noDefaults bool
}

// NewCollection returns a collection holding only the default preset, selected.
func NewCollection(schema *model.Schema, opts ...Option) *Collection {
	c := &Collection{schema: schema, log: slog.Default(), noDefaults: true}
	for _, opt := range opts {
		opt(c)
	}
	def := &Preset{
		Name:         DefaultName,
		Config:       schema.Defaults(),
		IsDefault:    true,
		IsVisible:    true,
		IsCompatible: true,
	}
	c.presets = []*Preset{def}
	c.edited = def.Config.Clone()
	return c
}

func (c *Collection) Type() model.PresetType { return c.schema.Type }

func (c *Collection) Schema() *model.Schema { return c.schema }

func (c *Collection) Len() int { return len(c.presets) }

// Add inserts loaded presets, keeping non-default presets sorted by name.
// Missing options are filled from the schema defaults.
func (c *Collection) Add(presets ...*Preset) error {
	selName := c.Selected().Name
	for _, p := range presets {
		if p.Name == "" || p.Name == DefaultName {
			return fmt.Errorf("%w: cannot add preset named %q", ErrInvalidName, p.Name)
		}
		if c.index(p.Name) >= 0 {
			return fmt.Errorf("%w: %s preset %q already loaded", ErrNameConflict, c.Type(), p.Name)
		}
		c.fillDefaults(p)
		c.insertSorted(p)
	}
	c.selected = c.index(selName)
	c.updateDefaultVisibility()
	return nil
}

func (c *Collection) fillDefaults(p *Preset) {
	if p.Config == nil {
		p.Config = c.schema.Defaults()
		return
	}
	for _, o := range c.schema.Options {
		if !p.Config.Has(o.Key) {
			p.Config.Set(o.Key, o.Default.Clone())
		}
	}
}

func (c *Collection) insertSorted(p *Preset) {
	i, _ := slices.BinarySearchFunc(c.presets[1:], p.Name, func(e *Preset, name string) int {
		return strings.Compare(e.Name, name)
	})
	c.presets = slices.Insert(c.presets, i+1, p)
}

func (c *Collection) updateDefaultVisibility() {
	c.presets[0].IsVisible = !c.noDefaults || len(c.presets) == 1
}

// Presets returns the presets in display order.
func (c *Collection) Presets() []*Preset {
	return slices.Clone(c.presets)
}

// Names returns preset names in display order.
func (c *Collection) Names(visibleOnly bool) []string {
	var names []string
	for _, p := range c.presets {
		if visibleOnly && !p.IsVisible {
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

func (c *Collection) index(name string) int {
	return slices.IndexFunc(c.presets, func(p *Preset) bool { return p.Name == name })
}

// Find returns the preset with the given name, or nil.
func (c *Collection) Find(name string) *Preset {
	if i := c.index(name); i >= 0 {
		return c.presets[i]
	}
	return nil
}

// Default returns the built-in default preset.
func (c *Collection) Default() *Preset { return c.presets[0] }

// Selected returns the selected preset as last saved.
func (c *Collection) Selected() *Preset { return c.presets[c.selected] }

// Edited returns the live edited configuration of the selected preset.
// Callers change it through SetValue.
func (c *Collection) Edited() *model.Layer { return c.edited }

// Select makes name the selected preset and resets the edited copy. Storage
// is not touched.
func (c *Collection) Select(name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s preset %q", ErrPresetNotFound, c.Type(), name)
	}
	c.selectIndex(i)
	return nil
}

func (c *Collection) selectIndex(i int) {
	c.selected = i
	c.edited = c.presets[i].Config.Clone()
	c.log.Debug("preset selected", "type", c.Type(), "preset", c.presets[i].Name)
}

// DiscardCurrentChanges resets the edited copy to the selected preset.
func (c *Collection) DiscardCurrentChanges() {
	c.edited = c.Selected().Config.Clone()
}

// SetValue changes one option of the edited copy.
func (c *Collection) SetValue(key string, v model.Value) error {
	if err := c.CheckValue(key, v); err != nil {
		return err
	}
	c.edited.Set(key, v.Clone())
	return nil
}

// CheckValue reports whether SetValue would accept v for key.
func (c *Collection) CheckValue(key string, v model.Value) error {
	def, ok := c.schema.Def(key)
	if !ok {
		return fmt.Errorf("%w: %s option %q", ErrKeyNotFound, c.Type(), key)
	}
	if def.Kind != v.Kind {
		return fmt.Errorf("%w: %s expects %s, got %s", ErrInvalidValue, key, def.Kind, v.Kind)
	}
	if def.Kind == model.KindEnum && !slices.Contains(def.Enum, v.String()) {
		return fmt.Errorf("%w: %s does not accept %q", ErrInvalidValue, key, v.String())
	}
	return nil
}

// ParentOf resolves the parent of p. System and default presets are their
// own parent. A user preset without Inherits descends from the default
// preset, except external presets which have none. An unresolvable
// Inherits yields nil.
func (c *Collection) ParentOf(p *Preset) *Preset {
	if p.IsSystem || p.IsDefault {
		return p
	}
	if p.Inherits == "" {
		if p.IsExternal {
			return nil
		}
		return c.presets[0]
	}
	parent := c.Find(p.Inherits)
	if parent == nil || parent.IsExternal {
		return nil
	}
	return parent
}

// SelectedParent returns the parent of the selected preset, or nil.
func (c *Collection) SelectedParent() *Preset {
	return c.ParentOf(c.Selected())
}

// ParentConfig returns the configuration the edited preset is compared with
// for system status: the parent's, or the schema defaults.
func (c *Collection) ParentConfig() *model.Layer {
	if parent := c.SelectedParent(); parent != nil {
		return parent.Config
	}
	return c.schema.Defaults()
}

// VendorOf returns the vendor of p, inherited from its parent for user presets.
func (c *Collection) VendorOf(p *Preset) *model.VendorProfile {
	if p.Vendor != nil || !p.IsUser() {
		return p.Vendor
	}
	if parent := c.ParentOf(p); parent != nil && parent != p {
		return parent.Vendor
	}
	return nil
}

// Profile returns p as seen by compatibility checks. The selected preset is
// represented by its edited configuration.
func (c *Collection) Profile(p *Preset) compat.Profile {
	cfg := p.Config
	if p == c.Selected() {
		cfg = c.edited
	}
	return compat.Profile{Name: p.Name, IsDefault: p.IsDefault, Config: cfg, Vendor: c.VendorOf(p), Log: c.log}
}

// EditedProfile is Profile of the selected preset.
func (c *Collection) EditedProfile() compat.Profile {
	return c.Profile(c.Selected())
}

// CurrentDirtyOptions lists the options of the edited copy that differ from
// the selected preset.
func (c *Collection) CurrentDirtyOptions(deep bool) []string {
	return c.edited.Diff(c.Selected().Config, deep)
}

// CurrentDifferentFromParentOptions lists the options of the edited copy that
// differ from the parent (or schema defaults).
func (c *Collection) CurrentDifferentFromParentOptions(deep bool) []string {
	return c.edited.Diff(c.ParentConfig(), deep)
}

// CurrentIsDirty reports whether the edited copy has unsaved changes.
func (c *Collection) CurrentIsDirty() bool {
	return len(c.CurrentDirtyOptions(false)) > 0
}

// Subscribe registers fn to receive every recomputed status map, in
// registration order.
func (c *Collection) Subscribe(fn func(StatusMap)) {
	c.subscribers = append(c.subscribers, fn)
}

// Status returns the status map of the last UpdateDirtyUI call.
func (c *Collection) Status() StatusMap { return c.status }

// UpdateDirtyUI recomputes the status of every option, publishes the fresh
// map to subscribers and returns it.
func (c *Collection) UpdateDirtyUI() StatusMap {
	deep := c.Type().DeepCompare()
	const seed = StatusClean

	status := make(StatusMap, c.edited.Len())
	for _, key := range c.edited.Keys() {
		v, _ := c.edited.Get(key)
		if deep && v.IsVector() && !model.IsWholeCompare(key) {
			for i := 0; i < v.Len(); i++ {
				status[model.IndexedKey(key, i)] = seed
			}
			continue
		}
		status[key] = seed
	}
	clearBit := func(keys []string, bit Status) {
		for _, k := range keys {
			s, ok := status[k]
			if !ok {
				s = seed
			}
			status[k] = s &^ bit
		}
	}
	clearBit(c.CurrentDirtyOptions(deep), StatusInitValue)
	clearBit(c.CurrentDifferentFromParentOptions(deep), StatusSystemValue)

	parent := c.SelectedParent()
	for _, cf := range c.schema.Counts {
		s := seed
		cur := vectorLen(c.edited, cf.Source)
		if cur != vectorLen(c.Selected().Config, cf.Source) {
			s &^= StatusInitValue
		}
		sys := 0
		if parent != nil {
			sys = vectorLen(parent.Config, cf.Source)
		}
		if cur != sys {
			s &^= StatusSystemValue
		}
		status[cf.Key] = s
	}

	c.status = status
	for _, fn := range c.subscribers {
		fn(status)
	}
	return status
}

func vectorLen(l *model.Layer, key string) int {
	v, err := l.Get(key)
	if err != nil {
		return 0
	}
	return v.Len()
}

// Changes summarises the unsaved changes of the edited copy.
func (c *Collection) Changes() []Change {
	return c.changes(c.Selected().Config, c.edited)
}

// Compare summarises how preset b differs from preset a. The selected preset
// takes part with its edited configuration.
func (c *Collection) Compare(a, b string) ([]Change, error) {
	pa, pb := c.Find(a), c.Find(b)
	if pa == nil {
		return nil, fmt.Errorf("%w: %s preset %q", ErrPresetNotFound, c.Type(), a)
	}
	if pb == nil {
		return nil, fmt.Errorf("%w: %s preset %q", ErrPresetNotFound, c.Type(), b)
	}
	return c.changes(c.Profile(pa).Config, c.Profile(pb).Config), nil
}

func (c *Collection) changes(from, to *model.Layer) []Change {
	var out []Change
	for _, key := range from.Diff(to, false) {
		label, category := c.schema.Describe(key)
		out = append(out, Change{
			Key:      key,
			Label:    label,
			Category: category,
			Old:      from.String(key),
			New:      to.String(key),
		})
	}
	return out
}

// SaveCurrentPreset stores the edited copy under name and selects it. Saving
// from a system preset makes it the parent; detach drops the parent. An
// existing user preset of that name is replaced in place.
func (c *Collection) SaveCurrentPreset(name string, detach bool) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	idx := c.index(name)
	if idx >= 0 {
		if existing := c.presets[idx]; !existing.IsUser() || existing.IsExternal {
			return fmt.Errorf("%w: %s preset %q", ErrNameConflict, c.Type(), name)
		}
	}

	sel := c.Selected()
	p := &Preset{
		Name:         name,
		Config:       c.edited.Clone(),
		IsVisible:    true,
		IsCompatible: sel.IsCompatible,
	}
	switch {
	case detach, sel.IsDefault:
	case sel.IsSystem:
		p.Inherits = sel.Name
	default:
		p.Inherits = sel.Inherits
	}

	if c.storage != nil {
		if err := c.storage.WritePreset(c.Type(), p); err != nil {
			return fmt.Errorf("%w: write %s preset %q: %w", ErrStorage, c.Type(), name, err)
		}
	}

	if idx >= 0 {
		c.presets[idx] = p
	} else {
		c.insertSorted(p)
	}
	c.updateDefaultVisibility()
	c.selectIndex(c.index(name))
	c.log.Info("preset saved", "type", c.Type(), "preset", name, "inherits", p.Inherits, "replaced", idx >= 0)
	return nil
}

// AlternateName returns the preset that becomes selected when the selected
// preset is deleted: the next visible one, else the previous, else default.
func (c *Collection) AlternateName() string {
	return c.presets[c.alternateIndex(c.selected)].Name
}

func (c *Collection) alternateIndex(from int) int {
	for i := from + 1; i < len(c.presets); i++ {
		if c.presets[i].IsVisible {
			return i
		}
	}
	for i := from - 1; i > 0; i-- {
		if c.presets[i].IsVisible {
			return i
		}
	}
	return 0
}

// DeleteCurrentPreset removes the selected preset and selects the alternate
// preset, whose name is returned. External presets are only dropped from the
// list.
func (c *Collection) DeleteCurrentPreset() (string, error) {
	sel := c.Selected()
	if !sel.IsUser() {
		return "", fmt.Errorf("%w: %s preset %q is a system or default preset", ErrNotDeletable, c.Type(), sel.Name)
	}
	if err := c.deleteStored(sel); err != nil {
		return "", err
	}
	next := c.AlternateName()
	c.presets = slices.Delete(c.presets, c.selected, c.selected+1)
	c.updateDefaultVisibility()
	c.selectIndex(c.index(next))
	c.log.Info("preset deleted", "type", c.Type(), "preset", sel.Name, "selected", next)
	return next, nil
}

// DeletePreset removes the named user preset. Deleting the selected preset
// behaves like DeleteCurrentPreset.
func (c *Collection) DeletePreset(name string) error {
	idx := c.index(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s preset %q", ErrPresetNotFound, c.Type(), name)
	}
	if idx == c.selected {
		_, err := c.DeleteCurrentPreset()
		return err
	}
	p := c.presets[idx]
	if !p.IsUser() {
		return fmt.Errorf("%w: %s preset %q is a system or default preset", ErrNotDeletable, c.Type(), name)
	}
	if err := c.deleteStored(p); err != nil {
		return err
	}
	selName := c.Selected().Name
	c.presets = slices.Delete(c.presets, idx, idx+1)
	c.selected = c.index(selName)
	c.updateDefaultVisibility()
	c.log.Info("preset deleted", "type", c.Type(), "preset", name)
	return nil
}

func (c *Collection) deleteStored(p *Preset) error {
	if p.IsExternal || c.storage == nil {
		return nil
	}
	if err := c.storage.DeletePreset(c.Type(), p.Name); err != nil {
		return fmt.Errorf("%w: delete %s preset %q: %w", ErrStorage, c.Type(), p.Name, err)
	}
	return nil
}
