package bundle

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

// Tab is the editing model behind one settings page: it applies edits to the
// selected preset of a collection, notifies observers and keeps the status
// map current.
type Tab struct {
	typ      model.PresetType
	col      *preset.Collection
	resolver *Resolver

	observers []func(key string, v model.Value)
	// postpone is set while a batch of edits runs; nested edits skip the
	// status recompute and leave it to the outermost one.
	postpone bool
	// restoring is set while Undo or Redo rewrites the edited preset.
	restoring bool
	history   *History

	showIncompatible bool
	session          uuid.UUID
	log              *slog.Logger
}

func newTab(col *preset.Collection, resolver *Resolver, log *slog.Logger) *Tab {
	return &Tab{typ: col.Type(), col: col, resolver: resolver, history: NewHistory(), session: uuid.New(), log: log}
}

func (t *Tab) Type() model.PresetType { return t.typ }

func (t *Tab) Collection() *preset.Collection { return t.col }

// Session identifies the current editing session. It changes on Reload.
func (t *Tab) Session() uuid.UUID { return t.session }

// OnChange registers an observer called after every edited option, in
// registration order. Observers may edit further options.
func (t *Tab) OnChange(fn func(key string, v model.Value)) {
	t.observers = append(t.observers, fn)
}

// ShowIncompatible reports whether incompatible presets stay selectable.
func (t *Tab) ShowIncompatible() bool { return t.showIncompatible }

// SetShowIncompatible toggles whether incompatible presets stay selectable.
func (t *Tab) SetShowIncompatible(show bool) { t.showIncompatible = show }

// Status returns the current status map, computing it on first use.
func (t *Tab) Status() preset.StatusMap {
	if st := t.col.Status(); st != nil {
		return st
	}
	return t.col.UpdateDirtyUI()
}

// Reload starts a new editing session on the selected preset and recomputes
// the status map. The undo history of the previous session is dropped.
func (t *Tab) Reload() preset.StatusMap {
	t.session = uuid.New()
	t.history.Clear()
	t.log.Debug("tab reloaded", "type", t.typ, "preset", t.col.Selected().Name, "session", t.session)
	return t.col.UpdateDirtyUI()
}

// batch runs fn with recomputation postponed and recomputes once afterwards,
// unless it is itself nested in a batch. The outermost batch records the
// state before fn in the undo history under label when fn changed anything.
func (t *Tab) batch(label string, fn func() error) error {
	if t.postpone {
		return fn()
	}
	before := t.col.Edited().Clone()
	t.postpone = true
	err := fn()
	t.postpone = false
	if !t.restoring && !before.Equal(t.col.Edited()) {
		t.history.Push(Snapshot{Config: before, Label: label})
	}
	t.col.UpdateDirtyUI()
	return err
}

// set writes one option and notifies the observers. Writing the value an
// option already holds is a no-op, which ends observer chains that echo
// edits back to each other.
func (t *Tab) set(key string, v model.Value) error {
	if cur, err := t.col.Edited().Get(key); err == nil && cur.Equal(v) {
		return nil
	}
	if err := t.col.SetValue(key, v); err != nil {
		return err
	}
	for _, fn := range t.observers {
		fn(key, v)
	}
	return nil
}

// SetValue edits one option. Changing a compatible_* option re-flags the
// compatibility of every dependent preset without switching selections.
func (t *Tab) SetValue(key string, v model.Value) error {
	return t.batch("Set "+key, func() error {
		if err := t.set(key, v); err != nil {
			return err
		}
		if strings.HasPrefix(key, "compatible_") {
			t.resolver.UpdateCompatible(preset.SelectNever, preset.SelectNever)
		}
		return nil
	})
}

// LoadConfig copies the options of cfg that differ from the edited preset.
// Every value is checked before anything is written; the status map is
// recomputed once when something changed.
func (t *Tab) LoadConfig(cfg *model.Layer) error {
	edited := t.col.Edited()
	var keys []string
	for _, key := range cfg.Keys() {
		v, _ := cfg.Get(key)
		if err := t.col.CheckValue(key, v); err != nil {
			return err
		}
		if cur, err := edited.Get(key); err != nil || !cur.Equal(v) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return t.batch("Load config", func() error {
		for _, key := range keys {
			v, _ := cfg.Get(key)
			if err := t.col.SetValue(key, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetExtrudersCount resizes every extruder option to n elements.
func (t *Tab) SetExtrudersCount(n int) error {
	return t.SetCount("extruders_count", n)
}

// SetMillingCount resizes every milling option to n elements.
func (t *Tab) SetMillingCount(n int) error {
	return t.SetCount("milling_count", n)
}

// Count returns the current value of a count field.
func (t *Tab) Count(key string) (int, error) {
	cf, ok := t.col.Schema().Count(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no count %q", preset.ErrKeyNotFound, t.typ, key)
	}
	v, err := t.col.Edited().Get(cf.Source)
	if err != nil {
		return 0, err
	}
	return v.Len(), nil
}

// SetCount resizes every option grouped under count field key to n elements.
func (t *Tab) SetCount(key string, n int) error {
	cf, ok := t.col.Schema().Count(key)
	if !ok {
		return fmt.Errorf("%w: %s has no count %q", preset.ErrKeyNotFound, t.typ, key)
	}
	if n < cf.Min {
		return fmt.Errorf("%w: %s must be at least %d, got %d", preset.ErrInvalidValue, key, cf.Min, n)
	}
	return t.batch("Set "+key, func() error {
		for _, k := range cf.Keys {
			cur, err := t.col.Edited().Get(k)
			if err != nil {
				return err
			}
			if cur.Len() == n {
				continue
			}
			def, _ := t.col.Schema().Def(k)
			if err := t.set(k, cur.Resize(n, def.Default)); err != nil {
				return err
			}
		}
		return nil
	})
}

// RollBack resets options to the parent value (toSystem) or to the saved
// value. Without keys every option whose status bit is clear is reset.
// Count fields are resized first so per-element keys line up.
func (t *Tab) RollBack(toSystem bool, keys ...string) error {
	bit := preset.StatusInitValue
	source := t.col.Selected().Config
	if toSystem {
		bit = preset.StatusSystemValue
		source = t.col.ParentConfig()
	}

	status := t.Status()
	keys = slices.Clone(keys)
	if len(keys) == 0 {
		for k, s := range status {
			if s&bit == 0 {
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)

	schema := t.col.Schema()
	counts := slices.DeleteFunc(slices.Clone(keys), func(k string) bool {
		_, ok := schema.Count(k)
		return !ok
	})

	return t.batch("Roll back", func() error {
		for _, k := range counts {
			cf, _ := schema.Count(k)
			n := 0
			if v, err := source.Get(cf.Source); err == nil {
				n = v.Len()
			}
			if err := t.SetCount(k, max(n, cf.Min)); err != nil {
				return err
			}
		}
		for _, k := range keys {
			if slices.Contains(counts, k) {
				continue
			}
			if err := t.rollBackKey(source, k); err != nil {
				return err
			}
		}
		t.log.Debug("options rolled back", "type", t.typ, "to_system", toSystem, "keys", len(keys))
		return nil
	})
}

func (t *Tab) rollBackKey(source *model.Layer, k string) error {
	base, idx, indexed := model.SplitIndexedKey(k)
	want, err := source.Get(base)
	if err != nil {
		return err
	}
	if !indexed {
		return t.set(base, want)
	}
	cur, err := t.col.Edited().Get(base)
	if err != nil {
		return err
	}
	if idx >= cur.Len() || idx >= want.Len() {
		// Element added or removed by a count change.
		return nil
	}
	elem, err := want.Elem(idx)
	if err != nil {
		return err
	}
	v, err := cur.WithElem(idx, elem)
	if err != nil {
		return err
	}
	return t.set(base, v)
}

// Undo reverts the last edit of this session and returns its label.
func (t *Tab) Undo() (string, error) {
	snap, ok := t.history.Undo(Snapshot{Config: t.col.Edited().Clone()})
	if !ok {
		return "", ErrNothingToUndo
	}
	return snap.Label, t.restore(snap.Config)
}

// Redo reapplies the last undone edit and returns its label.
func (t *Tab) Redo() (string, error) {
	snap, ok := t.history.Redo(Snapshot{Config: t.col.Edited().Clone()})
	if !ok {
		return "", ErrNothingToRedo
	}
	return snap.Label, t.restore(snap.Config)
}

func (t *Tab) CanUndo() bool { return t.history.CanUndo() }

func (t *Tab) CanRedo() bool { return t.history.CanRedo() }

func (t *Tab) restore(cfg *model.Layer) error {
	t.restoring = true
	defer func() { t.restoring = false }()
	return t.batch("", func() error {
		for _, key := range t.col.Edited().Diff(cfg, false) {
			v, err := cfg.Get(key)
			if err != nil {
				continue
			}
			if err := t.set(key, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// GroupStatus aggregates the status of a group of options: isSystem when all
// equal the parent, isModified when any has unsaved changes.
func (t *Tab) GroupStatus(keys ...string) (isSystem, isModified bool) {
	isSystem = true
	for k, s := range t.Status() {
		base, _, _ := model.SplitIndexedKey(k)
		if !slices.Contains(keys, base) {
			continue
		}
		if !s.IsSystemValue() {
			isSystem = false
		}
		if !s.IsInitValue() {
			isModified = true
		}
	}
	return isSystem, isModified
}

// CategoryStatus is the aggregated status of one option category.
type CategoryStatus struct {
	Name       string
	IsSystem   bool
	IsModified bool
}

// Categories returns the aggregated status of every option category, in
// schema order.
func (t *Tab) Categories() []CategoryStatus {
	schema := t.col.Schema()
	var order []string
	members := map[string][]string{}
	add := func(category, key string) {
		if _, ok := members[category]; !ok {
			order = append(order, category)
		}
		members[category] = append(members[category], key)
	}
	for _, cf := range schema.Counts {
		add(cf.Category, cf.Key)
	}
	for _, o := range schema.Options {
		add(o.Category, o.Key)
	}

	out := make([]CategoryStatus, 0, len(order))
	for _, name := range order {
		sys, mod := t.GroupStatus(members[name]...)
		out = append(out, CategoryStatus{Name: name, IsSystem: sys, IsModified: mod})
	}
	return out
}

// Description returns the text explaining where the selected preset comes
// from.
func (t *Tab) Description() string {
	p := t.col.Selected()
	parent := t.col.SelectedParent()
	edited := t.col.Edited()

	var b strings.Builder
	switch {
	case p.IsDefault:
		b.WriteString("This is a default preset.")
	case p.IsSystem:
		b.WriteString("This is a system preset.")
	case parent == nil || parent.IsDefault:
		b.WriteString("Current preset is inherited from the default preset.")
	default:
		b.WriteString("Current preset is inherited from:\n\t" + parent.Name)
	}
	if p.IsDefault || p.IsSystem {
		b.WriteString("\n\tIt can't be deleted or modified." +
			"\n\tAny modifications should be saved as a new preset inherited from this one." +
			"\n\tTo do that please specify a new name for the preset.")
	}

	if parent == nil || parent.Vendor == nil {
		return b.String()
	}
	b.WriteString("\n\nAdditional information:\n\tvendor: ")
	if t.typ == model.TypePrinter {
		b.WriteString("\n\t\t")
	}
	b.WriteString(parent.Vendor.Name + ", ver: " + parent.Vendor.Version())

	line := func(label, value string) {
		if value != "" {
			b.WriteString("\n\n\t" + label + ": \n\t\t" + value)
		}
	}
	switch {
	case t.typ == model.TypePrinter:
		line("printer model", edited.String("printer_model"))
		if model.TechnologyOf(edited) == model.TechSLA {
			line("default SLA material profile", edited.String("default_sla_material_profile"))
			line("default SLA print profile", edited.String("default_sla_print_profile"))
		} else {
			line("default print profile", edited.String("default_print_profile"))
			line("default filament profile", strings.Join(edited.Strings("default_filament_profile"), ", "))
		}
	case p.Alias != "":
		b.WriteString("\n\n\tfull profile name: \n\t\t" + p.Name)
		b.WriteString("\n\tsymbolic profile name: \n\t\t" + p.Alias)
	}
	return b.String()
}

// CanDetach reports whether the selected preset has a system parent it could
// be detached from.
func (t *Tab) CanDetach() bool {
	p := t.col.Selected()
	parent := t.col.SelectedParent()
	return parent != nil && parent.IsSystem && !p.IsDefault
}
