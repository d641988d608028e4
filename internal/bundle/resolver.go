package bundle

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/piwi3910/presettab/internal/compat"
	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

// SwitchResult reports what a committed preset switch changed.
type SwitchResult struct {
	Type     model.PresetType
	Previous string
	Selected string

	TechnologyChanged bool
	// Discarded lists the collections whose unsaved changes were dropped.
	Discarded []model.PresetType
	// Reload lists dependent collections that must reload their selected
	// preset.
	Reload []model.PresetType
	// Switched lists collections whose selection moved to a compatible preset.
	Switched []model.PresetType
}

// Touched returns every collection affected by the switch, primary first.
func (r SwitchResult) Touched() []model.PresetType {
	out := []model.PresetType{r.Type}
	for _, group := range [][]model.PresetType{r.Discarded, r.Reload, r.Switched} {
		for _, t := range group {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

// Resolver negotiates preset switches across the collections of a bundle.
type Resolver struct {
	collections      map[model.PresetType]*preset.Collection
	prompts          Prompts
	showIncompatible func(model.PresetType) bool
	log              *slog.Logger
}

type dependent struct {
	typ           model.PresetType
	oldDirty      bool
	newCompatible bool
}

func (d dependent) mustDiscard() bool { return d.oldDirty && !d.newCompatible }

// printerDependents are the collections checked on a printer switch, with the
// technology each belongs to.
var printerDependents = []model.PresetType{
	model.TypePrint,
	model.TypeSLAPrint,
	model.TypeFilament,
	model.TypeSLAMaterial,
}

// Select switches collection t to name. Nothing changes unless every prompt
// is accepted.
func (r *Resolver) Select(t model.PresetType, name string) (SwitchResult, error) {
	return r.switchTo(t, name, false)
}

// DeleteCurrent deletes the selected preset of t and switches to the
// alternate preset through the same protocol as Select.
func (r *Resolver) DeleteCurrent(t model.PresetType) (SwitchResult, error) {
	col := r.collections[t]
	if sel := col.Selected(); !sel.IsUser() {
		return SwitchResult{Type: t, Previous: sel.Name, Selected: sel.Name},
			fmt.Errorf("%w: %s preset %q is a system or default preset", preset.ErrNotDeletable, t, sel.Name)
	}
	return r.switchTo(t, col.AlternateName(), true)
}

func (r *Resolver) switchTo(t model.PresetType, name string, deleteCurrent bool) (SwitchResult, error) {
	col := r.collections[t]
	res := SwitchResult{Type: t, Previous: col.Selected().Name, Selected: col.Selected().Name}
	target := col.Find(name)
	if target == nil {
		return res, fmt.Errorf("%w: %s preset %q", preset.ErrPresetNotFound, t, name)
	}

	currentDirty := !deleteCurrent && col.CurrentIsDirty()
	if currentDirty && !r.prompts.mayDiscard(DiscardRequest{
		Type: t, Preset: col.Selected().Name, Changes: col.Changes(), TargetType: t, Target: name,
	}) {
		return res, r.declined(t, name, t)
	}

	printers := r.collections[model.TypePrinter]
	oldTech := model.TechnologyOf(printers.Edited())
	newTech := oldTech
	printTab := t == model.TypePrint || t == model.TypeSLAPrint

	var deps []dependent
	switch {
	case printTab:
		depType := model.TypeFilament
		if t == model.TypeSLAPrint {
			depType = model.TypeSLAMaterial
		}
		dep := r.collections[depType]
		deps = append(deps, dependent{
			typ:           depType,
			oldDirty:      dep.CurrentIsDirty(),
			newCompatible: compat.WithPrint(dep.EditedProfile(), col.Profile(target), printers.EditedProfile()),
		})
		res.Reload = append(res.Reload, depType)
	case t == model.TypePrinter:
		newTech = model.TechnologyOf(target.Config)
		if oldTech == model.TechFFF && newTech == model.TechSLA && !r.prompts.maySwitchTechnology(oldTech, newTech) {
			r.log.Info("technology switch declined", "from", oldTech, "to", newTech, "preset", name)
			return res, fmt.Errorf("%w: switch to %s printer %q", preset.ErrSwitchDeclined, newTech, name)
		}
		printer := col.Profile(target)
		for _, dt := range printerDependents {
			dep := r.collections[dt]
			tech := dt.Technology()
			deps = append(deps, dependent{
				typ:           dt,
				oldDirty:      tech == oldTech && dep.CurrentIsDirty(),
				newCompatible: tech == newTech && compat.WithPrinter(dep.EditedProfile(), printer),
			})
			if tech == newTech {
				res.Reload = append(res.Reload, dt)
			}
		}
	}

	for _, d := range deps {
		if !d.mustDiscard() {
			continue
		}
		dep := r.collections[d.typ]
		if !r.prompts.mayDiscard(DiscardRequest{
			Type: d.typ, Preset: dep.Selected().Name, Changes: dep.Changes(), TargetType: t, Target: name,
		}) {
			return res, r.declined(t, name, d.typ)
		}
	}

	if deleteCurrent {
		if _, err := col.DeleteCurrentPreset(); err != nil {
			return res, err
		}
	}
	for _, d := range deps {
		if d.mustDiscard() {
			r.collections[d.typ].DiscardCurrentChanges()
			res.Discarded = append(res.Discarded, d.typ)
		}
	}
	if currentDirty {
		col.DiscardCurrentChanges()
		res.Discarded = append(res.Discarded, t)
	}
	if err := col.Select(name); err != nil {
		return res, err
	}
	res.Selected = name
	res.TechnologyChanged = oldTech != newTech

	if currentDirty || deleteCurrent || printTab || t == model.TypePrinter {
		forced := deleteCurrent || res.TechnologyChanged
		res.Switched = r.UpdateCompatible(
			r.policy(forced, printTab, model.TypePrint),
			r.policy(forced, false, model.TypeFilament),
		)
	}
	r.log.Info("preset switched", "type", t, "from", res.Previous, "to", name,
		"deleted", deleteCurrent, "technology_changed", res.TechnologyChanged)
	return res, nil
}

func (r *Resolver) declined(t model.PresetType, name string, blocking model.PresetType) error {
	r.log.Info("preset switch declined", "type", t, "preset", name, "unsaved", blocking)
	return fmt.Errorf("%w: %s preset %q would discard unsaved %s changes", preset.ErrSwitchDeclined, t, name, blocking)
}

// policy picks how UpdateCompatible treats the selected preset of a
// collection after a switch. onPage is set for the collection being switched.
func (r *Resolver) policy(forced, onPage bool, t model.PresetType) preset.SelectPolicy {
	switch {
	case forced:
		return preset.SelectAlways
	case onPage:
		return preset.SelectNever
	case r.showIncompatible != nil && r.showIncompatible(t):
		return preset.SelectOnlyIfWasCompatible
	}
	return preset.SelectAlways
}

// UpdateCompatible flags print and filament presets (or their SLA
// counterparts) against the edited printer and edited print, and applies the
// policies to their selections. The printer's default profiles are preferred
// as replacements. It returns the collections whose selection changed.
func (r *Resolver) UpdateCompatible(printPolicy, filamentPolicy preset.SelectPolicy) []model.PresetType {
	printer := r.collections[model.TypePrinter].EditedProfile()
	cfg := printer.Config

	var switched []model.PresetType
	update := func(t model.PresetType, policy preset.SelectPolicy, print *compat.Profile, preferred string) {
		if r.collections[t].UpdateCompatible(printer, print, policy, preferred) {
			switched = append(switched, t)
		}
	}

	if model.TechnologyOf(cfg) == model.TechSLA {
		update(model.TypeSLAPrint, printPolicy, nil, cfg.String("default_sla_print_profile"))
		print := r.collections[model.TypeSLAPrint].EditedProfile()
		update(model.TypeSLAMaterial, filamentPolicy, &print, cfg.String("default_sla_material_profile"))
		return switched
	}

	update(model.TypePrint, printPolicy, nil, cfg.String("default_print_profile"))
	print := r.collections[model.TypePrint].EditedProfile()
	var preferred string
	if filaments := cfg.Strings("default_filament_profile"); len(filaments) > 0 {
		preferred = filaments[0]
	}
	update(model.TypeFilament, filamentPolicy, &print, preferred)
	return switched
}
