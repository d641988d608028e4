package bundle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

// countRecomputes counts the status maps published by the tab's collection.
func countRecomputes(tab *Tab) *int {
	n := 0
	tab.Collection().Subscribe(func(preset.StatusMap) { n++ })
	return &n
}

func TestTabObserversRecomputeOnce(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	recomputes := countRecomputes(tab)

	var seen []string
	tab.OnChange(func(key string, v model.Value) {
		seen = append(seen, key)
		if key == "perimeters" {
			require.NoError(t, tab.SetValue("top_solid_layers", model.Int(5)))
		}
	})
	tab.OnChange(func(key string, _ model.Value) { seen = append(seen, "second:"+key) })

	require.NoError(t, tab.SetValue("perimeters", model.Int(4)))

	assert.Equal(t, 1, *recomputes)
	assert.Equal(t, []string{"perimeters", "top_solid_layers", "second:top_solid_layers", "second:perimeters"}, seen)
	assert.Equal(t, []string{"perimeters", "top_solid_layers"}, tab.Status().Modified())
}

func TestTabMirroringObserversStop(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	recomputes := countRecomputes(tab)

	mirror := map[string]string{"perimeters": "top_solid_layers", "top_solid_layers": "perimeters"}
	calls := 0
	tab.OnChange(func(key string, v model.Value) {
		calls++
		if calls > 100 {
			t.Fatalf("observer cycle did not stop after %d calls", calls)
		}
		require.NoError(t, tab.SetValue(mirror[key], v))
	})

	require.NoError(t, tab.SetValue("perimeters", model.Int(5)))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, *recomputes)
	assert.Equal(t, "5", tab.Collection().Edited().String("top_solid_layers"))
	assert.Equal(t, []string{"perimeters", "top_solid_layers"}, tab.Status().Modified())

	require.NoError(t, tab.SetValue("perimeters", model.Int(5)))
	assert.Equal(t, 2, calls, "writing the current value notifies nobody")
}

func TestTabSetValueErrors(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	recomputes := countRecomputes(tab)

	assert.ErrorIs(t, tab.SetValue("nope", model.Int(1)), preset.ErrKeyNotFound)
	assert.ErrorIs(t, tab.SetValue("perimeters", model.Float(1)), preset.ErrInvalidValue)
	assert.ErrorIs(t, tab.SetValue("fill_pattern", model.Enum("spiral")), preset.ErrInvalidValue)
	assert.False(t, tab.Collection().CurrentIsDirty())
	assert.Equal(t, 3, *recomputes, "a failed edit still republishes the unchanged status")
}

func TestTabCompatibleKeyReflagsWithoutSwitching(t *testing.T) {
	f := newFixture(t)
	filaments := f.Collection(model.TypeFilament)
	require.True(t, filaments.Selected().IsCompatible)

	require.NoError(t, f.Tab(model.TypeFilament).SetValue("compatible_printers_condition", onPrinter("MINI")))

	assert.Equal(t, "PLA MK3", filaments.Selected().Name)
	assert.False(t, filaments.Selected().IsCompatible)
}

func TestTabLoadConfig(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	recomputes := countRecomputes(tab)

	same := tab.Collection().Edited().Clone()
	require.NoError(t, tab.LoadConfig(same))
	assert.Zero(t, *recomputes, "loading an identical config changes nothing")

	cfg := model.NewLayer()
	cfg.Set("perimeters", model.Int(6))
	cfg.Set("layer_height", model.Float(0.2))
	require.NoError(t, tab.LoadConfig(cfg))
	assert.Equal(t, 1, *recomputes)
	assert.Equal(t, []string{"perimeters"}, tab.Status().Modified())

	bad := model.NewLayer()
	bad.Set("brim_width", model.Float(5))
	bad.Set("perimeters", model.Str("many"))
	assert.ErrorIs(t, tab.LoadConfig(bad), preset.ErrInvalidValue)
	assert.Equal(t, "0", tab.Collection().Edited().String("brim_width"), "nothing is applied when a value is rejected")
}

func TestTabRollBackToSaved(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	require.NoError(t, tab.SetValue("perimeters", model.Int(4)))
	require.NoError(t, tab.SetValue("brim_width", model.Float(3)))

	require.NoError(t, tab.RollBack(false, "perimeters"))
	assert.Equal(t, []string{"brim_width"}, tab.Status().Modified())

	require.NoError(t, tab.RollBack(false))
	assert.Empty(t, tab.Status().Modified())
	assert.False(t, tab.Collection().CurrentIsDirty())
}

func TestTabRollBackToSystem(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	require.NoError(t, tab.SetValue("perimeters", model.Int(4)))
	require.NoError(t, f.Save(model.TypePrint, "Mine", false))
	require.Equal(t, []string{"perimeters"}, tab.Status().NonSystem())

	require.NoError(t, tab.RollBack(true))

	st := tab.Status()
	assert.Empty(t, st.NonSystem())
	assert.Equal(t, []string{"perimeters"}, st.Modified(), "rolled back to the parent but not saved")
	assert.Equal(t, "3", tab.Collection().Edited().String("perimeters"))
}

func TestTabExtrudersCount(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrinter)
	edited := func(key string) string { return tab.Collection().Edited().String(key) }

	require.NoError(t, tab.SetValue("nozzle_diameter", model.Floats(0.6)))
	require.NoError(t, tab.SetExtrudersCount(2))

	n, err := tab.Count("extruders_count")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "0.6,0.6", edited("nozzle_diameter"), "new extruders copy the last one")
	assert.Equal(t, "2,2", edited("retract_length"))

	st := tab.Status()
	assert.False(t, st["extruders_count"].IsInitValue())
	assert.False(t, st["extruders_count"].IsSystemValue())
	assert.False(t, st["nozzle_diameter#1"].IsInitValue())
	assert.False(t, st["nozzle_diameter#0"].IsInitValue())
	assert.True(t, st["retract_length#0"].IsInitValue())

	require.NoError(t, tab.RollBack(false))
	assert.Empty(t, tab.Status().Modified())
	assert.Equal(t, "0.4", edited("nozzle_diameter"))

	assert.ErrorIs(t, tab.SetExtrudersCount(0), preset.ErrInvalidValue)
}

func TestTabMillingCount(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrinter)

	require.NoError(t, tab.SetMillingCount(1))
	assert.Len(t, tab.Collection().Edited().Strings("milling_toolchange_start_gcode"), 1)
	assert.Equal(t, "0", tab.Collection().Edited().String("milling_diameter"))
	assert.False(t, tab.Status()["milling_count"].IsInitValue())

	require.NoError(t, tab.SetMillingCount(0))
	assert.True(t, tab.Status()["milling_count"].IsInitValue())
	assert.Empty(t, tab.Status().Modified())

	_, err := f.Tab(model.TypePrint).Count("extruders_count")
	assert.ErrorIs(t, err, preset.ErrKeyNotFound)
}

func TestTabGroupStatus(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	require.NoError(t, tab.SetValue("brim_width", model.Float(2)))

	sys, mod := tab.GroupStatus("skirts", "brim_width")
	assert.False(t, sys)
	assert.True(t, mod)

	sys, mod = tab.GroupStatus("perimeters")
	assert.True(t, sys)
	assert.False(t, mod)

	var brim CategoryStatus
	for _, c := range tab.Categories() {
		if c.Name == "Skirt and brim" {
			brim = c
		}
	}
	assert.Equal(t, CategoryStatus{Name: "Skirt and brim", IsSystem: false, IsModified: true}, brim)
	assert.Equal(t, "Layers and perimeters", tab.Categories()[0].Name)
}

func TestTabGroupStatusIndexedKeys(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrinter)
	require.NoError(t, tab.SetExtrudersCount(2))

	_, mod := tab.GroupStatus("retract_lift")
	assert.True(t, mod, "the added element of a vector counts for its option")
	categories := tab.Categories()
	assert.Equal(t, "General", categories[0].Name, "count fields lead their category")
	assert.True(t, categories[0].IsModified)
}

func TestTabDescription(t *testing.T) {
	vendor, err := model.NewVendorProfile("PrusaResearch", "Prusa Research", "1.2.0")
	require.NoError(t, err)

	b := New(Options{Logger: discardLogger()})
	printer := systemPreset(model.TypePrinter, "Original Prusa MK3", map[string]model.Value{
		"printer_model":            model.Str("MK3"),
		"default_print_profile":    model.Str("0.2mm MK3"),
		"default_filament_profile": model.Strings("PLA", "PETG"),
	})
	printer.Vendor = vendor
	filament := systemPreset(model.TypeFilament, "Prusament PLA @MK3", nil)
	filament.Alias = "Prusament PLA"
	filament.Vendor = vendor
	require.NoError(t, b.Add(model.TypePrinter, printer,
		&preset.Preset{Name: "My MK3", Inherits: "Original Prusa MK3", Config: printer.Config.Clone(), IsVisible: true},
		&preset.Preset{Name: "Scratch", IsVisible: true},
	))
	require.NoError(t, b.Add(model.TypeFilament, filament))
	tab := b.Tab(model.TypePrinter)

	assert.True(t, strings.HasPrefix(tab.Description(), "This is a default preset."))
	assert.False(t, tab.CanDetach())

	_, err = b.Select(model.TypePrinter, "Original Prusa MK3")
	require.NoError(t, err)
	desc := tab.Description()
	assert.True(t, strings.HasPrefix(desc, "This is a system preset.\n\tIt can't be deleted or modified."))
	assert.Contains(t, desc, "vendor: \n\t\tPrusa Research, ver: 1.2.0")
	assert.Contains(t, desc, "printer model: \n\t\tMK3")
	assert.Contains(t, desc, "default print profile: \n\t\t0.2mm MK3")
	assert.Contains(t, desc, "default filament profile: \n\t\tPLA, PETG")

	_, err = b.Select(model.TypePrinter, "My MK3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tab.Description(), "Current preset is inherited from:\n\tOriginal Prusa MK3"))
	assert.True(t, tab.CanDetach())

	_, err = b.Select(model.TypePrinter, "Scratch")
	require.NoError(t, err)
	assert.Equal(t, "Current preset is inherited from the default preset.", tab.Description())

	_, err = b.Select(model.TypeFilament, "Prusament PLA @MK3")
	require.NoError(t, err)
	desc = b.Tab(model.TypeFilament).Description()
	assert.Contains(t, desc, "vendor: Prusa Research, ver: 1.2.0")
	assert.Contains(t, desc, "symbolic profile name: \n\t\tPrusament PLA")
}

func TestTabReloadStartsNewSession(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	first := tab.Session()
	tab.Reload()
	assert.NotEqual(t, first, tab.Session())
}

func TestTabShowIncompatible(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.ShowIncompatible = true
	b := New(Options{Logger: discardLogger(), Config: &cfg})
	assert.True(t, b.Tab(model.TypeFilament).ShowIncompatible())
	b.Tab(model.TypeFilament).SetShowIncompatible(false)
	assert.False(t, b.Tab(model.TypeFilament).ShowIncompatible())
}

func TestTabUndoRedo(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	edited := tab.Collection().Edited()

	require.NoError(t, tab.SetValue("perimeters", model.Int(4)))
	require.NoError(t, tab.SetValue("layer_height", model.Float(0.25)))
	assert.True(t, tab.CanUndo())

	label, err := tab.Undo()
	require.NoError(t, err)
	assert.Equal(t, "Set layer_height", label)
	assert.Equal(t, "0.2", edited.String("layer_height"))
	assert.Equal(t, []string{"perimeters"}, tab.Status().Modified())

	label, err = tab.Undo()
	require.NoError(t, err)
	assert.Equal(t, "Set perimeters", label)
	assert.False(t, tab.Collection().CurrentIsDirty())
	assert.Empty(t, tab.Status().Modified())

	_, err = tab.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)

	label, err = tab.Redo()
	require.NoError(t, err)
	assert.Equal(t, "Set perimeters", label)
	assert.Equal(t, "4", edited.String("perimeters"))
	assert.True(t, tab.CanRedo())

	require.NoError(t, tab.SetValue("skirts", model.Int(2)))
	assert.False(t, tab.CanRedo(), "a new edit drops the redo history")
	_, err = tab.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestTabUndoGroupsObserverEdits(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)
	tab.OnChange(func(key string, v model.Value) {
		if key == "perimeters" && v.Equal(model.Int(4)) {
			require.NoError(t, tab.SetValue("top_solid_layers", model.Int(5)))
		}
	})

	require.NoError(t, tab.SetValue("perimeters", model.Int(4)))
	assert.Equal(t, []string{"perimeters", "top_solid_layers"}, tab.Status().Modified())

	_, err := tab.Undo()
	require.NoError(t, err)
	assert.Empty(t, tab.Status().Modified())
	assert.False(t, tab.CanUndo(), "the observer edit is part of the same step")
}

func TestTabUndoSkipsFailedAndEmptyEdits(t *testing.T) {
	f := newFixture(t)
	tab := f.Tab(model.TypePrint)

	assert.Error(t, tab.SetValue("perimeters", model.Float(1)))
	require.NoError(t, tab.SetValue("perimeters", model.Int(3)))
	assert.False(t, tab.CanUndo())

	require.NoError(t, tab.SetValue("perimeters", model.Int(5)))
	require.NoError(t, tab.RollBack(false))
	label, err := tab.Undo()
	require.NoError(t, err)
	assert.Equal(t, "Roll back", label)
	assert.Equal(t, "5", tab.Collection().Edited().String("perimeters"))

	tab.Reload()
	assert.False(t, tab.CanUndo(), "a new session starts with an empty history")
}
