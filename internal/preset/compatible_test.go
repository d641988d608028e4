package preset

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/piwi3910/presettab/internal/compat"
	"github.com/piwi3910/presettab/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func printer(name, modelName string) compat.Profile {
	cfg := model.SchemaFor(model.TypePrinter).Defaults()
	cfg.Set("printer_model", model.Str(modelName))
	return compat.Profile{Name: name, Config: cfg}
}

func filaments(t *testing.T) *Collection {
	t.Helper()
	c := NewCollection(model.SchemaFor(model.TypeFilament))
	onlyFor := func(m string) func(*model.Layer) {
		return func(l *model.Layer) {
			l.Set("compatible_printers_condition", model.Str(`printer_model=="`+m+`"`))
		}
	}
	require.NoError(t, c.Add(
		systemPreset(model.TypeFilament, "A MK3 PLA", onlyFor("MK3")),
		systemPreset(model.TypeFilament, "B MINI PLA", onlyFor("MINI")),
		systemPreset(model.TypeFilament, "C MINI PETG", onlyFor("MINI")),
	))
	return c
}

func TestUpdateCompatibleFlags(t *testing.T) {
	c := filaments(t)
	changed := c.UpdateCompatible(printer("Original Prusa MINI", "MINI"), nil, SelectNever, "")

	assert.False(t, changed)
	assert.False(t, c.Find("A MK3 PLA").IsCompatible)
	assert.True(t, c.Find("B MINI PLA").IsCompatible)
	assert.True(t, c.Default().IsCompatible)
}

func TestUpdateCompatiblePolicies(t *testing.T) {
	mini := printer("Original Prusa MINI", "MINI")
	mk3 := printer("Original Prusa i3 MK3", "MK3")

	t.Run("never", func(t *testing.T) {
		c := filaments(t)
		require.NoError(t, c.Select("A MK3 PLA"))
		assert.False(t, c.UpdateCompatible(mini, nil, SelectNever, ""))
		assert.Equal(t, "A MK3 PLA", c.Selected().Name)
		assert.False(t, c.Selected().IsCompatible)
	})

	t.Run("always picks first compatible", func(t *testing.T) {
		c := filaments(t)
		require.NoError(t, c.Select("A MK3 PLA"))
		assert.True(t, c.UpdateCompatible(mini, nil, SelectAlways, ""))
		assert.Equal(t, "B MINI PLA", c.Selected().Name)
	})

	t.Run("always prefers the printer default", func(t *testing.T) {
		c := filaments(t)
		require.NoError(t, c.Select("A MK3 PLA"))
		assert.True(t, c.UpdateCompatible(mini, nil, SelectAlways, "C MINI PETG"))
		assert.Equal(t, "C MINI PETG", c.Selected().Name)
	})

	t.Run("preferred must be compatible", func(t *testing.T) {
		c := filaments(t)
		require.NoError(t, c.Select("B MINI PLA"))
		assert.True(t, c.UpdateCompatible(mk3, nil, SelectAlways, "C MINI PETG"))
		assert.Equal(t, "A MK3 PLA", c.Selected().Name)
	})

	t.Run("only if was compatible", func(t *testing.T) {
		c := filaments(t)
		require.NoError(t, c.Select("A MK3 PLA"))
		c.UpdateCompatible(mk3, nil, SelectNever, "")
		require.True(t, c.Selected().IsCompatible)

		assert.True(t, c.UpdateCompatible(mini, nil, SelectOnlyIfWasCompatible, ""))
		assert.Equal(t, "B MINI PLA", c.Selected().Name)

		require.NoError(t, c.Select("A MK3 PLA"))
		c.UpdateCompatible(mini, nil, SelectNever, "")
		assert.False(t, c.UpdateCompatible(mini, nil, SelectOnlyIfWasCompatible, ""))
		assert.Equal(t, "A MK3 PLA", c.Selected().Name)
	})

	t.Run("falls back to default", func(t *testing.T) {
		c := filaments(t)
		require.NoError(t, c.Select("A MK3 PLA"))
		assert.True(t, c.UpdateCompatible(printer("Other", "XL"), nil, SelectAlways, ""))
		assert.True(t, c.Selected().IsDefault)
	})
}

func TestUpdateCompatibleLogsConditionFailures(t *testing.T) {
	var buf bytes.Buffer
	c := NewCollection(model.SchemaFor(model.TypeFilament), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, c.Add(systemPreset(model.TypeFilament, "Broken PLA", func(l *model.Layer) {
		l.Set("compatible_printers_condition", model.Str(`no_such_option > 1`))
	})))

	c.UpdateCompatible(printer("Original Prusa MINI", "MINI"), nil, SelectNever, "")

	assert.False(t, c.Find("Broken PLA").IsCompatible)
	assert.Contains(t, buf.String(), "preset=\"Broken PLA\"")
}

func TestUpdateCompatibleUsesEditedConfig(t *testing.T) {
	c := filaments(t)
	require.NoError(t, c.Select("A MK3 PLA"))
	require.NoError(t, c.SetValue("compatible_printers_condition", model.Str("")))

	c.UpdateCompatible(printer("Original Prusa MINI", "MINI"), nil, SelectNever, "")
	assert.True(t, c.Selected().IsCompatible, "the edited condition is used for the selected preset")
}

func TestVendorInheritedByUserPreset(t *testing.T) {
	vendor, err := model.NewVendorProfile("PrusaResearch", "", "1.0.0")
	require.NoError(t, err)

	c := NewCollection(model.SchemaFor(model.TypeFilament))
	sys := systemPreset(model.TypeFilament, "Prusament PLA", nil)
	sys.Vendor = vendor
	require.NoError(t, c.Add(sys, userPreset(model.TypeFilament, "My PLA", "Prusament PLA", nil)))

	assert.Same(t, vendor, c.VendorOf(c.Find("My PLA")))
	assert.Nil(t, c.VendorOf(c.Default()))

	c.UpdateCompatible(printer("Ender", "ENDER3"), nil, SelectNever, "")
	assert.False(t, c.Find("My PLA").IsCompatible, "vendor mismatch applies through the parent")
}
