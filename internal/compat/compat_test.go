package compat

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/piwi3910/presettab/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func printerProfile(name, modelName string, nozzle float64) Profile {
	cfg := model.SchemaFor(model.TypePrinter).Defaults()
	cfg.Set("printer_model", model.Str(modelName))
	cfg.Set("nozzle_diameter", model.Floats(nozzle))
	cfg.Set("printer_notes", model.Str("PRINTER_VENDOR_PRUSA3D PRINTER_MODEL_MK3"))
	return Profile{Name: name, Config: cfg}
}

func filamentProfile(name string, list []string, cond string) Profile {
	cfg := model.SchemaFor(model.TypeFilament).Defaults()
	cfg.Set("compatible_printers", model.Strings(list...))
	cfg.Set("compatible_printers_condition", model.Str(cond))
	return Profile{Name: name, Config: cfg}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`a and b or not c`, `a && b || ! c`},
		{`nozzle_diameter[0]==0.4`, `[nozzle_diameter#0]==0.4`},
		{`printer_model=="MK3"`, `printer_model=='MK3'`},
		{`printer_notes=~/.*PRUSA.*/`, `printer_notes=~ '.*PRUSA.*'`},
		{`printer_notes!~/\d+mm/`, `printer_notes!~ '\\d+mm'`},
		{`printer_model=="sand and gravel"`, `printer_model=='sand and gravel'`},
		{`a <> b`, `a != b`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Translate(tt.in), "input %q", tt.in)
	}
}

func TestEvaluate(t *testing.T) {
	cfg := printerProfile("MK3", "MK3", 0.4).Config

	tests := []struct {
		cond string
		want bool
	}{
		{`printer_model=="MK3"`, true},
		{`printer_model=="MK4"`, false},
		{`nozzle_diameter[0]==0.4`, true},
		{`nozzle_diameter==0.4 and printer_model=="MK3"`, true},
		{`nozzle_diameter[0]!=0.4 or printer_model=="MK4"`, false},
		{`printer_notes=~/.*PRINTER_VENDOR_PRUSA3D.*/`, true},
		{`printer_notes=~/.*PRINTER_MODEL_MK\d.*/`, true},
		{`not (printer_technology=="SLA")`, true},
		{`max_print_height > 150`, true},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			got, err := Evaluate(tt.cond, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	cfg := printerProfile("MK3", "MK3", 0.4).Config

	_, err := Evaluate(`unknown_option == 1`, cfg)
	assert.Error(t, err)
	_, err = Evaluate(`printer_model`, cfg)
	assert.Error(t, err, "non-bool result")
	_, err = Evaluate(`(((`, cfg)
	assert.Error(t, err)
}

func TestWithPrinterList(t *testing.T) {
	mk3 := printerProfile("Original Prusa i3 MK3", "MK3", 0.4)
	mini := printerProfile("Original Prusa MINI", "MINI", 0.4)
	fil := filamentProfile("Prusament PLA", []string{"Original Prusa i3 MK3"}, `printer_model=="MINI"`)

	assert.True(t, WithPrinter(fil, mk3))
	assert.False(t, WithPrinter(fil, mini), "the list wins over the condition")
}

func TestWithPrinterCondition(t *testing.T) {
	mk3 := printerProfile("MK3", "MK3", 0.4)
	big := printerProfile("MK3 0.6", "MK3", 0.6)
	fil := filamentProfile("PLA 0.4", nil, `nozzle_diameter[0]==0.4`)

	assert.True(t, WithPrinter(fil, mk3))
	assert.False(t, WithPrinter(fil, big))

	broken := filamentProfile("Broken", nil, `no_such_option > 1`)
	assert.False(t, WithPrinter(broken, mk3), "evaluation errors are incompatible")

	open := filamentProfile("Generic", nil, "")
	assert.True(t, WithPrinter(open, big))
}

func TestConditionFailureLogsToProfileLogger(t *testing.T) {
	mk3 := printerProfile("MK3", "MK3", 0.4)
	broken := filamentProfile("Broken", nil, `no_such_option > 1`)

	var buf bytes.Buffer
	broken.Log = slog.New(slog.NewTextHandler(&buf, nil))
	assert.False(t, WithPrinter(broken, mk3))
	assert.Contains(t, buf.String(), "compatibility condition failed")
	assert.Contains(t, buf.String(), "preset=Broken")

	broken.Log = nil
	assert.False(t, WithPrinter(broken, mk3), "a profile without a logger still evaluates")
}

func TestWithPrinterVendor(t *testing.T) {
	prusa, err := model.NewVendorProfile("PrusaResearch", "", "1.0.0")
	require.NoError(t, err)
	creality, err := model.NewVendorProfile("Creality", "", "0.1.0")
	require.NoError(t, err)

	fil := filamentProfile("Prusament PLA", nil, "")
	fil.Vendor = prusa

	printer := printerProfile("Ender 3", "ENDER3", 0.4)
	assert.False(t, WithPrinter(fil, printer), "vendor preset with a vendorless printer")

	printer.Vendor = creality
	assert.False(t, WithPrinter(fil, printer))

	printer.Vendor = prusa
	assert.True(t, WithPrinter(fil, printer))

	fil.Vendor = nil
	printer.Vendor = creality
	assert.True(t, WithPrinter(fil, printer), "user presets without vendor are unrestricted")
}

func TestWithPrint(t *testing.T) {
	printer := printerProfile("MK3", "MK3", 0.4)

	printCfg := model.SchemaFor(model.TypePrint).Defaults()
	printCfg.Set("layer_height", model.Float(0.1))
	print := Profile{Name: "0.10mm DETAIL", Config: printCfg}

	cfg := model.SchemaFor(model.TypeFilament).Defaults()
	cfg.Set("compatible_prints_condition", model.Str(`layer_height >= 0.15 and printer_model=="MK3"`))
	fil := Profile{Name: "Flex", Config: cfg}

	assert.False(t, WithPrint(fil, print, printer))
	assert.False(t, Compatible(fil, printer, &print))
	assert.True(t, Compatible(fil, printer, nil))

	printCfg.Set("layer_height", model.Float(0.2))
	assert.True(t, WithPrint(fil, print, printer))

	cfg.Set("compatible_prints", model.Strings("0.20mm QUALITY"))
	assert.False(t, WithPrint(fil, print, printer))
	print.Name = "0.20mm QUALITY"
	assert.True(t, WithPrint(fil, print, printer))
}

func TestDefaultPresetIsAlwaysCompatible(t *testing.T) {
	fil := filamentProfile("- default -", []string{"Other"}, "")
	fil.IsDefault = true
	assert.True(t, WithPrinter(fil, printerProfile("MK3", "MK3", 0.4)))
}

func TestParameters(t *testing.T) {
	l := model.NewLayer()
	l.Set("perimeters", model.Int(2))
	l.Set("nozzle_diameter", model.Floats(0.4, 0.6))
	l.Set("bed_shape", model.Points(model.Point2D{X: 1, Y: 2}))

	p := Parameters(l)
	assert.Equal(t, 2.0, p["perimeters"])
	assert.Equal(t, 0.4, p["nozzle_diameter"])
	assert.Equal(t, 0.6, p["nozzle_diameter#1"])
	assert.Equal(t, "1x2", p["bed_shape#0"])
	assert.Empty(t, Parameters(nil))
}
