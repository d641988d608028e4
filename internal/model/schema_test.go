package model

import "testing"

func TestSchemaDefaultsCoverEveryOption(t *testing.T) {
	for _, pt := range PresetTypes() {
		s := SchemaFor(pt)
		if s == nil {
			t.Fatalf("no schema for %s", pt)
		}
		d := s.Defaults()
		if d.Len() != len(s.Options) {
			t.Errorf("%s: expected %d defaults, got %d", pt, len(s.Options), d.Len())
		}
		for _, o := range s.Options {
			if o.Default.Kind != o.Kind {
				t.Errorf("%s.%s: default kind %s does not match %s", pt, o.Key, o.Default.Kind, o.Kind)
			}
			if o.Kind == KindEnum && len(o.Enum) == 0 {
				t.Errorf("%s.%s: enum without values", pt, o.Key)
			}
		}
	}
}

func TestSchemaCountsReferenceVectorOptions(t *testing.T) {
	s := SchemaFor(TypePrinter)
	for _, c := range s.Counts {
		for _, k := range c.Keys {
			def, ok := s.Def(k)
			if !ok {
				t.Errorf("%s: unknown key %s", c.Key, k)
				continue
			}
			if !def.Kind.IsVector() {
				t.Errorf("%s: key %s is not a vector", c.Key, k)
			}
		}
		if c.Keys[0] != c.Source {
			t.Errorf("%s: source %s should be the first key", c.Key, c.Source)
		}
	}
}

func TestParsePresetType(t *testing.T) {
	for _, pt := range PresetTypes() {
		got, err := ParsePresetType(pt.String())
		if err != nil || got != pt {
			t.Errorf("round trip of %s failed: %v %v", pt, got, err)
		}
	}
	if _, err := ParsePresetType("project"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestPresetTypeTechnology(t *testing.T) {
	if TypeFilament.Technology() != TechFFF || TypeSLAMaterial.Technology() != TechSLA {
		t.Error("unexpected technology mapping")
	}
	if !TypePrinter.DeepCompare() || !TypeSLAMaterial.DeepCompare() || TypePrint.DeepCompare() {
		t.Error("deep compare must be limited to printer and sla_material")
	}
}

func TestTechnologyOf(t *testing.T) {
	cfg := SchemaFor(TypePrinter).Defaults()
	if TechnologyOf(cfg) != TechFFF {
		t.Error("default printer should be FFF")
	}
	cfg.Set("printer_technology", Enum("SLA"))
	if TechnologyOf(cfg) != TechSLA {
		t.Error("expected SLA")
	}
	if TechnologyOf(nil) != TechFFF {
		t.Error("nil config should be FFF")
	}
}

func TestSchemaLabel(t *testing.T) {
	s := SchemaFor(TypePrinter)
	tests := map[string]string{
		"nozzle_diameter":   "Extruder > Nozzle diameter",
		"nozzle_diameter#1": "Extruder > Nozzle diameter [2]",
		"extruders_count":   "General > Extruders",
		"unknown_key":       "unknown_key",
	}
	for key, want := range tests {
		if got := s.Label(key); got != want {
			t.Errorf("Label(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestVendorProfile(t *testing.T) {
	v, err := NewVendorProfile("PrusaResearch", "Prusa Research", "1.4.0")
	if err != nil {
		t.Fatalf("NewVendorProfile failed: %v", err)
	}
	if v.Version() != "1.4.0" {
		t.Errorf("expected 1.4.0, got %s", v.Version())
	}
	older, _ := NewVendorProfile("PrusaResearch", "", "1.2.3")
	if older.Name != "PrusaResearch" {
		t.Errorf("name should default to id, got %s", older.Name)
	}
	if !v.Newer(older) || older.Newer(v) {
		t.Error("version ordering is wrong")
	}
	if _, err := NewVendorProfile("X", "", "not-a-version"); err == nil {
		t.Error("expected error for bad version")
	}
	var none *VendorProfile
	if none.Version() != "" {
		t.Error("nil vendor has no version")
	}
}
