package model

import (
	"fmt"
	"sync"
)

// PresetType identifies one of the preset categories.
type PresetType int

const (
	TypePrint PresetType = iota
	TypeFilament
	TypePrinter
	TypeSLAPrint
	TypeSLAMaterial
)

// PresetTypes returns every preset type in display order.
func PresetTypes() []PresetType {
	return []PresetType{TypePrint, TypeFilament, TypePrinter, TypeSLAPrint, TypeSLAMaterial}
}

func (t PresetType) String() string {
	switch t {
	case TypePrint:
		return "print"
	case TypeFilament:
		return "filament"
	case TypePrinter:
		return "printer"
	case TypeSLAPrint:
		return "sla_print"
	case TypeSLAMaterial:
		return "sla_material"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Title returns the human readable name of the preset type.
func (t PresetType) Title() string {
	switch t {
	case TypePrint:
		return "Print Settings"
	case TypeFilament:
		return "Filament Settings"
	case TypePrinter:
		return "Printer Settings"
	case TypeSLAPrint:
		return "SLA Print Settings"
	case TypeSLAMaterial:
		return "SLA Material Settings"
	}
	return t.String()
}

// ParsePresetType parses the String form of a preset type.
func ParsePresetType(s string) (PresetType, error) {
	for _, t := range PresetTypes() {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown preset type %q", s)
}

// Technology returns the printer technology this preset type belongs to.
// Printers belong to both and return TechAny.
func (t PresetType) Technology() Technology {
	switch t {
	case TypePrint, TypeFilament:
		return TechFFF
	case TypeSLAPrint, TypeSLAMaterial:
		return TechSLA
	}
	return TechAny
}

// DeepCompare reports whether vector options of this type are compared per
// element.
func (t PresetType) DeepCompare() bool {
	return t == TypePrinter || t == TypeSLAMaterial
}

// Technology is the printer technology.
type Technology string

const (
	TechFFF Technology = "FFF"
	TechSLA Technology = "SLA"
	TechAny Technology = ""
)

// TechnologyOf reads printer_technology from a printer config, defaulting to FFF.
func TechnologyOf(l *Layer) Technology {
	if l != nil && l.String("printer_technology") == string(TechSLA) {
		return TechSLA
	}
	return TechFFF
}

// OptionDef describes one configuration option.
type OptionDef struct {
	Key      string
	Kind     Kind
	Default  Value
	Label    string
	Category string
	Enum     []string
}

// CountField is a synthetic option whose value is the length of a group of
// vector options, such as the number of extruders.
type CountField struct {
	Key      string
	Label    string
	Category string
	Source   string
	Keys     []string
	Min      int
}

// Schema is the fixed option set of a preset type.
type Schema struct {
	Type    PresetType
	Options []OptionDef
	Counts  []CountField
	index   map[string]int
}

func newSchema(t PresetType, opts []OptionDef, counts []CountField) *Schema {
	s := &Schema{Type: t, Options: opts, Counts: counts, index: make(map[string]int, len(opts))}
	for i, o := range opts {
		s.index[o.Key] = i
	}
	return s
}

// Def returns the definition of key.
func (s *Schema) Def(key string) (OptionDef, bool) {
	i, ok := s.index[key]
	if !ok {
		return OptionDef{}, false
	}
	return s.Options[i], true
}

// Has reports whether key is a schema option.
func (s *Schema) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Count returns the count field with the given key.
func (s *Schema) Count(key string) (CountField, bool) {
	for _, c := range s.Counts {
		if c.Key == key {
			return c, true
		}
	}
	return CountField{}, false
}

// Keys returns the option keys in schema order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.Options))
	for i, o := range s.Options {
		keys[i] = o.Key
	}
	return keys
}

// Defaults returns a fresh layer holding every option's default value.
func (s *Schema) Defaults() *Layer {
	l := NewLayer()
	for _, o := range s.Options {
		l.Set(o.Key, o.Default.Clone())
	}
	return l
}

// Describe returns the label and category of key. Indexed keys get the
// 1-based element number appended to the label; unknown keys are their own
// label.
func (s *Schema) Describe(key string) (label, category string) {
	base, idx, indexed := SplitIndexedKey(key)
	if c, ok := s.Count(base); ok {
		return c.Label, c.Category
	}
	def, ok := s.Def(base)
	if !ok {
		return key, ""
	}
	label = def.Label
	if indexed {
		label = fmt.Sprintf("%s [%d]", label, idx+1)
	}
	return label, def.Category
}

// Label returns "Category > Label" for key.
func (s *Schema) Label(key string) string {
	label, category := s.Describe(key)
	if category == "" {
		return label
	}
	return category + " > " + label
}

var (
	schemasOnce sync.Once
	schemas     map[PresetType]*Schema
)

// SchemaFor returns the schema of a preset type.
func SchemaFor(t PresetType) *Schema {
	schemasOnce.Do(func() {
		schemas = map[PresetType]*Schema{
			TypePrint:       printSchema(),
			TypeFilament:    filamentSchema(),
			TypePrinter:     printerSchema(),
			TypeSLAPrint:    slaPrintSchema(),
			TypeSLAMaterial: slaMaterialSchema(),
		}
	})
	return schemas[t]
}
