package model

func opt(key, label, category string, def Value) OptionDef {
	return OptionDef{Key: key, Kind: def.Kind, Default: def, Label: label, Category: category}
}

func enumOpt(key, label, category, def string, values ...string) OptionDef {
	return OptionDef{Key: key, Kind: KindEnum, Default: Enum(def), Label: label, Category: category, Enum: values}
}

func compatPrinters() []OptionDef {
	return []OptionDef{
		opt("compatible_printers", "Compatible printers", "Dependencies", Strings()),
		opt("compatible_printers_condition", "Compatible printers condition", "Dependencies", Str("")),
	}
}

func compatPrints() []OptionDef {
	return []OptionDef{
		opt("compatible_prints", "Compatible print profiles", "Dependencies", Strings()),
		opt("compatible_prints_condition", "Compatible print profiles condition", "Dependencies", Str("")),
	}
}

func printSchema() *Schema {
	opts := []OptionDef{
		opt("layer_height", "Layer height", "Layers and perimeters", Float(0.3)),
		opt("first_layer_height", "First layer height", "Layers and perimeters", Float(0.35)),
		opt("perimeters", "Perimeters", "Layers and perimeters", Int(3)),
		opt("top_solid_layers", "Top solid layers", "Layers and perimeters", Int(3)),
		opt("bottom_solid_layers", "Bottom solid layers", "Layers and perimeters", Int(3)),
		opt("fill_density", "Fill density", "Infill", Float(20)),
		enumOpt("fill_pattern", "Fill pattern", "Infill", "stars",
			"rectilinear", "grid", "triangles", "stars", "cubic", "gyroid", "honeycomb"),
		opt("skirts", "Loops (minimum)", "Skirt and brim", Int(1)),
		opt("brim_width", "Brim width", "Skirt and brim", Float(0)),
		opt("support_material", "Generate support material", "Support material", Bool(false)),
		opt("support_material_auto", "Auto generated supports", "Support material", Bool(true)),
		opt("support_material_buildplate_only", "Support on build plate only", "Support material", Bool(false)),
		opt("wipe_tower", "Enable wipe tower", "Multiple Extruders", Bool(false)),
		opt("perimeter_speed", "Perimeters", "Speed", Float(60)),
		opt("infill_speed", "Infill", "Speed", Float(80)),
	}
	opts = append(opts, compatPrinters()...)
	return newSchema(TypePrint, opts, nil)
}

func filamentSchema() *Schema {
	opts := []OptionDef{
		opt("filament_colour", "Color", "Filament", Strings("#29B2B2")),
		opt("filament_diameter", "Diameter", "Filament", Floats(1.75)),
		opt("extrusion_multiplier", "Extrusion multiplier", "Filament", Floats(1)),
		opt("filament_density", "Density", "Filament", Floats(0)),
		opt("filament_cost", "Cost", "Filament", Floats(0)),
		opt("filament_type", "Filament type", "Filament", Strings("PLA")),
		opt("first_layer_temperature", "First layer nozzle", "Temperature", Ints(200)),
		opt("temperature", "Other layers nozzle", "Temperature", Ints(200)),
		opt("first_layer_bed_temperature", "First layer bed", "Temperature", Ints(0)),
		opt("bed_temperature", "Other layers bed", "Temperature", Ints(0)),
		opt("fan_always_on", "Keep fan always on", "Cooling", Bools(false)),
		opt("filament_notes", "Notes", "Notes", Strings("")),
	}
	opts = append(opts, compatPrinters()...)
	opts = append(opts, compatPrints()...)
	return newSchema(TypeFilament, opts, nil)
}

// Extruder and milling vector options of the printer schema.
var (
	extruderKeys = []string{"nozzle_diameter", "retract_length", "retract_lift", "extruder_offset", "extruder_colour"}
	millingKeys  = []string{"milling_diameter", "milling_z_offset", "milling_toolchange_start_gcode"}
)

func printerSchema() *Schema {
	opts := []OptionDef{
		enumOpt("printer_technology", "Printer technology", "General", string(TechFFF), string(TechFFF), string(TechSLA)),
		opt("printer_model", "Printer model", "General", Str("")),
		opt("printer_vendor", "Printer vendor", "General", Str("")),
		opt("bed_shape", "Bed shape", "General", Points(RectBed(200, 200)...)),
		opt("max_print_height", "Max print height", "General", Float(200)),
		enumOpt("gcode_flavor", "G-code flavor", "Firmware", "reprap",
			"reprap", "marlin", "marlin2", "klipper", "sailfish", "smoothie", "no-extrusion"),
		opt("single_extruder_multi_material", "Single Extruder Multi Material", "Capabilities", Bool(false)),
		opt("nozzle_diameter", "Nozzle diameter", "Extruder", Floats(0.4)),
		opt("retract_length", "Length", "Extruder", Floats(2)),
		opt("retract_lift", "Lift Z", "Extruder", Floats(0)),
		opt("extruder_offset", "Extruder offset", "Extruder", Points(Point2D{})),
		opt("extruder_colour", "Extruder Color", "Extruder", Strings("")),
		opt("milling_diameter", "Milling diameter", "Milling", Floats()),
		opt("milling_z_offset", "Z offset", "Milling", Floats()),
		opt("milling_toolchange_start_gcode", "Toolchange start G-code", "Milling", Strings()),
		opt("default_print_profile", "Default print profile", "Dependencies", Str("")),
		opt("default_filament_profile", "Default filament profile", "Dependencies", Strings()),
		opt("default_sla_print_profile", "Default SLA print profile", "Dependencies", Str("")),
		opt("default_sla_material_profile", "Default SLA material profile", "Dependencies", Str("")),
		opt("display_width", "Display width", "Display", Float(120)),
		opt("display_height", "Display height", "Display", Float(68)),
		opt("display_pixels_x", "Pixels X", "Display", Int(2560)),
		opt("display_pixels_y", "Pixels Y", "Display", Int(1440)),
		opt("printer_notes", "Printer notes", "Notes", Str("")),
	}
	counts := []CountField{
		{Key: "extruders_count", Label: "Extruders", Category: "General", Source: "nozzle_diameter", Keys: extruderKeys, Min: 1},
		{Key: "milling_count", Label: "Milling cutters", Category: "General", Source: "milling_diameter", Keys: millingKeys, Min: 0},
	}
	return newSchema(TypePrinter, opts, counts)
}

func slaPrintSchema() *Schema {
	opts := []OptionDef{
		opt("layer_height", "Layer height", "Layers and perimeters", Float(0.05)),
		opt("faded_layers", "Faded layers", "Layers and perimeters", Int(10)),
		opt("supports_enable", "Generate supports", "Supports", Bool(true)),
		opt("support_head_front_diameter", "Pinhead front diameter", "Supports", Float(0.4)),
		opt("support_buildplate_only", "Support on build plate only", "Supports", Bool(false)),
		opt("pad_enable", "Use pad", "Pad", Bool(true)),
		opt("pad_wall_thickness", "Pad wall thickness", "Pad", Float(2)),
		opt("pad_around_object", "Pad around object", "Pad", Bool(false)),
		opt("hollowing_enable", "Hollow the model", "Hollowing", Bool(false)),
	}
	opts = append(opts, compatPrinters()...)
	return newSchema(TypeSLAPrint, opts, nil)
}

func slaMaterialSchema() *Schema {
	opts := []OptionDef{
		opt("material_type", "SLA material type", "Material", Str("Tough")),
		opt("initial_layer_height", "Initial layer height", "Material", Float(0.3)),
		opt("bottle_cost", "Bottle cost", "Material", Float(0)),
		opt("exposure_time", "Exposure time", "Exposure", Float(10)),
		opt("initial_exposure_time", "Initial exposure time", "Exposure", Float(15)),
		opt("material_correction", "Correction for expansion", "Corrections", Floats(1, 1, 1)),
		opt("material_print_speed", "Print speed", "Material print profile", Str("fast")),
	}
	opts = append(opts, compatPrinters()...)
	opts = append(opts, compatPrints()...)
	return newSchema(TypeSLAMaterial, opts, nil)
}
