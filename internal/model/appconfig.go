package model

// AppConfig holds application-wide preferences and the last selected presets.
type AppConfig struct {
	// Preset selected per type, keyed by PresetType.String().
	Selected map[string]string `json:"selected"`

	// Show incompatible presets in selectors instead of switching away from them.
	ShowIncompatible bool `json:"show_incompatible"`
	// Hide the "- default -" presets once any other preset is loaded.
	NoDefaults bool `json:"no_defaults"`

	DataDir  string `json:"data_dir,omitempty"`
	LogLevel string `json:"log_level"` // "debug", "info", "warn", "error"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Selected:         map[string]string{},
		ShowIncompatible: false,
		NoDefaults:       true,
		LogLevel:         "info",
	}
}

// SelectedPreset returns the stored selection for t.
func (c AppConfig) SelectedPreset(t PresetType) string {
	return c.Selected[t.String()]
}

// SetSelectedPreset records the selection for t.
func (c *AppConfig) SetSelectedPreset(t PresetType, name string) {
	if c.Selected == nil {
		c.Selected = map[string]string{}
	}
	c.Selected[t.String()] = name
}
