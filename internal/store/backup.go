package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
	Presets   []BackupPreset  `json:"presets"`
}

// BackupPreset is one user preset file.
type BackupPreset struct {
	Type string `json:"type"`
	Name string `json:"name"`
	TOML string `json:"toml"`
}

// ExportAllData exports the config and every user preset of fs to a single
// JSON file at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, fs *FileStore) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Presets:   []BackupPreset{},
	}
	for _, t := range model.PresetTypes() {
		presets, err := fs.LoadPresets(t, model.SchemaFor(t))
		if err != nil {
			return fmt.Errorf("failed to read %s presets: %w", t, err)
		}
		for _, p := range presets {
			data, err := EncodePreset(p)
			if err != nil {
				return err
			}
			backup.Presets = append(backup.Presets, BackupPreset{Type: t.String(), Name: p.Name, TOML: string(data)})
		}
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// Every preset is validated against its schema. The caller is responsible
// for applying the imported config and calling RestorePresets.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.Selected == nil {
		backup.Config.Selected = map[string]string{}
	}
	for _, bp := range backup.Presets {
		if _, err := bp.Decode(); err != nil {
			return BackupData{}, fmt.Errorf("invalid backup file: %w", err)
		}
	}
	return backup, nil
}

// Decode parses the preset held by bp.
func (bp BackupPreset) Decode() (*preset.Preset, error) {
	t, err := model.ParsePresetType(bp.Type)
	if err != nil {
		return nil, err
	}
	if _, err := preset.NormalizeName(bp.Name); err != nil {
		return nil, err
	}
	p, err := DecodePreset(bp.Name, model.SchemaFor(t), []byte(bp.TOML))
	if err != nil {
		return nil, fmt.Errorf("%s preset %q: %w", t, bp.Name, err)
	}
	return p, nil
}

// RestorePresets writes every preset of backup into fs, replacing presets of
// the same name.
func RestorePresets(backup BackupData, fs *FileStore) error {
	for _, bp := range backup.Presets {
		p, err := bp.Decode()
		if err != nil {
			return err
		}
		t, _ := model.ParsePresetType(bp.Type)
		if err := fs.WritePreset(t, p); err != nil {
			return fmt.Errorf("failed to restore %s preset %q: %w", t, p.Name, err)
		}
	}
	return nil
}
