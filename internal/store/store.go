// Package store persists presets on disk: user presets as TOML files under
// <root>/<type>/<name>.toml, vendor bundles as YAML, and the application
// config as JSON.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/piwi3910/presettab/internal/model"
	"github.com/piwi3910/presettab/internal/preset"
)

// Reserved top-level keys of a preset file.
const (
	keyInherits = "inherits"
	keyAlias    = "alias"
)

const presetExt = ".toml"

// FileStore reads and writes user presets below Root.
type FileStore struct {
	Root string
	log  *slog.Logger
}

// NewFileStore returns a store rooted at root.
func NewFileStore(root string, log *slog.Logger) *FileStore {
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{Root: root, log: log}
}

// Dir returns the directory holding presets of type t.
func (s *FileStore) Dir(t model.PresetType) string {
	return filepath.Join(s.Root, t.String())
}

// Path returns the file of preset name of type t.
func (s *FileStore) Path(t model.PresetType, name string) string {
	return filepath.Join(s.Dir(t), name+presetExt)
}

// WritePreset stores p atomically. An existing file is left untouched when
// the write fails.
func (s *FileStore) WritePreset(t model.PresetType, p *preset.Preset) error {
	data, err := EncodePreset(p)
	if err != nil {
		return err
	}
	path := s.Path(t, p.Name)
	if err := writeAtomic(path, data); err != nil {
		return err
	}
	s.log.Debug("preset written", "type", t, "preset", p.Name, "path", path)
	return nil
}

// DeletePreset removes the file of preset name. A missing file is not an
// error.
func (s *FileStore) DeletePreset(t model.PresetType, name string) error {
	path := s.Path(t, name)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete preset file: %w", err)
	}
	s.log.Debug("preset file removed", "type", t, "preset", name, "path", path)
	return nil
}

// LoadPresets reads every preset file of type t. A missing directory yields
// no presets. Files that fail to load are skipped and reported together in
// the returned error.
func (s *FileStore) LoadPresets(t model.PresetType, schema *model.Schema) ([]*preset.Preset, error) {
	entries, err := os.ReadDir(s.Dir(t))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s presets: %w", t, err)
	}

	var (
		presets []*preset.Preset
		errs    []error
	)
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), presetExt)
		if e.IsDir() || !ok || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p, err := s.ReadPreset(t, schema, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		presets = append(presets, p)
	}
	s.log.Debug("presets loaded", "type", t, "count", len(presets), "failed", len(errs))
	return presets, errors.Join(errs...)
}

// ReadPreset reads a single preset file.
func (s *FileStore) ReadPreset(t model.PresetType, schema *model.Schema, name string) (*preset.Preset, error) {
	data, err := os.ReadFile(s.Path(t, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s preset %q: %w", t, name, err)
	}
	p, err := DecodePreset(name, schema, data)
	if err != nil {
		return nil, fmt.Errorf("%s preset %q: %w", t, name, err)
	}
	return p, nil
}

// EncodePreset renders p as TOML.
func EncodePreset(p *preset.Preset) ([]byte, error) {
	doc := map[string]any{}
	if p.Inherits != "" {
		doc[keyInherits] = p.Inherits
	}
	if p.Alias != "" {
		doc[keyAlias] = p.Alias
	}
	for _, key := range p.Config.Keys() {
		v, _ := p.Config.Get(key)
		doc[key] = model.Raw(v)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode preset %q: %w", p.Name, err)
	}
	return buf.Bytes(), nil
}

// DecodePreset parses a TOML preset. Options missing from the file keep the
// schema defaults; unknown options are ignored.
func DecodePreset(name string, schema *model.Schema, data []byte) (*preset.Preset, error) {
	var doc map[string]any
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse preset file: %w", err)
	}
	p := &preset.Preset{Name: name, IsVisible: true, IsCompatible: true}
	var err error
	p.Inherits, p.Alias, p.Config, err = decodeConfig(schema, doc)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// decodeConfig splits the reserved keys off doc and coerces the options
// onto the schema defaults.
func decodeConfig(schema *model.Schema, doc map[string]any) (inherits, alias string, cfg *model.Layer, err error) {
	cfg = schema.Defaults()
	if err := applyRaw(cfg, schema, doc); err != nil {
		return "", "", nil, err
	}
	inherits, err = reservedString(doc, keyInherits)
	if err != nil {
		return "", "", nil, err
	}
	alias, err = reservedString(doc, keyAlias)
	if err != nil {
		return "", "", nil, err
	}
	return inherits, alias, cfg, nil
}

func reservedString(doc map[string]any, key string) (string, error) {
	raw, ok := doc[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, raw)
	}
	return s, nil
}

// applyRaw coerces every schema option present in doc into cfg.
func applyRaw(cfg *model.Layer, schema *model.Schema, doc map[string]any) error {
	for key, raw := range doc {
		def, ok := schema.Def(key)
		if !ok {
			continue
		}
		v, err := model.Coerce(def.Kind, raw)
		if err != nil {
			return fmt.Errorf("option %s: %w", key, err)
		}
		cfg.Set(key, v)
	}
	return nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
