package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/piwi3910/presettab/internal/model"
)

// Event reports a change to a preset file made outside the application.
type Event struct {
	Type model.PresetType
	Name string
	Op   fsnotify.Op
}

// Removed reports whether the preset file is gone.
func (e Event) Removed() bool {
	return e.Op.Has(fsnotify.Remove) || e.Op.Has(fsnotify.Rename)
}

// Watch reports changes to preset files of every type until ctx is done.
// Missing type directories are created. The returned channel is closed when
// watching stops.
func (s *FileStore) Watch(ctx context.Context) (<-chan Event, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	for _, t := range model.PresetTypes() {
		dir := s.Dir(t)
		if err := os.MkdirAll(dir, 0755); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to create preset directory: %w", err)
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				e, ok := s.eventFor(ev)
				if !ok {
					continue
				}
				select {
				case events <- e:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("preset watcher error", "error", err)
			}
		}
	}()
	s.log.Debug("watching presets", "root", s.Root)
	return events, nil
}

func (s *FileStore) eventFor(ev fsnotify.Event) (Event, bool) {
	base := filepath.Base(ev.Name)
	name, ok := strings.CutSuffix(base, presetExt)
	if !ok || strings.HasPrefix(base, ".") {
		return Event{}, false
	}
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return Event{}, false
	}
	t, err := model.ParsePresetType(filepath.Base(filepath.Dir(ev.Name)))
	if err != nil {
		return Event{}, false
	}
	return Event{Type: t, Name: name, Op: ev.Op}, true
}
