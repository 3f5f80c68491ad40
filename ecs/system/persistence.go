package system

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

const defaultSaveInterval = 60

// PersistenceSystem loads the SaveStore from disk on its first update and
// writes it back, at most once every interval frames, whenever it is dirty.
// A store with an empty Path lives in memory only.
type PersistenceSystem struct {
	interval    int
	log         *slog.Logger
	initialized bool
	lastSave    int
}

func NewPersistenceSystem(interval int, log *slog.Logger) *PersistenceSystem {
	if interval <= 0 {
		interval = defaultSaveInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &PersistenceSystem{interval: interval, log: log}
}

func (p *PersistenceSystem) Update(w *ecs.World) {
	if p == nil || w == nil {
		return
	}
	ent, ok := ecs.First(w, component.SaveStoreComponent.Kind())
	if !ok {
		return
	}
	store, _ := ecs.Get(w, ent, component.SaveStoreComponent.Kind())

	if !p.initialized {
		p.initialized = true
		if err := LoadSaveStore(store); err != nil {
			p.log.Warn("persistence: load failed", "path", store.Path, "error", err)
		}
		p.lastSave = w.Frame()
		return
	}

	if !store.Dirty || w.Frame()-p.lastSave < p.interval {
		return
	}
	if err := WriteSaveStore(store); err != nil {
		p.log.Warn("persistence: save failed", "path", store.Path, "error", err)
	}
	p.lastSave = w.Frame()
}

// Flush writes the store immediately if it has unsaved changes.
func (p *PersistenceSystem) Flush(w *ecs.World) error {
	ent, ok := ecs.First(w, component.SaveStoreComponent.Kind())
	if !ok {
		return nil
	}
	store, _ := ecs.Get(w, ent, component.SaveStoreComponent.Kind())
	if !store.Dirty {
		return nil
	}
	return WriteSaveStore(store)
}

// LoadSaveStore merges the values saved at store.Path into store. Values
// already set in memory win. A missing file is not an error.
func LoadSaveStore(store *component.SaveStore) error {
	if store == nil || store.Path == "" {
		return nil
	}
	data, err := os.ReadFile(store.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("persistence: read %s: %w", store.Path, err)
	}
	var saved map[string]any
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("persistence: decode %s: %w", store.Path, err)
	}
	if store.Values == nil {
		store.Values = make(map[string]any, len(saved))
	}
	for k, v := range saved {
		if _, ok := store.Values[k]; !ok {
			store.Values[k] = v
		}
	}
	return nil
}

// WriteSaveStore writes store to store.Path and clears Dirty.
func WriteSaveStore(store *component.SaveStore) error {
	if store == nil || store.Path == "" {
		if store != nil {
			store.Dirty = false
		}
		return nil
	}
	data, err := yaml.Marshal(store.Values)
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", store.Path, err)
	}
	if dir := filepath.Dir(store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("persistence: write %s: %w", store.Path, err)
		}
	}
	tmp := store.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("persistence: write %s: %w", store.Path, err)
	}
	if err := os.Rename(tmp, store.Path); err != nil {
		return fmt.Errorf("persistence: write %s: %w", store.Path, err)
	}
	store.Dirty = false
	return nil
}
