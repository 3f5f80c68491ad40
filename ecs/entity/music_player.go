package entity

import (
	"fmt"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

const (
	musicPlayerID = "music_player"
	saveStoreID   = "save_store"
)

// NewMusicPlayer spawns the global music player. trackVolumes sets the
// default volume of tracks whose requests leave it unset.
func NewMusicPlayer(w *ecs.World, trackVolumes map[string]float64) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("music player: world is nil")
	}
	volumes := make(map[string]float64, len(trackVolumes))
	for track, v := range trackVolumes {
		volumes[track] = v
	}

	ent := ecs.CreateEntity(w)
	if err := ecs.Add(w, ent, component.MusicPlayerComponent.Kind(), &component.MusicPlayer{
		Players:      make(map[string]component.Voice),
		TrackVolumes: volumes,
	}); err != nil {
		return 0, fmt.Errorf("music player: add component: %w", err)
	}
	if err := ecs.Add(w, ent, component.PersistentComponent.Kind(), &component.Persistent{ID: musicPlayerID}); err != nil {
		return 0, fmt.Errorf("music player: add component: %w", err)
	}
	return ent, nil
}

// NewSaveStore spawns the save-game store. An empty path keeps it in
// memory.
func NewSaveStore(w *ecs.World, path string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("save store: world is nil")
	}
	ent := ecs.CreateEntity(w)
	if err := ecs.Add(w, ent, component.SaveStoreComponent.Kind(), &component.SaveStore{
		Path:   path,
		Values: make(map[string]any),
	}); err != nil {
		return 0, fmt.Errorf("save store: add component: %w", err)
	}
	if err := ecs.Add(w, ent, component.PersistentComponent.Kind(), &component.Persistent{ID: saveStoreID}); err != nil {
		return 0, fmt.Errorf("save store: add component: %w", err)
	}
	return ent, nil
}

// ClearStorytellers destroys every non-persistent entity, leaving the music
// player and save store in place for a story reload.
func ClearStorytellers(w *ecs.World) {
	for _, e := range ecs.Entities(w) {
		if ecs.Has(w, e, component.PersistentComponent.Kind()) {
			continue
		}
		ecs.DestroyEntity(w, e)
	}
}
