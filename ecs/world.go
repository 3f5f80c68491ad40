package ecs

import (
	"github.com/milk9111/storyline/ecs/component"
)

// System updates a world each frame.
type System interface {
	Update(w *World)
}

// DestroyHook runs before an entity's components are released.
type DestroyHook func(w *World, e Entity)

// World owns entities, components, system order and the simulation frame
// counter. It is the process-wide registry that maps entity handles to the
// state attached to them.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*componentStore
	systems  []System
	events   EventQueue
	onDelete []DestroyHook
	frame    int
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*componentStore)}
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil || s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// OnDestroy registers a hook that runs for every destroyed entity while its
// components are still attached.
func (w *World) OnDestroy(hook DestroyHook) {
	if w == nil || hook == nil {
		return
	}
	w.onDelete = append(w.onDelete, hook)
}

// Update drops the previous frame's world events, runs all systems once and
// then advances the frame counter. Events pushed during Update stay readable
// until the next call.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.events.flush()
	for _, s := range w.systems {
		if s != nil {
			s.Update(w)
		}
	}
	w.frame++
}

// Frame returns the number of completed Update calls.
func (w *World) Frame() int {
	if w == nil {
		return 0
	}
	return w.frame
}

// CurrentFrame satisfies story.Clock.
func (w *World) CurrentFrame() int {
	return w.Frame()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) store(id component.ComponentID, create bool) *componentStore {
	if w.stores == nil {
		w.stores = make(map[component.ComponentID]*componentStore)
	}
	s, ok := w.stores[id]
	if !ok && create {
		s = newComponentStore()
		w.stores[id] = s
	}
	return s
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	return w.entities.create()
}

// DestroyEntity runs destroy hooks, releases the entity's components and
// invalidates the handle. It reports false for dead or unknown handles.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, hook := range w.onDelete {
		hook(w, e)
	}
	for _, s := range w.stores {
		s.remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.list()
}
