package entity

import (
	"fmt"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
	"github.com/milk9111/storyline/prefabs"
	"github.com/milk9111/storyline/story"
	"github.com/milk9111/storyline/storyspec"
)

// LoadStoryteller loads the named story prefab and spawns it.
func LoadStoryteller(w *ecs.World, name string, reg *storyspec.Registry, opts ...story.Option) (ecs.Entity, error) {
	spec, err := prefabs.LoadStorySpec(name)
	if err != nil {
		return 0, err
	}
	return NewStoryteller(w, spec, reg, opts...)
}

// NewStoryteller spawns an entity telling the story in spec: its machine,
// animation tracks, properties, position and optional physics body. Nothing
// is added to the world when the graph does not build.
func NewStoryteller(w *ecs.World, spec *prefabs.StorySpec, reg *storyspec.Registry, opts ...story.Option) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("storyteller: world is nil")
	}
	if spec == nil {
		return 0, fmt.Errorf("storyteller: spec is nil")
	}
	m, err := storyspec.BuildMachine(spec, reg, opts...)
	if err != nil {
		return 0, fmt.Errorf("storyteller %s: %w", spec.Name, err)
	}

	ent := ecs.CreateEntity(w)
	if err := addStoryteller(w, ent, spec, m); err != nil {
		ecs.DestroyEntity(w, ent)
		return 0, fmt.Errorf("storyteller %s: %w", spec.Name, err)
	}
	return ent, nil
}

func addStoryteller(w *ecs.World, ent ecs.Entity, spec *prefabs.StorySpec, m *story.Machine) error {
	if err := ecs.Add(w, ent, component.StoryComponent.Kind(), &component.Story{Spec: spec.Name, Machine: m}); err != nil {
		return err
	}
	if err := ecs.Add(w, ent, component.StorytellerTagComponent.Kind(), &component.StorytellerTag{Name: spec.Name}); err != nil {
		return err
	}
	if err := ecs.Add(w, ent, component.TransformComponent.Kind(), &component.Transform{X: spec.Transform.X, Y: spec.Transform.Y}); err != nil {
		return err
	}
	if err := ecs.Add(w, ent, component.AnimationComponent.Kind(), animationFromSpec(spec.Tracks)); err != nil {
		return err
	}

	values := make(map[string]any, len(spec.Properties))
	for k, v := range spec.Properties {
		values[k] = v
	}
	if err := ecs.Add(w, ent, component.PropertiesComponent.Kind(), &component.Properties{Values: values}); err != nil {
		return err
	}

	if spec.Body != nil {
		body := &component.PhysicsBody{Mass: spec.Body.Mass, Radius: spec.Body.Radius}
		if err := ecs.Add(w, ent, component.PhysicsBodyComponent.Kind(), body); err != nil {
			return err
		}
	}
	return nil
}

func animationFromSpec(tracks map[string]prefabs.TrackSpec) *component.Animation {
	anim := &component.Animation{Tracks: make(map[string]*component.AnimationTrack, len(tracks))}
	for name, t := range tracks {
		speed := t.Speed
		if speed == 0 {
			speed = 1
		}
		anim.Tracks[name] = &component.AnimationTrack{
			Clip:    t.Clip,
			Start:   t.Start,
			End:     t.End,
			Frame:   t.Start,
			Speed:   speed,
			Loop:    t.Loop,
			Playing: t.Autoplay,
		}
	}
	return anim
}
