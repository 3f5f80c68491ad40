package system

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

func TestDescribeStoryListsStateAndTracks(t *testing.T) {
	w := ecs.NewWorld()
	w.AddSystem(newStorySystem(t))

	e := spawn(t, w, `
name: lantern
root: idle
states:
  idle:
    actions:
      - play_animation: {track: glow, clip: pulse, start: 4, end: 12, loop: true}
      - play_animation: {track: body, clip: sway, start: 0, end: 30}
`)
	w.Update()

	st, _ := ecs.Get(w, e, component.StoryComponent.Kind())
	assert.Equal(t, "lantern: idle\n  body sway 0\n  glow pulse 4", describeStory(w, e, st))
}

func TestDescribeStoryWithoutActiveState(t *testing.T) {
	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)

	assert.Equal(t, "ghost: <done>", describeStory(w, e, &component.Story{Spec: "ghost"}))
}

func TestBodyRadius(t *testing.T) {
	w := ecs.NewWorld()

	plain := ecs.CreateEntity(w)
	assert.Zero(t, bodyRadius(w, plain))

	sized := ecs.CreateEntity(w)
	_ = ecs.Add(w, sized, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Radius: 4})
	assert.Equal(t, 4.0, bodyRadius(w, sized))

	unsized := ecs.CreateEntity(w)
	_ = ecs.Add(w, unsized, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Mass: 2})
	assert.Equal(t, defaultBodyRadius, bodyRadius(w, unsized))
}
