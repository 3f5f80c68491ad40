package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
	"github.com/milk9111/storyline/prefabs"
)

func TestLoadStorytellerBirdIntro(t *testing.T) {
	w := ecs.NewWorld()
	e, err := LoadStoryteller(w, "bird_intro", nil)
	require.NoError(t, err)

	st, ok := ecs.Get(w, e, component.StoryComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, "bird_intro", st.Spec)
	assert.Equal(t, "init", st.Machine.Root().Name)

	anim, ok := ecs.Get(w, e, component.AnimationComponent.Kind())
	require.True(t, ok)
	body := anim.Tracks["body"]
	require.NotNil(t, body)
	assert.Equal(t, component.AnimationTrack{Clip: "idle", Start: 1, End: 40, Frame: 1, Speed: 1, Loop: true, Playing: true}, *body)

	props, _ := ecs.Get(w, e, component.PropertiesComponent.Kind())
	assert.Equal(t, "calm", props.Values["mood"])

	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	assert.Equal(t, component.Transform{X: 40, Y: 60}, *tr)

	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, 8.0, pb.Radius)

	tag, _ := ecs.Get(w, e, component.StorytellerTagComponent.Kind())
	assert.Equal(t, "bird_intro", tag.Name)
}

func TestNewStorytellerBuildFailureAddsNothing(t *testing.T) {
	w := ecs.NewWorld()
	spec, err := prefabs.ParseStorySpec([]byte("name: broken\nroot: a\nstates:\n  a:\n    actions: [juggle]\n"), "broken.yaml")
	require.NoError(t, err)

	_, err = NewStoryteller(w, spec, nil)
	assert.ErrorContains(t, err, "storyteller broken")
	assert.Empty(t, ecs.Entities(w))
}

func TestClearStorytellersKeepsPersistent(t *testing.T) {
	w := ecs.NewWorld()
	music, err := NewMusicPlayer(w, nil)
	require.NoError(t, err)
	store, err := NewSaveStore(w, "")
	require.NoError(t, err)
	lamp, err := LoadStoryteller(w, "lamp", nil)
	require.NoError(t, err)

	ClearStorytellers(w)
	assert.True(t, ecs.IsAlive(w, music))
	assert.True(t, ecs.IsAlive(w, store))
	assert.False(t, ecs.IsAlive(w, lamp))
}
