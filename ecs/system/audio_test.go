package system

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

func requestSound(t *testing.T, w *ecs.World, req component.SoundRequest) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.SoundRequestComponent.Kind(), &req))
	return e
}

func TestAudioSystemPriorityArbitration(t *testing.T) {
	w := ecs.NewWorld()
	voices := &fakeVoices{}
	w.AddSystem(NewAudioSystem(voices, 1, slogt.New(t)))

	low := requestSound(t, w, component.SoundRequest{Path: "low.wav", Volume: 1, Priority: 1})
	high := requestSound(t, w, component.SoundRequest{Path: "high.wav", Volume: 1, Priority: 2})
	w.Update()

	assert.False(t, ecs.IsAlive(w, low), "lower priority is dropped when voices are busy")
	assert.True(t, ecs.IsAlive(w, high))
	require.Len(t, voices.byPath("high.wav"), 1)
	assert.Empty(t, voices.byPath("low.wav"))

	equal := requestSound(t, w, component.SoundRequest{Path: "equal.wav", Priority: 2})
	w.Update()
	assert.False(t, ecs.IsAlive(w, equal), "equal priority does not steal")

	urgent := requestSound(t, w, component.SoundRequest{Path: "urgent.wav", Priority: 5})
	w.Update()
	assert.True(t, ecs.IsAlive(w, urgent))
	assert.False(t, ecs.IsAlive(w, high), "higher priority steals the voice")
	assert.False(t, voices.byPath("high.wav")[0].playing)
}

func TestAudioSystemLifecycle(t *testing.T) {
	w := ecs.NewWorld()
	voices := &fakeVoices{}
	w.AddSystem(NewAudioSystem(voices, 0, slogt.New(t)))

	once := requestSound(t, w, component.SoundRequest{Path: "once.wav", Volume: 2, Pitch: 1.2})
	loop := requestSound(t, w, component.SoundRequest{Path: "loop.wav", Volume: 0.5, Loop: true})
	broken := requestSound(t, w, component.SoundRequest{Path: "missing.wav"})
	w.Update()

	assert.False(t, ecs.IsAlive(w, broken))
	v := voices.byPath("once.wav")[0]
	assert.Equal(t, 1.2, v.pitch)
	assert.Equal(t, 1.0, v.volume, "volume is clamped")

	v.finish()
	voices.byPath("loop.wav")[0].finish()
	w.Update()
	assert.False(t, ecs.IsAlive(w, once), "finished sounds are removed")
	assert.True(t, ecs.IsAlive(w, loop))
	assert.Equal(t, 2, voices.byPath("loop.wav")[0].plays)

	req, _ := ecs.Get(w, loop, component.SoundRequestComponent.Kind())
	req.Stop = true
	w.Update()
	assert.False(t, ecs.IsAlive(w, loop))
	assert.False(t, voices.byPath("loop.wav")[0].playing)
}
