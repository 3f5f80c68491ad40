package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

func TestTTLSystem(t *testing.T) {
	w := ecs.NewWorld()
	w.AddSystem(NewTTLSystem())

	short := ecs.CreateEntity(w)
	long := ecs.CreateEntity(w)
	expired := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, short, component.TTLComponent.Kind(), &component.TTL{Frames: 1}))
	require.NoError(t, ecs.Add(w, long, component.TTLComponent.Kind(), &component.TTL{Frames: 3}))
	require.NoError(t, ecs.Add(w, expired, component.TTLComponent.Kind(), &component.TTL{}))

	w.Update()
	assert.False(t, ecs.IsAlive(w, short))
	assert.False(t, ecs.IsAlive(w, expired))
	assert.True(t, ecs.IsAlive(w, long))

	w.Update()
	w.Update()
	assert.False(t, ecs.IsAlive(w, long))
}
