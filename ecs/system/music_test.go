package system

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
	"github.com/milk9111/storyline/ecs/entity"
)

func newMusicWorld(t *testing.T) (*ecs.World, *fakeVoices, *component.MusicPlayer) {
	t.Helper()
	w := ecs.NewWorld()
	voices := &fakeVoices{}
	w.AddSystem(NewMusicSystem(voices, nil, slogt.New(t)))
	e, err := entity.NewMusicPlayer(w, map[string]float64{"calm.wav": 0.4})
	require.NoError(t, err)
	player, _ := ecs.Get(w, e, component.MusicPlayerComponent.Kind())
	return w, voices, player
}

func TestMusicSystemStartsAndFades(t *testing.T) {
	w, voices, player := newMusicWorld(t)

	RequestMusic(w, "calm.wav")
	w.Update()
	assert.Equal(t, "calm.wav", player.CurrentTrack)
	calm := voices.byPath("calm.wav")[0]
	assert.True(t, calm.playing)
	assert.InDelta(t, 0.4, calm.volume, 1e-9, "track volume is the default")
	assert.Zero(t, count(w, component.MusicRequestComponent.Kind()))

	RequestMusicWithOptions(w, &component.MusicRequest{Tracks: []string{"storm.wav"}, Volume: 0.8, FadeOutFrames: 2})
	w.Update()
	assert.Equal(t, "calm.wav", player.CurrentTrack, "fading out")
	assert.InDelta(t, 0.2, calm.volume, 1e-9)

	w.Update()
	assert.Equal(t, "storm.wav", player.CurrentTrack)
	assert.False(t, calm.playing)
	assert.True(t, voices.byPath("storm.wav")[0].playing)
}

func TestMusicSystemPriority(t *testing.T) {
	w, _, player := newMusicWorld(t)

	RequestMusicWithOptions(w, &component.MusicRequest{Tracks: []string{"boss.wav"}, Priority: 3, Loop: true})
	w.Update()
	RequestMusicWithOptions(w, &component.MusicRequest{Tracks: []string{"calm.wav"}, Priority: 1})
	w.Update()
	assert.Equal(t, "boss.wav", player.CurrentTrack)
	assert.False(t, player.PendingActive)

	RequestMusicWithOptions(w, &component.MusicRequest{FadeOutFrames: 1})
	w.Update()
	assert.Empty(t, player.CurrentTrack, "stopping ignores priority")
	assert.Zero(t, player.CurrentPriority)
}

func TestMusicSystemLoopsAndEnds(t *testing.T) {
	w, voices, player := newMusicWorld(t)

	RequestMusicWithOptions(w, &component.MusicRequest{Tracks: []string{"theme.wav"}, Loop: true})
	w.Update()
	theme := voices.byPath("theme.wav")[0]
	theme.finish()
	w.Update()
	assert.True(t, theme.playing, "looping music restarts")

	RequestMusicWithOptions(w, &component.MusicRequest{Tracks: []string{"sting.wav"}, Loop: false, FadeOutFrames: 1})
	w.Update()
	sting := voices.byPath("sting.wav")[0]
	sting.finish()
	w.Update()
	assert.Empty(t, player.CurrentTrack, "one-shot music clears when done")
}

func TestMusicSystemPicksFromTracks(t *testing.T) {
	w, _, player := newMusicWorld(t)

	RequestMusicWithOptions(w, &component.MusicRequest{Tracks: []string{"a.wav", " ", "b.wav"}})
	w.Update()
	assert.Contains(t, []string{"a.wav", "b.wav"}, player.CurrentTrack)
}
