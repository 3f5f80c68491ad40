package system

import (
	"errors"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
	"github.com/milk9111/storyline/ecs/entity"
	"github.com/milk9111/storyline/prefabs"
)

type fakeVoice struct {
	path    string
	pitch   float64
	playing bool
	volume  float64
	plays   int
	pauses  int
	rewinds int
}

func (v *fakeVoice) Play() { v.playing = true; v.plays++ }
func (v *fakeVoice) Pause() { v.playing = false; v.pauses++ }
func (v *fakeVoice) Rewind() error { v.rewinds++; return nil }
func (v *fakeVoice) IsPlaying() bool { return v.playing }
func (v *fakeVoice) SetVolume(vol float64) { v.volume = vol }
func (v *fakeVoice) finish() { v.playing = false }

var errNoSuchSound = errors.New("no such sound")

type fakeVoices struct {
	loaded []*fakeVoice
}

func (f *fakeVoices) Load(path string, pitch float64) (component.Voice, error) {
	if path == "missing.wav" {
		return nil, errNoSuchSound
	}
	v := &fakeVoice{path: path, pitch: pitch}
	f.loaded = append(f.loaded, v)
	return v, nil
}

func (f *fakeVoices) byPath(path string) []*fakeVoice {
	var out []*fakeVoice
	for _, v := range f.loaded {
		if v.path == path {
			out = append(out, v)
		}
	}
	return out
}

func spawn(t *testing.T, w *ecs.World, src string) ecs.Entity {
	t.Helper()
	spec, err := prefabs.ParseStorySpec([]byte(src), t.Name()+".yaml")
	require.NoError(t, err)
	e, err := entity.NewStoryteller(w, spec, nil)
	require.NoError(t, err)
	return e
}

func activeState(t *testing.T, w *ecs.World, e ecs.Entity) string {
	t.Helper()
	st, ok := ecs.Get(w, e, component.StoryComponent.Kind())
	require.True(t, ok, "entity %v has no story", e)
	if st.Machine.Active() == nil {
		return ""
	}
	return st.Machine.Active().Name
}

func count[T any](w *ecs.World, kind component.ComponentKind[T]) int {
	n := 0
	ecs.ForEach(w, kind, func(ecs.Entity, *T) { n++ })
	return n
}

func newStorySystem(t *testing.T, opts ...StoryOption) *StorySystem {
	return NewStorySystem(append([]StoryOption{WithStoryLogger(slogt.New(t))}, opts...)...)
}
