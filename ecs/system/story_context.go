package system

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
	"github.com/milk9111/storyline/story"
)

// ErrMissingAsset is returned when a story asks for a sound or music file
// that does not exist.
var ErrMissingAsset = errors.New("system: asset not found")

type entityAnimator struct {
	w *ecs.World
	e ecs.Entity
}

func (a entityAnimator) Play(clip story.Clip) error {
	anim, ok := ecs.Get(a.w, a.e, component.AnimationComponent.Kind())
	if !ok {
		anim = &component.Animation{}
		if err := ecs.Add(a.w, a.e, component.AnimationComponent.Kind(), anim); err != nil {
			return err
		}
	}
	track, _ := anim.Track(clip.Track, true)
	speed := clip.Speed
	if speed == 0 {
		speed = 1
	}
	if track.Playing && track.Clip == clip.Name && track.Start == clip.Start &&
		track.End == clip.End && track.Loop == clip.Loop {
		// Re-applying the running clip keeps its position.
		track.Speed = speed
		return nil
	}
	*track = component.AnimationTrack{
		Clip:    clip.Name,
		Start:   clip.Start,
		End:     clip.End,
		Frame:   clip.Start,
		Speed:   speed,
		Loop:    clip.Loop,
		Playing: true,
	}
	return nil
}

func (a entityAnimator) Stop(name string) error {
	track, err := a.track(name)
	if err != nil {
		return err
	}
	track.Playing = false
	return nil
}

func (a entityAnimator) CurrentFrame(name string) (float64, error) {
	track, err := a.track(name)
	if err != nil {
		return 0, err
	}
	return track.Frame, nil
}

func (a entityAnimator) track(name string) (*component.AnimationTrack, error) {
	anim, _ := ecs.Get(a.w, a.e, component.AnimationComponent.Kind())
	track, ok := anim.Track(name, false)
	if !ok {
		return nil, fmt.Errorf("%w: %s", story.ErrUnknownTrack, name)
	}
	return track, nil
}

type worldAudio struct {
	w      *ecs.World
	rng    *rand.Rand
	exists func(string) bool
}

func (a worldAudio) PlaySound(s story.Sound) (story.SoundHandle, error) {
	if a.exists != nil && !a.exists(s.Path) {
		return nil, fmt.Errorf("%w: %s", ErrMissingAsset, s.Path)
	}
	lo, hi := s.PitchMin, s.PitchMax
	if lo == 0 {
		lo = 1
	}
	if hi == 0 {
		hi = lo
	}
	pitch := lo
	if hi > lo && a.rng != nil {
		pitch = lo + a.rng.Float64()*(hi-lo)
	}

	e := ecs.CreateEntity(a.w)
	err := ecs.Add(a.w, e, component.SoundRequestComponent.Kind(), &component.SoundRequest{
		Path:     s.Path,
		Volume:   s.Volume,
		Pitch:    pitch,
		Priority: s.Priority,
		Loop:     s.Loop,
	})
	if err != nil {
		return nil, err
	}
	return soundHandle{w: a.w, e: e}, nil
}

func (a worldAudio) PlayMusic(m story.Music) error {
	for _, track := range m.Tracks {
		if a.exists != nil && !a.exists(track) {
			return fmt.Errorf("%w: %s", ErrMissingAsset, track)
		}
	}
	RequestMusicWithOptions(a.w, &component.MusicRequest{
		Tracks:        append([]string(nil), m.Tracks...),
		Volume:        m.Volume,
		Loop:          m.Loop,
		Priority:      m.Priority,
		FadeOutFrames: m.FadeFrames,
	})
	return nil
}

func (a worldAudio) StopMusic(fadeFrames int) error {
	RequestMusicWithOptions(a.w, &component.MusicRequest{FadeOutFrames: fadeFrames})
	return nil
}

type soundHandle struct {
	w *ecs.World
	e ecs.Entity
}

// Stop ends the sound. The request entity may already be gone, in which case
// there is nothing to do.
func (h soundHandle) Stop() {
	if req, ok := ecs.Get(h.w, h.e, component.SoundRequestComponent.Kind()); ok {
		req.Stop = true
	}
}

type worldMessenger struct {
	w      *ecs.World
	e      ecs.Entity
	frames int
	seq    *int
}

func (m worldMessenger) Show(text string) error {
	speaker := ""
	if tag, ok := ecs.Get(m.w, m.e, component.StorytellerTagComponent.Kind()); ok {
		speaker = tag.Name
	}
	*m.seq++
	ent := ecs.CreateEntity(m.w)
	if err := ecs.Add(m.w, ent, component.MessageComponent.Kind(), &component.Message{
		Text:    text,
		Speaker: speaker,
		Frame:   m.w.Frame(),
		Seq:     *m.seq,
	}); err != nil {
		return err
	}
	if m.frames > 0 {
		_ = ecs.Add(m.w, ent, component.TTLComponent.Kind(), &component.TTL{Frames: m.frames})
	}
	m.w.Events().Push(ecs.Event{Type: MessageEventType, Data: ent})
	return nil
}

type entityProperties struct {
	w *ecs.World
	e ecs.Entity
}

func (p entityProperties) Property(name string) (any, bool) {
	props, ok := ecs.Get(p.w, p.e, component.PropertiesComponent.Kind())
	if !ok {
		return nil, false
	}
	v, ok := props.Values[name]
	return v, ok
}

func (p entityProperties) SetProperty(name string, value any) error {
	props, ok := ecs.Get(p.w, p.e, component.PropertiesComponent.Kind())
	if !ok {
		props = &component.Properties{}
		if err := ecs.Add(p.w, p.e, component.PropertiesComponent.Kind(), props); err != nil {
			return err
		}
	}
	if props.Values == nil {
		props.Values = make(map[string]any)
	}
	props.Values[name] = value
	return nil
}

type worldStore struct {
	w *ecs.World
	e ecs.Entity
}

func (s worldStore) Get(path string) (any, bool) {
	store, ok := ecs.Get(s.w, s.e, component.SaveStoreComponent.Kind())
	if !ok {
		return nil, false
	}
	v, ok := store.Values[path]
	return v, ok
}

func (s worldStore) Put(path string, value any) error {
	store, ok := ecs.Get(s.w, s.e, component.SaveStoreComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: save store", story.ErrMissingCollaborator)
	}
	if store.Values == nil {
		store.Values = make(map[string]any)
	}
	if old, ok := store.Values[path]; ok && reflect.DeepEqual(old, value) {
		return nil
	}
	store.Values[path] = value
	store.Dirty = true
	return nil
}

type transitionObserver struct {
	w    *ecs.World
	e    ecs.Entity
	next story.Observer
}

func (o transitionObserver) Transitioned(m *story.Machine, from, to *story.State) {
	evt := TransitionEvent{Entity: o.e, Machine: m.Name()}
	if from != nil {
		evt.From = from.Name
	}
	if to != nil {
		evt.To = to.Name
	}
	o.w.Events().Push(ecs.Event{Type: TransitionEventType, Data: evt})
	if o.next != nil {
		o.next.Transitioned(m, from, to)
	}
}
