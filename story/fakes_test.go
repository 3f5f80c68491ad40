package story

import (
	"fmt"
	"testing"

	"github.com/neilotoole/slogt"
)

type fakeAnimator struct {
	frames  map[string]float64
	played  []Clip
	stopped []string
}

func (a *fakeAnimator) Play(clip Clip) error {
	a.played = append(a.played, clip)
	if _, ok := a.frames[clip.Track]; !ok {
		a.frames[clip.Track] = clip.Start
	}
	return nil
}

func (a *fakeAnimator) Stop(track string) error {
	a.stopped = append(a.stopped, track)
	return nil
}

func (a *fakeAnimator) CurrentFrame(track string) (float64, error) {
	f, ok := a.frames[track]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTrack, track)
	}
	return f, nil
}

type fakeHandle struct {
	stopped bool
}

func (h *fakeHandle) Stop() { h.stopped = true }

type fakeAudio struct {
	sounds  []Sound
	handles []*fakeHandle
	music   []Music
	stops   []int
	missing map[string]bool
}

func (a *fakeAudio) PlaySound(s Sound) (SoundHandle, error) {
	if a.missing[s.Path] {
		return nil, fmt.Errorf("sound %q not found", s.Path)
	}
	a.sounds = append(a.sounds, s)
	h := &fakeHandle{}
	a.handles = append(a.handles, h)
	return h, nil
}

func (a *fakeAudio) PlayMusic(m Music) error {
	a.music = append(a.music, m)
	return nil
}

func (a *fakeAudio) StopMusic(fadeFrames int) error {
	a.stops = append(a.stops, fadeFrames)
	return nil
}

type fakeMessages struct {
	lines []string
}

func (m *fakeMessages) Show(text string) error {
	m.lines = append(m.lines, text)
	return nil
}

type mapProps map[string]any

func (p mapProps) Property(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

func (p mapProps) SetProperty(name string, value any) error {
	p[name] = value
	return nil
}

type mapStore map[string]any

func (s mapStore) Get(path string) (any, bool) {
	v, ok := s[path]
	return v, ok
}

func (s mapStore) Put(path string, value any) error {
	s[path] = value
	return nil
}

type observedTransition struct {
	from, to string
}

type fakeObserver struct {
	seen []observedTransition
}

func (o *fakeObserver) Transitioned(_ *Machine, from, to *State) {
	o.seen = append(o.seen, observedTransition{from: from.Name, to: to.Name})
}

type harness struct {
	clock *ManualClock
	bus   *EventBus
	anim  *fakeAnimator
	audio *fakeAudio
	msgs  *fakeMessages
	props mapProps
	store mapStore
	obs   *fakeObserver
	ctx   *Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock: &ManualClock{},
		anim:  &fakeAnimator{frames: map[string]float64{}},
		audio: &fakeAudio{missing: map[string]bool{}},
		msgs:  &fakeMessages{},
		props: mapProps{},
		store: mapStore{},
		obs:   &fakeObserver{},
	}
	h.bus = NewEventBus(h.clock)
	h.ctx = &Context{
		Clock:      h.clock,
		Events:     h.bus,
		Animator:   h.anim,
		Audio:      h.audio,
		Messages:   h.msgs,
		Properties: h.props,
		Store:      h.store,
		Observer:   h.obs,
		Log:        slogt.New(t),
	}
	return h
}

// step advances m at the current frame and then moves the clock on.
func (h *harness) step(m *Machine) {
	m.Advance(h.ctx)
	h.clock.Tick()
}

// record returns an action that appends name to log.
func record(log *[]string, name string) Action {
	return Do(name, func(*Context) { *log = append(*log, name) })
}

func mustMachine(t *testing.T, root *State, opts ...Option) *Machine {
	t.Helper()
	m, err := NewMachine(root, opts...)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}
