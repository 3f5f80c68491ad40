package system

import (
	"log/slog"
	"math/rand"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
	"github.com/milk9111/storyline/story"
)

const (
	// TransitionEventType is pushed on the world event queue for every story
	// transition, with a TransitionEvent as data.
	TransitionEventType = "story.transition"
	// MessageEventType is pushed for every message a story shows, with the
	// message entity as data.
	MessageEventType = "story.message"

	defaultMessageFrames = 180
)

// TransitionEvent describes one story transition.
type TransitionEvent struct {
	Entity  ecs.Entity
	Machine string
	From    string
	To      string
}

// StorySystem advances every Story component once per frame. All machines
// share one event bus, so an event sent by one story is visible to every
// story advanced later in the same frame, and events sent from outside the
// world between frames are delivered on the next frame.
type StorySystem struct {
	bus           *story.EventBus
	log           *slog.Logger
	rng           *rand.Rand
	exists        func(path string) bool
	observer      story.Observer
	messageFrames int

	hooked     bool
	pending    []ecs.Entity
	messageSeq int
}

type StoryOption func(*StorySystem)

// WithStoryLogger sets the logger handed to every machine.
func WithStoryLogger(log *slog.Logger) StoryOption {
	return func(s *StorySystem) { s.log = log }
}

// WithAssetCheck makes sound and music requests for paths that fail check
// report an error to the story instead of queueing a request.
func WithAssetCheck(check func(path string) bool) StoryOption {
	return func(s *StorySystem) { s.exists = check }
}

// WithObserver adds an observer told about every transition, after the
// world event has been pushed.
func WithObserver(o story.Observer) StoryOption {
	return func(s *StorySystem) { s.observer = o }
}

// WithRand sets the source used to pick sound pitches.
func WithRand(rng *rand.Rand) StoryOption {
	return func(s *StorySystem) { s.rng = rng }
}

// WithMessageFrames sets how long story messages stay on screen.
func WithMessageFrames(frames int) StoryOption {
	return func(s *StorySystem) { s.messageFrames = frames }
}

func NewStorySystem(opts ...StoryOption) *StorySystem {
	s := &StorySystem{
		bus:           story.NewEventBus(nil),
		log:           slog.Default(),
		rng:           rand.New(rand.NewSource(1)),
		messageFrames: defaultMessageFrames,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the bus shared by all stories. Events sent on it from
// outside the world, such as player input, are delivered on the next frame.
func (s *StorySystem) Events() *story.EventBus {
	return s.bus
}

// Send queues an event for every story.
func (s *StorySystem) Send(subject string, body any, delay int) {
	s.bus.Send(story.Event{Subject: subject, Body: body}, delay)
}

func (s *StorySystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if !s.hooked {
		w.OnDestroy(s.abort)
		s.hooked = true
	}

	s.bus.BeginFrame(w.Frame())
	ecs.ForEach(w, component.StoryComponent.Kind(), func(e ecs.Entity, st *component.Story) {
		if st == nil || st.Machine.Dormant() {
			return
		}
		st.Machine.Advance(s.context(w, e))
	})
	s.bus.EndFrame()

	// Destroying while iterating would abort a machine mid-advance.
	pending := s.pending
	s.pending = nil
	for _, e := range pending {
		ecs.DestroyEntity(w, e)
	}
}

// Restart tears down and restarts the story on e.
func (s *StorySystem) Restart(w *ecs.World, e ecs.Entity) {
	st, ok := ecs.Get(w, e, component.StoryComponent.Kind())
	if !ok || st.Machine == nil {
		return
	}
	st.Machine.Restart(s.context(w, e))
}

// Replace aborts the story on e and installs m in its place. The new
// machine activates its root on the next frame.
func (s *StorySystem) Replace(w *ecs.World, e ecs.Entity, m *story.Machine) {
	st, ok := ecs.Get(w, e, component.StoryComponent.Kind())
	if !ok {
		return
	}
	if st.Machine != nil && !st.Machine.Dormant() {
		st.Machine.Abort(s.context(w, e))
	}
	st.Machine = m
}

func (s *StorySystem) abort(w *ecs.World, e ecs.Entity) {
	st, ok := ecs.Get(w, e, component.StoryComponent.Kind())
	if !ok || st.Machine.Dormant() {
		return
	}
	st.Machine.Abort(s.context(w, e))
}

func (s *StorySystem) context(w *ecs.World, e ecs.Entity) *story.Context {
	ctx := &story.Context{
		Clock:        w,
		Events:       s.bus,
		Animator:     entityAnimator{w: w, e: e},
		Audio:        worldAudio{w: w, rng: s.rng, exists: s.exists},
		Messages:     worldMessenger{w: w, e: e, frames: s.messageFrames, seq: &s.messageSeq},
		Properties:   entityProperties{w: w, e: e},
		Observer:     transitionObserver{w: w, e: e, next: s.observer},
		Destroy:      func() error { s.pending = append(s.pending, e); return nil },
		Log:          s.log.With("entity", e.String()),
		SharedEvents: true,
	}
	if store, ok := ecs.First(w, component.SaveStoreComponent.Kind()); ok {
		ctx.Store = worldStore{w: w, e: store}
	}
	return ctx
}
