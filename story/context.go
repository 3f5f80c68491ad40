package story

import (
	"log/slog"
)

// Clock reports the current simulation frame.
type Clock interface {
	CurrentFrame() int
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	N int
}

func (c *ManualClock) CurrentFrame() int {
	if c == nil {
		return 0
	}
	return c.N
}

// Tick advances the clock by one frame and returns the new frame.
func (c *ManualClock) Tick() int {
	c.N++
	return c.N
}

// Clip describes a section of an animation to play on a track.
type Clip struct {
	Track string
	Name  string
	Start float64
	End   float64
	Loop  bool
	Speed float64
}

// Animator is the animation playback collaborator.
type Animator interface {
	Play(clip Clip) error
	Stop(track string) error
	CurrentFrame(track string) (float64, error)
}

// Sound is a short one-off sample. Pitch is picked uniformly from
// [PitchMin, PitchMax]; zero values mean 1.
type Sound struct {
	Path     string
	Volume   float64
	PitchMin float64
	PitchMax float64
	Priority int
	Loop     bool
}

// Music is a request for the global music track.
type Music struct {
	Tracks     []string
	Volume     float64
	Loop       bool
	Priority   int
	FadeFrames int
}

// SoundHandle controls a sound started by PlaySound.
type SoundHandle interface {
	Stop()
}

// Audio is the sound and music collaborator.
type Audio interface {
	PlaySound(s Sound) (SoundHandle, error)
	PlayMusic(m Music) error
	StopMusic(fadeFrames int) error
}

// Messenger shows narrative text to the player.
type Messenger interface {
	Show(text string) error
}

// Properties exposes named values on the story's owner.
type Properties interface {
	Property(name string) (any, bool)
	SetProperty(name string, value any) error
}

// ImpulseProperty is the owner property an impulse is written to, as a
// [2]float64 of x and y. The physics system applies and clears it.
const ImpulseProperty = "physics.impulse"

// Store is the save-game store collaborator.
type Store interface {
	Get(path string) (any, bool)
	Put(path string, value any) error
}

// Observer is told about every transition a Machine makes.
type Observer interface {
	Transitioned(m *Machine, from, to *State)
}

// Context carries the collaborators a story needs for one frame. Missing
// collaborators are reported as resolution errors by the actions and
// conditions that need them.
type Context struct {
	Clock      Clock
	Events     EventTransport
	Animator   Animator
	Audio      Audio
	Messages   Messenger
	Properties Properties
	Store      Store
	Observer   Observer
	Destroy    func() error
	Log        *slog.Logger

	// SharedEvents is set when the caller brackets the frame on the event
	// bus itself, so machines must not end the frame after advancing.
	SharedEvents bool

	machine string
}

// Frame returns the current simulation frame.
func (c *Context) Frame() int {
	if c == nil || c.Clock == nil {
		return 0
	}
	return c.Clock.CurrentFrame()
}

func (c *Context) logger() *slog.Logger {
	if c == nil || c.Log == nil {
		return slog.Default()
	}
	return c.Log
}
