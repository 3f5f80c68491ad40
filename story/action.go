package story

import (
	"fmt"
	"math"
	"strings"

	"github.com/milk9111/storyline/common"
)

// Action is a side effect fired when a state becomes active.
type Action interface {
	Apply(ctx *Context) error
	String() string
}

// Continuous actions are re-applied on every frame their state stays active,
// after the entry frame.
type Continuous interface {
	Continuous() bool
}

// Stopper actions own something that outlives Apply (a looping sound, say)
// and release it when their state is deactivated.
type Stopper interface {
	Stop(ctx *Context)
}

// IsContinuous reports whether a re-applies each frame.
func IsContinuous(a Action) bool {
	c, ok := a.(Continuous)
	return ok && c.Continuous()
}

type every struct{ Action }

// Every marks an action as continuous.
func Every(a Action) Action { return every{Action: a} }

func (every) Continuous() bool { return true }

func (a every) Stop(ctx *Context) {
	if s, ok := a.Action.(Stopper); ok {
		s.Stop(ctx)
	}
}

func (a every) String() string { return "Every(" + a.Action.String() + ")" }

// PlayAnimation plays a clip on an animation track.
type PlayAnimation struct {
	Clip
}

// Play returns a PlayAnimation for frames start..end of the named action.
func Play(track, name string, start, end float64) *PlayAnimation {
	return &PlayAnimation{Clip: Clip{Track: track, Name: name, Start: start, End: end}}
}

// Loop returns a looping PlayAnimation.
func Loop(track, name string, start, end float64) *PlayAnimation {
	return &PlayAnimation{Clip: Clip{Track: track, Name: name, Start: start, End: end, Loop: true}}
}

func (a *PlayAnimation) Apply(ctx *Context) error {
	if ctx.Animator == nil {
		return missing("animator")
	}
	return ctx.Animator.Play(a.Clip)
}

func (a *PlayAnimation) String() string {
	return fmt.Sprintf("PlayAnimation(%s: %s, %g -> %g)", a.Track, a.Name, a.Start, a.End)
}

// StopAnimation stops whatever plays on a track.
type StopAnimation struct {
	Track string
}

func (a *StopAnimation) Apply(ctx *Context) error {
	if ctx.Animator == nil {
		return missing("animator")
	}
	return ctx.Animator.Stop(a.Track)
}

func (a *StopAnimation) String() string { return fmt.Sprintf("StopAnimation(%s)", a.Track) }

// SoundAction plays a sample. A looping sound is started once and keeps
// playing until the state that started it is deactivated, however often the
// action is re-applied in between.
type SoundAction struct {
	Sound Sound

	loop SoundHandle
}

func PlaySound(s Sound) *SoundAction {
	return &SoundAction{Sound: s}
}

func (a *SoundAction) Apply(ctx *Context) error {
	if ctx.Audio == nil {
		return missing("audio")
	}
	if a.Sound.Loop && a.loop != nil {
		return nil
	}
	h, err := ctx.Audio.PlaySound(a.Sound)
	if err != nil {
		return err
	}
	if a.Sound.Loop {
		a.loop = h
	}
	return nil
}

func (a *SoundAction) Stop(*Context) {
	if a.loop != nil {
		a.loop.Stop()
		a.loop = nil
	}
}

func (a *SoundAction) String() string { return fmt.Sprintf("PlaySound(%s)", a.Sound.Path) }

// MusicAction switches the music track. The previous track fades out.
type MusicAction struct {
	Music Music
}

func PlayMusic(m Music) *MusicAction { return &MusicAction{Music: m} }

func (a *MusicAction) Apply(ctx *Context) error {
	if ctx.Audio == nil {
		return missing("audio")
	}
	return ctx.Audio.PlayMusic(a.Music)
}

func (a *MusicAction) String() string {
	return fmt.Sprintf("PlayMusic(%s)", strings.Join(a.Music.Tracks, ", "))
}

// StopMusic fades the current music track out.
type StopMusic struct {
	FadeFrames int
}

func (a *StopMusic) Apply(ctx *Context) error {
	if ctx.Audio == nil {
		return missing("audio")
	}
	return ctx.Audio.StopMusic(a.FadeFrames)
}

func (a *StopMusic) String() string { return "StopMusic()" }

// SendEvent sends an event, Delay frames from now.
type SendEvent struct {
	Subject string
	Body    any
	Delay   int
}

// Emit is shorthand for a same-frame SendEvent.
func Emit(subject string, body any) *SendEvent {
	return &SendEvent{Subject: subject, Body: body}
}

// EmitAfter is shorthand for a delayed SendEvent.
func EmitAfter(subject string, body any, delay int) *SendEvent {
	return &SendEvent{Subject: subject, Body: body, Delay: delay}
}

func (a *SendEvent) Apply(ctx *Context) error {
	if ctx.Events == nil {
		return missing("events")
	}
	ctx.Events.Send(Event{Subject: a.Subject, Body: a.Body}, a.Delay)
	return nil
}

func (a *SendEvent) String() string {
	if a.Delay > 0 {
		return fmt.Sprintf("SendEvent(%s, %v, +%d)", a.Subject, a.Body, a.Delay)
	}
	return fmt.Sprintf("SendEvent(%s, %v)", a.Subject, a.Body)
}

// ShowMessage shows narrative text.
type ShowMessage struct {
	Text string
}

func Say(text string) *ShowMessage { return &ShowMessage{Text: text} }

func (a *ShowMessage) Apply(ctx *Context) error {
	if ctx.Messages == nil {
		return missing("messages")
	}
	return ctx.Messages.Show(a.Text)
}

func (a *ShowMessage) String() string { return fmt.Sprintf("ShowMessage(%q)", a.Text) }

// SetProperty writes a property on the story's owner.
type SetProperty struct {
	Name  string
	Value any
}

func (a *SetProperty) Apply(ctx *Context) error {
	if ctx.Properties == nil {
		return missing("properties")
	}
	return ctx.Properties.SetProperty(a.Name, a.Value)
}

func (a *SetProperty) String() string { return fmt.Sprintf("SetProperty(%s <- %v)", a.Name, a.Value) }

// LerpProperty moves a numeric property from From towards To by
// (To-From)/Frames on each frame. An unset property starts at From. With
// Clamp the value never leaves [From, To].
type LerpProperty struct {
	Name   string
	From   float64
	To     float64
	Frames int
	Clamp  bool
}

func (*LerpProperty) Continuous() bool { return true }

func (a *LerpProperty) Apply(ctx *Context) error {
	if ctx.Properties == nil {
		return missing("properties")
	}
	cur := a.From
	if v, ok := ctx.Properties.Property(a.Name); ok {
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("%w: %s is %T", ErrIncomparable, a.Name, v)
		}
		cur = f
	}
	frames := a.Frames
	if frames <= 0 {
		frames = 1
	}
	next := cur + (a.To-a.From)/float64(frames)
	if a.Clamp {
		next = common.Clamp(a.From, a.To, next)
	}
	return ctx.Properties.SetProperty(a.Name, next)
}

func (a *LerpProperty) String() string {
	return fmt.Sprintf("LerpProperty(%s <- %g - %g)", a.Name, a.From, a.To)
}

// FadeProperty sets a property from the position of an animation track:
// From at StartFrame, To at EndFrame, clamped in between. Use it in a sub-step
// with no conditions or wrap the owning state's action list.
type FadeProperty struct {
	Name       string
	Track      string
	From       float64
	To         float64
	StartFrame float64
	EndFrame   float64
}

func (*FadeProperty) Continuous() bool { return true }

func (a *FadeProperty) Apply(ctx *Context) error {
	if ctx.Properties == nil {
		return missing("properties")
	}
	if ctx.Animator == nil {
		return missing("animator")
	}
	cur, err := ctx.Animator.CurrentFrame(a.Track)
	if err != nil {
		return err
	}
	k := common.Clamp(0, 1, common.Unlerp(a.StartFrame, a.EndFrame, cur))
	v := common.Lerp(a.From, a.To, k)
	if math.IsNaN(v) {
		v = a.From
	}
	return ctx.Properties.SetProperty(a.Name, v)
}

func (a *FadeProperty) String() string {
	return fmt.Sprintf("FadeProperty(%s, %s %g..%g)", a.Name, a.Track, a.StartFrame, a.EndFrame)
}

// SetStore writes to the save-game store.
type SetStore struct {
	Path  string
	Value any
}

func (a *SetStore) Apply(ctx *Context) error {
	if ctx.Store == nil {
		return missing("store")
	}
	return ctx.Store.Put(a.Path, a.Value)
}

func (a *SetStore) String() string { return fmt.Sprintf("SetStore(%s <- %v)", a.Path, a.Value) }

// DestroyOwner removes the story's owner from the simulation.
type DestroyOwner struct{}

func (DestroyOwner) Apply(ctx *Context) error {
	if ctx.Destroy == nil {
		return missing("destroy")
	}
	return ctx.Destroy()
}

func (DestroyOwner) String() string { return "DestroyOwner()" }

// Callback runs a Go function.
type Callback struct {
	Name string
	Fn   func(ctx *Context) error
}

// Call wraps a fallible function as an action.
func Call(name string, fn func(ctx *Context) error) *Callback {
	return &Callback{Name: name, Fn: fn}
}

// Do wraps a function as an action.
func Do(name string, fn func(ctx *Context)) *Callback {
	return &Callback{Name: name, Fn: func(ctx *Context) error {
		fn(ctx)
		return nil
	}}
}

func (a *Callback) Apply(ctx *Context) error {
	if a.Fn == nil {
		return fmt.Errorf("story: callback %s has no function", a.Name)
	}
	return a.Fn(ctx)
}

func (a *Callback) String() string { return fmt.Sprintf("Callback(%s)", a.Name) }
