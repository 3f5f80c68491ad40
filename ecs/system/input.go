package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/storyline/ecs"
)

// EventSender delivers story events. *StorySystem implements it.
type EventSender interface {
	Send(subject string, body any, delay int)
}

// KeyBinding turns a key or gamepad button press into a story event.
type KeyBinding struct {
	Key       ebiten.Key
	Button    ebiten.StandardGamepadButton
	HasButton bool
	Subject   string
	// Bodies are sent in turn, one per press. Empty sends no body.
	Bodies []any

	next int
}

func (b *KeyBinding) body() any {
	if len(b.Bodies) == 0 {
		return nil
	}
	body := b.Bodies[b.next%len(b.Bodies)]
	b.next++
	return body
}

type InputSystem struct {
	sender   EventSender
	bindings []*KeyBinding
	pressed  func(*KeyBinding) bool
}

func NewInputSystem(sender EventSender, bindings ...*KeyBinding) *InputSystem {
	return &InputSystem{sender: sender, bindings: bindings, pressed: justPressed}
}

func justPressed(b *KeyBinding) bool {
	if inpututil.IsKeyJustPressed(b.Key) {
		return true
	}
	if !b.HasButton {
		return false
	}
	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		return inpututil.IsStandardGamepadButtonJustPressed(gamepads[0], b.Button)
	}
	return false
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil || i.sender == nil {
		return
	}
	for _, b := range i.bindings {
		if i.pressed(b) {
			i.sender.Send(b.Subject, b.body(), 0)
		}
	}
}
