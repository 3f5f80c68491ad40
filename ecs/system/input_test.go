package system

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"

	"github.com/milk9111/storyline/ecs"
)

type sentEvent struct {
	subject string
	body    any
}

type recordingSender struct {
	sent []sentEvent
}

func (r *recordingSender) Send(subject string, body any, delay int) {
	r.sent = append(r.sent, sentEvent{subject, body})
}

func TestInputSystemCyclesBodies(t *testing.T) {
	sender := &recordingSender{}
	sw := &KeyBinding{Key: ebiten.KeyL, Subject: "Switch", Bodies: []any{"on", "off"}}
	talk := &KeyBinding{Key: ebiten.KeySpace, Subject: "ShowDialogue"}
	sys := NewInputSystem(sender, sw, talk)

	down := map[*KeyBinding]bool{}
	sys.pressed = func(b *KeyBinding) bool { return down[b] }

	w := ecs.NewWorld()
	sys.Update(w)
	assert.Empty(t, sender.sent)

	down[sw] = true
	sys.Update(w)
	sys.Update(w)
	down[sw] = false
	down[talk] = true
	sys.Update(w)
	down[sw] = true
	sys.Update(w)

	assert.Equal(t, []sentEvent{
		{"Switch", "on"},
		{"Switch", "off"},
		{"ShowDialogue", nil},
		{"Switch", "on"},
		{"ShowDialogue", nil},
	}, sender.sent)
}
