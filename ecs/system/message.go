package system

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

const (
	defaultMaxMessages = 4
	messageLineHeight  = 16
	messagePadding     = 10
)

// MessageSystem keeps the newest story messages on screen and draws them in
// a box along the bottom edge. Older messages beyond the limit are removed
// early; the rest expire through their TTL.
type MessageSystem struct {
	maxLines int
	face     ebtext.Face
}

func NewMessageSystem(maxLines int) *MessageSystem {
	if maxLines <= 0 {
		maxLines = defaultMaxMessages
	}
	return &MessageSystem{maxLines: maxLines, face: ebtext.NewGoXFace(basicfont.Face7x13)}
}

type shownMessage struct {
	e   ecs.Entity
	msg *component.Message
}

func (m *MessageSystem) messages(w *ecs.World) []shownMessage {
	var out []shownMessage
	ecs.ForEach(w, component.MessageComponent.Kind(), func(e ecs.Entity, msg *component.Message) {
		out = append(out, shownMessage{e: e, msg: msg})
	})
	// Storage order is not creation order once entities are removed.
	sort.Slice(out, func(i, j int) bool {
		if out[i].msg.Frame != out[j].msg.Frame {
			return out[i].msg.Frame < out[j].msg.Frame
		}
		return out[i].msg.Seq < out[j].msg.Seq
	})
	return out
}

func (m *MessageSystem) Update(w *ecs.World) {
	if m == nil || w == nil {
		return
	}
	shown := m.messages(w)
	for len(shown) > m.maxLines {
		ecs.DestroyEntity(w, shown[0].e)
		shown = shown[1:]
	}
}

// Lines returns the visible messages oldest first, prefixed with the
// speaker when one is known.
func (m *MessageSystem) Lines(w *ecs.World) []string {
	shown := m.messages(w)
	lines := make([]string, 0, len(shown))
	for _, s := range shown {
		line := s.msg.Text
		if s.msg.Speaker != "" {
			line = s.msg.Speaker + ": " + line
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *MessageSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	lines := m.Lines(w)
	if len(lines) == 0 {
		return
	}

	bounds := screen.Bounds()
	boxH := float32(len(lines)*messageLineHeight + 2*messagePadding)
	boxY := float32(bounds.Dy()) - boxH - messagePadding
	boxW := float32(bounds.Dx() - 2*messagePadding)
	vector.FillRect(screen, messagePadding, boxY, boxW, boxH, color.RGBA{A: 200}, false)
	vector.StrokeRect(screen, messagePadding, boxY, boxW, boxH, 1, colornames.Lightgrey, false)

	for i, line := range lines {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(2*messagePadding, float64(boxY)+messagePadding+float64(i*messageLineHeight))
		op.ColorScale.ScaleWithColor(colornames.White)
		ebtext.Draw(screen, line, m.face, op)
	}
}
