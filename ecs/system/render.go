package system

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/storyline/common"
	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

const defaultStorytellerRadius = 8

// glowProperties are the story properties that set how opaque a
// storyteller is drawn, first match wins.
var glowProperties = []string{"alpha", "brightness"}

// RenderSystem draws every storyteller as a disc at its transform.
type RenderSystem struct{}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{}
}

func (r *RenderSystem) Update(*ecs.World) {}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}

	var entities []ecs.Entity
	ecs.ForEach2(w, component.StorytellerTagComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *component.StorytellerTag, _ *component.Transform) {
		entities = append(entities, e)
	})
	sort.SliceStable(entities, func(i, j int) bool { return uint64(entities[i]) < uint64(entities[j]) })

	for _, e := range entities {
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		radius := float32(defaultStorytellerRadius)
		if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind()); ok && pb.Radius > 0 {
			radius = float32(pb.Radius)
		}
		glow := 1.0
		if props, ok := ecs.Get(w, e, component.PropertiesComponent.Kind()); ok {
			glow = glowOf(props.Values)
		}

		fill := colornames.Gold
		fill.A = uint8(common.Clamp(0.15, 1, glow) * 255)
		vector.FillCircle(screen, float32(t.X), float32(t.Y), radius, premultiply(fill), true)
		vector.StrokeCircle(screen, float32(t.X), float32(t.Y), radius, 1, colornames.White, true)
	}
}

func glowOf(values map[string]any) float64 {
	for _, name := range glowProperties {
		switch v := values[name].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return 1
}

func premultiply(c color.RGBA) color.RGBA {
	a := uint16(c.A)
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 255),
		G: uint8(uint16(c.G) * a / 255),
		B: uint8(uint16(c.B) * a / 255),
		A: c.A,
	}
}
