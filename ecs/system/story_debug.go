package system

import (
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

// StoryDebugSystem labels every storyteller with its active state and the
// frame of each animation track. Storytellers with a physics body are drawn
// as their collision circle.
type StoryDebugSystem struct {
	Enabled bool
}

func NewStoryDebugSystem(enabled bool) *StoryDebugSystem {
	return &StoryDebugSystem{Enabled: enabled}
}

func (d *StoryDebugSystem) Update(*ecs.World) {}

func (d *StoryDebugSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if d == nil || !d.Enabled {
		return
	}
	ecs.ForEach2(w, component.StoryComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, st *component.Story, tr *component.Transform) {
		x, y := float32(tr.X), float32(tr.Y)
		labelX := int(tr.X) + 8
		if r := bodyRadius(w, e); r > 0 {
			vector.StrokeCircle(screen, x, y, float32(r), 1, colornames.Lime, true)
			labelX = int(tr.X+r) + 4
		} else {
			vector.StrokeRect(screen, x-4, y-4, 8, 8, 1, colornames.Crimson, false)
		}
		ebitenutil.DebugPrintAt(screen, describeStory(w, e, st), labelX, int(tr.Y))
	})
}

func bodyRadius(w *ecs.World, e ecs.Entity) float64 {
	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return 0
	}
	if pb.Radius <= 0 {
		return defaultBodyRadius
	}
	return pb.Radius
}

func describeStory(w *ecs.World, e ecs.Entity, st *component.Story) string {
	state := "<done>"
	if st.Machine != nil && st.Machine.Active() != nil {
		state = st.Machine.Active().Name
	}
	s := fmt.Sprintf("%s: %s", st.Spec, state)
	if anim, ok := ecs.Get(w, e, component.AnimationComponent.Kind()); ok {
		for _, name := range sortedTracks(anim) {
			t := anim.Tracks[name]
			s += fmt.Sprintf("\n  %s %s %.0f", name, t.Clip, t.Frame)
		}
	}
	return s
}

func sortedTracks(anim *component.Animation) []string {
	names := make([]string, 0, len(anim.Tracks))
	for name := range anim.Tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
