package system

import (
	"math"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

// AnimationSystem advances every playing track by its speed each frame.
// Looping tracks wrap back to their start; others stop on their last frame.
type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	ecs.ForEach(w, component.AnimationComponent.Kind(), func(_ ecs.Entity, anim *component.Animation) {
		for _, track := range anim.Tracks {
			advanceTrack(track)
		}
	})
}

func advanceTrack(t *component.AnimationTrack) {
	if t == nil || !t.Playing {
		return
	}

	t.Frame += t.Speed
	if t.Frame <= t.End {
		return
	}
	if !t.Loop {
		t.Frame = t.End
		t.Playing = false
		return
	}

	// Frames are inclusive, so a clip from Start to End spans End-Start+1.
	span := t.End - t.Start + 1
	if span <= 0 {
		t.Frame = t.Start
		return
	}
	t.Frame = t.Start + math.Mod(t.Frame-t.Start, span)
}
