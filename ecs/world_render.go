package ecs

import "github.com/hajimehoshi/ebiten/v2"

// RenderSystem draws ECS state each frame.
type RenderSystem interface {
	Draw(w *World, screen *ebiten.Image)
}

// Draw calls all render-capable systems in update order, including those
// grouped under a Scheduler.
func (w *World) Draw(screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	w.draw(w.systems, screen)
}

func (w *World) draw(systems []System, screen *ebiten.Image) {
	for _, s := range systems {
		switch sys := s.(type) {
		case *Scheduler:
			w.draw(sys.systems, screen)
		case RenderSystem:
			sys.Draw(w, screen)
		}
	}
}
