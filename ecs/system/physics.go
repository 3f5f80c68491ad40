package system

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
	"github.com/milk9111/storyline/story"
)

const (
	physicsStep = 1.0 / 60.0
	// velocity kept per frame
	damping = 0.95

	defaultBodyRadius = 8.0
)

// PhysicsSystem steps a Chipmunk2D space holding one body per PhysicsBody
// component. Impulses written by the story impulse action are applied and
// cleared before each step.
type PhysicsSystem struct {
	space  *cp.Space
	hooked bool
}

func NewPhysicsSystem(gravity float64) *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{X: 0, Y: gravity})
	return &PhysicsSystem{space: space}
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	if !ps.hooked {
		w.OnDestroy(ps.remove)
		ps.hooked = true
	}

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, tr *component.Transform) {
		if pb.Body == nil {
			ps.add(pb, tr)
		}
		props, ok := ecs.Get(w, e, component.PropertiesComponent.Kind())
		if !ok {
			return
		}
		if impulse, ok := props.Values[story.ImpulseProperty].([2]float64); ok {
			pb.Body.ApplyImpulseAtWorldPoint(cp.Vector{X: impulse[0], Y: impulse[1]}, pb.Body.Position())
			delete(props.Values, story.ImpulseProperty)
		}
	})

	ps.space.Step(physicsStep)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, pb *component.PhysicsBody, tr *component.Transform) {
		if pb.Body == nil {
			return
		}
		v := pb.Body.Velocity()
		pb.Body.SetVelocity(v.X*damping, v.Y*damping)
		pos := pb.Body.Position()
		tr.X, tr.Y = pos.X, pos.Y
	})
}

func (ps *PhysicsSystem) add(pb *component.PhysicsBody, tr *component.Transform) {
	mass := pb.Mass
	if mass <= 0 {
		mass = 1
	}
	radius := pb.Radius
	if radius <= 0 {
		radius = defaultBodyRadius
	}
	body := ps.space.AddBody(cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{})))
	body.SetPosition(cp.Vector{X: tr.X, Y: tr.Y})
	pb.Body = body
	pb.Shape = ps.space.AddShape(cp.NewCircle(body, radius, cp.Vector{}))
}

func (ps *PhysicsSystem) remove(w *ecs.World, e ecs.Entity) {
	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok || pb.Body == nil {
		return
	}
	if pb.Shape != nil {
		ps.space.RemoveShape(pb.Shape)
	}
	ps.space.RemoveBody(pb.Body)
	pb.Body, pb.Shape = nil, nil
}
