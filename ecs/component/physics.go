package component

import "github.com/jakecoffman/cp"

// PhysicsBody gives a storyteller a Chipmunk2D body so stories can push it
// around with impulses. The physics system creates Body and Shape on first
// sight and writes the body position back to the Transform.
type PhysicsBody struct {
	Body   *cp.Body
	Shape  *cp.Shape
	Mass   float64
	Radius float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
