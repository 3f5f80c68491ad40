package component

// Transform positions an entity on screen. Storytellers use it to place
// their name label.
type Transform struct {
	X float64
	Y float64
}

var TransformComponent = NewComponent[Transform]()
