package component

import "github.com/milk9111/storyline/story"

// Story attaches a story thread to an entity. The story system advances
// Machine once per frame and aborts it when the entity is destroyed.
type Story struct {
	// Spec is the name of the story prefab the machine was built from.
	Spec    string
	Machine *story.Machine
}

var StoryComponent = NewComponent[Story]()
