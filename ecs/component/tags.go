package component

// StorytellerTag marks entities spawned from a story prefab.
type StorytellerTag struct {
	Name string
}

var StorytellerTagComponent = NewComponent[StorytellerTag]()
