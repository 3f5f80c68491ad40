package component

// Persistent marks entities that survive a story reload, such as the music
// player and the save store.
type Persistent struct {
	ID string
}

var PersistentComponent = NewComponent[Persistent]()
