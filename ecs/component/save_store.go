package component

// SaveStore is the global save-game store. Keys are slash-separated paths
// such as "bird/met". Dirty is set whenever a value changes and cleared when
// the store has been written out.
type SaveStore struct {
	Path   string
	Values map[string]any
	Dirty  bool
}

var SaveStoreComponent = NewComponent[SaveStore]()
