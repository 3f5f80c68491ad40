package component

// Properties is a bag of named values on an entity that stories can read
// and write.
type Properties struct {
	Values map[string]any
}

var PropertiesComponent = NewComponent[Properties]()
