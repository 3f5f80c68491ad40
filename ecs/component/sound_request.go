package component

// SoundRequest asks the audio system to play a sample. Each request lives on
// its own entity, which the audio system destroys once the sound has finished
// or been stopped.
type SoundRequest struct {
	Path     string
	Volume   float64
	Pitch    float64
	Priority int
	Loop     bool

	// Stop is set by whoever owns the sound to end it early.
	Stop bool

	Voice   Voice
	Started bool
}

var SoundRequestComponent = NewComponent[SoundRequest]()
