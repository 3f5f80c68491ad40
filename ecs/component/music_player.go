package component

// MusicPlayer stores global music playback state on a dedicated ECS entity.
// The music system mutates this component; no playback state is kept on the system.
type MusicPlayer struct {
	Players      map[string]Voice
	TrackVolumes map[string]float64

	CurrentTrack    string
	CurrentVolume   float64
	CurrentLoop     bool
	CurrentPriority int

	PendingTrack    string
	PendingVolume   float64
	PendingLoop     bool
	PendingPriority int
	PendingActive   bool

	FadeStep float64
}

var MusicPlayerComponent = NewComponent[MusicPlayer]()
