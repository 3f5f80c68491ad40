package component

// MusicRequest is a one-shot request for global music playback.
//
// The music system guarantees only one active song at a time. When a new
// request arrives while another song is active, the current song fades out to
// silence, then the requested song starts immediately. A request whose
// Priority is lower than the playing song's is ignored. An empty Tracks list
// stops the music.
type MusicRequest struct {
	Tracks        []string
	Volume        float64
	Loop          bool
	Priority      int
	FadeOutFrames int
}

var MusicRequestComponent = NewComponent[MusicRequest]()
