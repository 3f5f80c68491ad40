package component

// Voice is a playable sound. *audio.Player from ebiten satisfies it.
type Voice interface {
	Play()
	Pause()
	Rewind() error
	IsPlaying() bool
	SetVolume(volume float64)
}
