package main

import (
	"fmt"
	"io"

	"github.com/milk9111/storyline/assets"
	"github.com/milk9111/storyline/ecs/component"
)

// headlessFrames is how long a recorded sound reports itself as playing.
const headlessFrames = 30

// recorder stands in for the sound card: it prints every voice it is asked
// to open and keeps it "playing" for a fixed number of frames.
type recorder struct {
	kind  string
	out   io.Writer
	frame int
}

func (r *recorder) Load(path string, pitch float64) (component.Voice, error) {
	if !assets.Exists(path) {
		return nil, fmt.Errorf("%s %s: not found", r.kind, path)
	}
	return &recordedVoice{rec: r, path: path, pitch: pitch}, nil
}

type recordedVoice struct {
	rec    *recorder
	path   string
	pitch  float64
	volume float64
	left   int
}

func (v *recordedVoice) Play() {
	v.left = headlessFrames
	fmt.Fprintf(v.rec.out, "frame %4d  %s %s volume=%.2f pitch=%.2f\n", v.rec.frame, v.rec.kind, v.path, v.volume, v.pitch)
}

func (v *recordedVoice) Pause()                   { v.left = 0 }
func (v *recordedVoice) Rewind() error            { return nil }
func (v *recordedVoice) SetVolume(volume float64) { v.volume = volume }

func (v *recordedVoice) IsPlaying() bool {
	if v.left <= 0 {
		return false
	}
	v.left--
	return true
}
