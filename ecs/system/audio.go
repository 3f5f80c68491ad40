package system

import (
	"log/slog"
	"sort"

	"github.com/milk9111/storyline/common"
	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

const defaultMaxVoices = 8

// VoiceLoader opens a playable voice for a sound file at the given pitch.
// assets.Voices loads the embedded wav files.
type VoiceLoader interface {
	Load(path string, pitch float64) (component.Voice, error)
}

// AudioSystem plays SoundRequest entities. At most maxVoices sounds play at
// once; a new request may take the place of a playing sound with a lower
// priority and is dropped otherwise. Finished and stopped requests are
// destroyed.
type AudioSystem struct {
	voices    VoiceLoader
	maxVoices int
	log       *slog.Logger
}

func NewAudioSystem(voices VoiceLoader, maxVoices int, log *slog.Logger) *AudioSystem {
	if maxVoices <= 0 {
		maxVoices = defaultMaxVoices
	}
	if log == nil {
		log = slog.Default()
	}
	return &AudioSystem{voices: voices, maxVoices: maxVoices, log: log}
}

type soundEntry struct {
	e   ecs.Entity
	req *component.SoundRequest
}

func (a *AudioSystem) Update(w *ecs.World) {
	if a == nil || w == nil {
		return
	}

	var playing, waiting []soundEntry
	ecs.ForEach(w, component.SoundRequestComponent.Kind(), func(e ecs.Entity, req *component.SoundRequest) {
		switch {
		case req.Stop:
			if req.Voice != nil {
				req.Voice.Pause()
			}
			ecs.DestroyEntity(w, e)
		case !req.Started:
			waiting = append(waiting, soundEntry{e: e, req: req})
		case req.Voice != nil && req.Voice.IsPlaying():
			playing = append(playing, soundEntry{e: e, req: req})
		case req.Loop && req.Voice != nil:
			if err := req.Voice.Rewind(); err != nil {
				a.log.Warn("audio: rewind failed", "path", req.Path, "error", err)
				ecs.DestroyEntity(w, e)
				return
			}
			req.Voice.Play()
			playing = append(playing, soundEntry{e: e, req: req})
		default:
			ecs.DestroyEntity(w, e)
		}
	})

	sort.SliceStable(waiting, func(i, j int) bool {
		return waiting[i].req.Priority > waiting[j].req.Priority
	})

	for _, next := range waiting {
		if len(playing) >= a.maxVoices {
			victim := lowestPriority(playing)
			if playing[victim].req.Priority >= next.req.Priority {
				a.log.Debug("audio: dropped sound, all voices busy", "path", next.req.Path, "priority", next.req.Priority)
				ecs.DestroyEntity(w, next.e)
				continue
			}
			if v := playing[victim].req.Voice; v != nil {
				v.Pause()
			}
			ecs.DestroyEntity(w, playing[victim].e)
			playing = append(playing[:victim], playing[victim+1:]...)
		}

		if !a.start(next.req) {
			ecs.DestroyEntity(w, next.e)
			continue
		}
		playing = append(playing, next)
	}
}

func (a *AudioSystem) start(req *component.SoundRequest) bool {
	if a.voices == nil {
		a.log.Warn("audio: no voice loader", "path", req.Path)
		return false
	}
	pitch := req.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	voice, err := a.voices.Load(req.Path, pitch)
	if err != nil {
		a.log.Warn("audio: load failed", "path", req.Path, "error", err)
		return false
	}
	if err := voice.Rewind(); err != nil {
		a.log.Warn("audio: rewind failed", "path", req.Path, "error", err)
		return false
	}
	voice.SetVolume(common.Clamp(0, 1, req.Volume))
	voice.Play()
	req.Voice = voice
	req.Started = true
	return true
}

// lowestPriority returns the index of the playing sound with the lowest
// priority, preferring the oldest among equals.
func lowestPriority(playing []soundEntry) int {
	idx := 0
	for i, p := range playing {
		if p.req.Priority < playing[idx].req.Priority {
			idx = i
		}
	}
	return idx
}
