package system

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/milk9111/storyline/common"
	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
)

const (
	defaultMusicVolume     = 1.0
	defaultMusicFadeFrames = 30
)

// MusicSystem plays the one global music track kept on the MusicPlayer
// entity, fading out the current song before the next one starts.
type MusicSystem struct {
	voices VoiceLoader
	rng    *rand.Rand
	log    *slog.Logger
}

func NewMusicSystem(voices VoiceLoader, rng *rand.Rand, log *slog.Logger) *MusicSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if log == nil {
		log = slog.Default()
	}
	return &MusicSystem{voices: voices, rng: rng, log: log}
}

func RequestMusic(w *ecs.World, track string) {
	RequestMusicWithOptions(w, &component.MusicRequest{Tracks: []string{track}, Loop: true, FadeOutFrames: defaultMusicFadeFrames})
}

func RequestMusicWithOptions(w *ecs.World, req *component.MusicRequest) {
	if w == nil || req == nil {
		return
	}
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.MusicRequestComponent.Kind(), req)
}

func StopMusic(w *ecs.World) {
	RequestMusicWithOptions(w, &component.MusicRequest{FadeOutFrames: defaultMusicFadeFrames})
}

func (m *MusicSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	requests, requestEntities := m.consumeRequests(w)
	for _, ent := range requestEntities {
		ecs.DestroyEntity(w, ent)
	}

	ent, ok := ecs.First(w, component.MusicPlayerComponent.Kind())
	if !ok {
		return
	}
	player, ok := ecs.Get(w, ent, component.MusicPlayerComponent.Kind())
	if !ok || player == nil {
		return
	}
	if player.Players == nil {
		player.Players = make(map[string]component.Voice)
	}
	if player.TrackVolumes == nil {
		player.TrackVolumes = make(map[string]float64)
	}

	for _, req := range requests {
		m.applyRequest(player, req)
	}

	if player.PendingActive {
		m.updateTransition(player)
		return
	}

	current := m.currentPlayer(player)
	if current == nil || current.IsPlaying() || player.CurrentTrack == "" {
		return
	}
	if !player.CurrentLoop {
		player.CurrentTrack = ""
		player.CurrentVolume = 0
		player.CurrentPriority = 0
		return
	}
	if err := current.Rewind(); err != nil {
		m.log.Warn("music: rewind failed", "track", player.CurrentTrack, "error", err)
		return
	}
	current.SetVolume(player.CurrentVolume)
	current.Play()
}

func (m *MusicSystem) consumeRequests(w *ecs.World) ([]component.MusicRequest, []ecs.Entity) {
	var requests []component.MusicRequest
	requestEntities := make([]ecs.Entity, 0)

	ecs.ForEach(w, component.MusicRequestComponent.Kind(), func(ent ecs.Entity, req *component.MusicRequest) {
		requestEntities = append(requestEntities, ent)
		if req == nil {
			return
		}
		requests = append(requests, *req)
	})

	return requests, requestEntities
}

// activePriority is the priority a new request has to match: the pending
// song's while a fade is under way, the current song's otherwise.
func activePriority(player *component.MusicPlayer) int {
	if player.PendingActive && player.PendingTrack != "" {
		return player.PendingPriority
	}
	if player.CurrentTrack != "" {
		return player.CurrentPriority
	}
	return 0
}

func (m *MusicSystem) applyRequest(player *component.MusicPlayer, req component.MusicRequest) {
	if player == nil {
		return
	}

	track := m.pickTrack(req.Tracks)
	if track != "" && req.Priority < activePriority(player) {
		m.log.Debug("music: request ignored, lower priority", "track", track, "priority", req.Priority)
		return
	}

	volume := req.Volume
	if volume <= 0 {
		if v, ok := player.TrackVolumes[track]; ok && v > 0 {
			volume = v
		} else {
			volume = defaultMusicVolume
		}
	}
	volume = common.Clamp(0, 1, volume)
	fadeFrames := req.FadeOutFrames
	if fadeFrames <= 0 {
		fadeFrames = defaultMusicFadeFrames
	}

	if track == "" {
		player.PendingActive = false
		if m.currentPlayer(player) == nil {
			player.CurrentTrack = ""
			player.CurrentVolume = 0
			player.CurrentLoop = false
			player.CurrentPriority = 0
			return
		}
		player.PendingTrack = ""
		player.PendingVolume = 0
		player.PendingLoop = false
		player.PendingPriority = 0
		player.PendingActive = true
		player.FadeStep = fadeStep(player.CurrentVolume, fadeFrames)
		return
	}

	current := m.currentPlayer(player)
	if !player.PendingActive && player.CurrentTrack == track && current != nil {
		player.CurrentVolume = volume
		player.CurrentLoop = req.Loop
		player.CurrentPriority = req.Priority
		current.SetVolume(player.CurrentVolume)
		if !current.IsPlaying() {
			_ = current.Rewind()
			current.Play()
		}
		return
	}

	player.PendingTrack = track
	player.PendingVolume = volume
	player.PendingLoop = req.Loop
	player.PendingPriority = req.Priority
	player.PendingActive = true
	if current == nil {
		m.switchToPending(player)
		return
	}

	player.FadeStep = fadeStep(player.CurrentVolume, fadeFrames)
}

func fadeStep(volume float64, frames int) float64 {
	step := volume / float64(frames)
	if step <= 0 {
		return 1
	}
	return step
}

func (m *MusicSystem) pickTrack(tracks []string) string {
	candidates := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t = strings.TrimSpace(t); t != "" {
			candidates = append(candidates, t)
		}
	}
	switch len(candidates) {
	case 0:
		return ""
	case 1:
		return candidates[0]
	default:
		return candidates[m.rng.Intn(len(candidates))]
	}
}

func (m *MusicSystem) updateTransition(player *component.MusicPlayer) {
	if player == nil {
		return
	}

	current := m.currentPlayer(player)
	if current == nil {
		m.switchToPending(player)
		return
	}

	player.CurrentVolume -= player.FadeStep
	if player.CurrentVolume > 0 {
		current.SetVolume(player.CurrentVolume)
		return
	}

	player.CurrentVolume = 0
	current.SetVolume(0)
	current.Pause()
	_ = current.Rewind()
	player.CurrentTrack = ""
	player.CurrentLoop = false
	player.CurrentPriority = 0
	m.switchToPending(player)
}

func (m *MusicSystem) switchToPending(player *component.MusicPlayer) {
	if player == nil || !player.PendingActive {
		return
	}

	reqTrack := strings.TrimSpace(player.PendingTrack)
	reqVolume := player.PendingVolume
	reqLoop := player.PendingLoop
	reqPriority := player.PendingPriority

	player.PendingTrack = ""
	player.PendingVolume = 0
	player.PendingLoop = false
	player.PendingPriority = 0
	player.PendingActive = false
	player.FadeStep = 0

	if reqTrack == "" {
		player.CurrentTrack = ""
		player.CurrentVolume = 0
		player.CurrentLoop = false
		player.CurrentPriority = 0
		return
	}

	voice, err := m.playerForTrack(player, reqTrack)
	if err != nil {
		m.log.Warn("music: load failed", "track", reqTrack, "error", err)
		player.CurrentTrack = ""
		player.CurrentVolume = 0
		player.CurrentLoop = false
		player.CurrentPriority = 0
		return
	}

	player.CurrentTrack = reqTrack
	player.CurrentVolume = reqVolume
	player.CurrentLoop = reqLoop
	player.CurrentPriority = reqPriority
	_ = voice.Rewind()
	voice.SetVolume(player.CurrentVolume)
	voice.Play()
}

func (m *MusicSystem) currentPlayer(player *component.MusicPlayer) component.Voice {
	if player == nil || strings.TrimSpace(player.CurrentTrack) == "" || player.Players == nil {
		return nil
	}
	voice, ok := player.Players[player.CurrentTrack]
	if !ok {
		return nil
	}
	return voice
}

func (m *MusicSystem) playerForTrack(player *component.MusicPlayer, track string) (component.Voice, error) {
	if player == nil {
		return nil, fmt.Errorf("music player component is nil")
	}
	if m.voices == nil {
		return nil, fmt.Errorf("music: no voice loader")
	}
	if player.Players == nil {
		player.Players = make(map[string]component.Voice)
	}

	if existing, ok := player.Players[track]; ok && existing != nil {
		return existing, nil
	}

	voice, err := m.voices.Load(track, 1)
	if err != nil {
		return nil, err
	}
	player.Players[track] = voice
	return voice, nil
}
