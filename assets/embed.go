package assets

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/milk9111/storyline/ecs/component"
)

//go:embed sfx/*.wav music/*.wav
var assetsFS embed.FS

const sampleRate = 44100

var (
	audioOnce    sync.Once
	audioContext *audio.Context

	pcmMu    sync.Mutex
	pcmCache = map[string][]byte{}
)

// AudioContext returns the process-wide audio context, creating it on first
// use. Headless tools never call it.
func AudioContext() *audio.Context {
	audioOnce.Do(func() {
		audioContext = audio.NewContext(sampleRate)
	})
	return audioContext
}

// LoadFile loads an embedded asset by assets-relative path.
func LoadFile(path string) ([]byte, error) {
	clean := cleanAssetPath(path)
	return assetsFS.ReadFile(clean)
}

// LoadAudio loads an embedded audio asset by assets-relative path.
func LoadAudio(path string) ([]byte, error) {
	return LoadFile(path)
}

// Exists reports whether an embedded asset is present.
func Exists(path string) bool {
	_, err := fs.Stat(assetsFS, cleanAssetPath(path))
	return err == nil
}

// LoadAudioPlayer loads an embedded audio asset and creates an audio player.
func LoadAudioPlayer(path string) (*audio.Player, error) {
	return LoadAudioPlayerWithPitch(path, 1)
}

// LoadAudioPlayerWithPitch creates a player whose playback is pitched by
// resampling; 2 plays an octave up and twice as fast.
func LoadAudioPlayerWithPitch(path string, pitch float64) (*audio.Player, error) {
	pcm, err := decodedPCM(path)
	if err != nil {
		return nil, err
	}
	ctx := AudioContext()
	if pitch <= 0 || pitch == 1 {
		return ctx.NewPlayerFromBytes(pcm), nil
	}
	from := int(float64(ctx.SampleRate()) * pitch)
	stream := audio.Resample(bytes.NewReader(pcm), int64(len(pcm)), from, ctx.SampleRate())
	return ctx.NewPlayer(stream)
}

// decodedPCM returns the asset as 16-bit stereo PCM at the context sample
// rate. Decoded samples are cached per path.
func decodedPCM(path string) ([]byte, error) {
	clean := strings.ToLower(cleanAssetPath(path))

	pcmMu.Lock()
	cached, ok := pcmCache[clean]
	pcmMu.Unlock()
	if ok {
		return cached, nil
	}

	b, err := LoadAudio(path)
	if err != nil {
		return nil, err
	}

	var pcm []byte
	if strings.HasSuffix(clean, ".wav") {
		stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode wav %q: %w", path, err)
		}
		if pcm, err = io.ReadAll(stream); err != nil {
			return nil, fmt.Errorf("decode wav %q: %w", path, err)
		}
	} else {
		// Fallback for already-decoded PCM assets in Ebiten's native format.
		pcm = b
	}

	pcmMu.Lock()
	pcmCache[clean] = pcm
	pcmMu.Unlock()
	return pcm, nil
}

// Voices loads embedded sounds as ebiten players for the audio and music
// systems.
type Voices struct{}

func (Voices) Load(path string, pitch float64) (component.Voice, error) {
	p, err := LoadAudioPlayerWithPitch(path, pitch)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		s := filepath.ToSlash(path)
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "assets/") {
		return strings.TrimPrefix(s, "assets/")
	}
	return s
}
