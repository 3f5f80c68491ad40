package system

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlowOf(t *testing.T) {
	assert.Equal(t, 1.0, glowOf(nil))
	assert.Equal(t, 0.25, glowOf(map[string]any{"alpha": 0.25, "brightness": 0.9}))
	assert.Equal(t, 0.9, glowOf(map[string]any{"brightness": 0.9}))
	assert.Equal(t, 0.0, glowOf(map[string]any{"brightness": 0}))
	assert.Equal(t, 1.0, glowOf(map[string]any{"alpha": "bright"}))
}

func TestPremultiply(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 40, G: 20, A: 51}, premultiply(color.RGBA{R: 200, G: 100, A: 51}))
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 10, A: 255}, premultiply(color.RGBA{R: 200, G: 100, B: 10, A: 255}))
}
