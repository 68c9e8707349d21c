package bramble

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlurFilterPadding(t *testing.T) {
	assert.Equal(t, 16, NewBlurFilter(BlurParams{Strength: 16, Quality: 8}).Padding())
	assert.Equal(t, 2, NewBlurFilter(BlurParams{Strength: 1.2, Quality: 1}).Padding())
	assert.Equal(t, 0, NewBlurFilter(BlurParams{Strength: -3, Quality: -1}).Padding())
}

func TestBlurFilterClampsNegatives(t *testing.T) {
	f := NewBlurFilter(BlurParams{Strength: -3, Quality: -1})
	assert.Zero(t, f.Strength)
	assert.Zero(t, f.Quality)
}

func TestBlurPassScale(t *testing.T) {
	assert.Equal(t, 0.9, NewBlurFilter(BlurParams{Strength: 1, Quality: 4}).passScale())
	assert.Equal(t, 0.9, NewBlurFilter(BlurParams{Strength: 8, Quality: 0}).passScale())
	assert.InDelta(t, 0.5, NewBlurFilter(BlurParams{Strength: 16, Quality: 4}).passScale(), 1e-12)
	assert.Equal(t, 0.5, NewBlurFilter(BlurParams{Strength: 100, Quality: 1}).passScale())
	assert.Equal(t, 0.9, NewBlurFilter(BlurParams{Strength: 1.1, Quality: 8}).passScale())
}

func TestFilterChainPadding(t *testing.T) {
	chain := []Filter{
		NewRadialGradientFilter(DefaultGradient()),
		NewBlurFilter(BlurParams{Strength: 4, Quality: 2}),
		NewBlurFilter(BlurParams{Strength: 2.5, Quality: 2}),
	}
	assert.Equal(t, 7, filterChainPadding(chain))
	assert.Zero(t, filterChainPadding(nil))
}

func TestDefaultGradient(t *testing.T) {
	g := DefaultGradient()
	assert.Equal(t, 0.4, g.Radius1)
	assert.Equal(t, 0.6, g.Radius2)
	assert.Equal(t, 0.8, g.Background.A)
	assert.InDelta(t, 244.0/256, g.Color1.R, 1e-12)
	assert.InDelta(t, 245.0/256, g.Color2.B, 1e-12)
	assert.Equal(t, []float32{float32(g.Color2.R), float32(g.Color2.G), float32(g.Color2.B), 1}, colorVec4(g.Color2))
}

func TestNextPowerOfTwo(t *testing.T) {
	for in, want := range map[int]int{-4: 1, 0: 1, 1: 1, 2: 2, 3: 4, 64: 64, 65: 128, 1000: 1024} {
		assert.Equal(t, want, nextPowerOfTwo(in), "n=%d", in)
	}
}

func TestPoolKey(t *testing.T) {
	assert.NotEqual(t, poolKey(64, 128), poolKey(128, 64))
	assert.Equal(t, uint64(64)<<32|128, poolKey(64, 128))
}
