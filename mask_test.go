package bramble

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPair(t *testing.T, seed uint64) *Pair {
	t.Helper()
	p, err := newTestAssembler(t, seed).AssemblePair("fern", 0, 1)
	require.NoError(t, err)
	return p
}

func TestMaskVariantString(t *testing.T) {
	assert.Equal(t, "single", MaskSingle.String())
	assert.Equal(t, "radial-replica", MaskRadialReplica.String())
	assert.Equal(t, "MaskVariant(7)", MaskVariant(7).String())
}

func TestChooseVariantWeights(t *testing.T) {
	g := NewMaskGenerator(MaskConfig{Weights: []float64{0, 0, 1, 0}})
	rng := newTestRand(1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, MaskSquareReplica, g.ChooseVariant(rng))
	}

	g = NewMaskGenerator(DefaultConfig().Mask)
	counts := map[MaskVariant]int{}
	for i := 0; i < 4000; i++ {
		counts[g.ChooseVariant(rng)]++
	}
	require.Len(t, counts, 4)
	for v, n := range counts {
		assert.InDelta(t, 1000, n, 150, "variant %s", v)
	}

	g = NewMaskGenerator(MaskConfig{Weights: []float64{0, 0, 0, 0}})
	assert.Equal(t, MaskSingle, g.ChooseVariant(rng))
	g = NewMaskGenerator(MaskConfig{Weights: []float64{-1, 2}})
	assert.Equal(t, MaskGrouped, g.ChooseVariant(rng), "negative weights count as zero")
}

func TestMaskSingleAndGrouped(t *testing.T) {
	p := testPair(t, 2)
	g := NewMaskGenerator(DefaultConfig().Mask)

	r := &fakeRenderer{}
	m, err := g.Build(MaskSingle, p, r, newTestRand(1))
	require.NoError(t, err)
	require.Len(t, r.rasterized, 1)
	assert.Same(t, p.Leading(), r.rasterized[0])
	require.Equal(t, 1, m.Root.NumChildren())
	tex := r.textures[0]
	assertRect(t, Rect{X: -float64(tex.w) / 2, Y: -float64(tex.h) / 2, Width: float64(tex.w), Height: float64(tex.h)}, m.Bounds)

	r = &fakeRenderer{}
	m, err = g.Build(MaskGrouped, p, r, newTestRand(1))
	require.NoError(t, err)
	assert.Same(t, p.Whole(), r.rasterized[0])
	assert.Equal(t, MaskGrouped, m.Variant)
}

func TestMaskSquareReplica(t *testing.T) {
	p := testPair(t, 2)
	cfg := DefaultConfig().Mask
	g := NewMaskGenerator(cfg)
	signs := [4][2]float64{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}

	seen := map[int]bool{}
	for seed := uint64(0); seed < 40; seed++ {
		m, err := g.Build(MaskSquareReplica, p, &fakeRenderer{}, newTestRand(seed))
		require.NoError(t, err)
		require.Equal(t, 2, m.Root.NumChildren())
		seen[m.Quadrant] = true

		base, cp := m.Root.ChildAt(0), m.Root.ChildAt(1)
		assert.Same(t, base.Texture, cp.Texture, "the copy reuses the base texture")
		s := signs[m.Quadrant]
		assert.Equal(t, s[0]*cfg.ReplicaScale, cp.ScaleX)
		assert.Equal(t, s[1]*cfg.ReplicaScale, cp.ScaleY)

		// The copy always stays within the horizontal span of the base.
		bb, cb := base.Bounds(), cp.Bounds()
		assert.InDelta(t, bb.X+bb.Width/2, cb.X+cb.Width/2, 1e-6)
	}
	assert.Len(t, seen, 4)
}

func TestMaskRadialReplica(t *testing.T) {
	p := testPair(t, 2)
	g := NewMaskGenerator(MaskConfig{RadiusFactors: []float64{0.5}, CopyCounts: []int{4}})
	r := &fakeRenderer{}
	m, err := g.Build(MaskRadialReplica, p, r, newTestRand(1))
	require.NoError(t, err)

	assert.Equal(t, 4, m.Copies)
	assert.Equal(t, 0.5, m.RadiusFactor)
	require.Equal(t, 4, m.Root.NumChildren())
	h := float64(r.textures[0].h)
	for i, n := range m.Root.Children() {
		assert.Equal(t, h*0.5, n.PivotY)
		assert.InDelta(t, float64(i)*math.Pi/2, n.Rotation, 1e-9)
		if i == 2 {
			assert.Zero(t, n.Alpha, "third copy is left out")
		} else {
			assert.Equal(t, 1.0, n.Alpha)
		}
	}

	g.Config.CopyCounts = []int{8}
	m, err = g.Build(MaskRadialReplica, p, &fakeRenderer{}, newTestRand(1))
	require.NoError(t, err)
	require.Equal(t, 8, m.Root.NumChildren())
	for _, n := range m.Root.Children() {
		assert.Equal(t, 1.0, n.Alpha)
	}

	g.Config.RadiusFactors = nil
	_, err = g.Build(MaskRadialReplica, p, &fakeRenderer{}, newTestRand(1))
	assert.Error(t, err)
}

func TestMaskLeavesSourceUntouched(t *testing.T) {
	p := testPair(t, 5)
	before := p.Bounds()
	firstX, secondX := p.First.Root.X, p.Second.Root.X
	children := p.Root.NumChildren()

	g := NewMaskGenerator(DefaultConfig().Mask)
	for v := MaskSingle; v < numMaskVariants; v++ {
		m, err := g.Build(v, p, &fakeRenderer{}, newTestRand(uint64(v)))
		require.NoError(t, err)
		m.Dispose()
	}
	assertRect(t, before, p.Bounds())
	assert.Equal(t, firstX, p.First.Root.X)
	assert.Equal(t, secondX, p.Second.Root.X)
	assert.Equal(t, children, p.Root.NumChildren())
	assert.Same(t, p.Root, p.First.Root.Parent)
	assert.False(t, p.Root.IsDisposed())
}

func TestMaskDisposeReleasesTextures(t *testing.T) {
	r := &fakeRenderer{}
	g := NewMaskGenerator(DefaultConfig().Mask)
	m, err := g.Generate(testPair(t, 3), r, newTestRand(3))
	require.NoError(t, err)
	require.NotEmpty(t, r.textures)

	m.Dispose()
	for _, tex := range r.textures {
		assert.True(t, tex.disposed)
	}
	assert.True(t, m.Root.IsDisposed())
	assert.NotPanics(t, m.Dispose)
}

func TestMaskUnknownVariant(t *testing.T) {
	g := NewMaskGenerator(DefaultConfig().Mask)
	_, err := g.Build(MaskVariant(9), testPair(t, 1), &fakeRenderer{}, newTestRand(1))
	assert.Error(t, err)
}
