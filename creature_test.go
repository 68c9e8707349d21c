package bramble

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCreatureParams(t *testing.T) CreatureParams {
	return CreatureParams{
		CreatureType: "fern",
		ElementIndex: 1,
		Evolutions:   testEvolutions(t),
		Fill:         RGBA8(86, 160, 72, 1),
	}
}

func newTestCreature(t *testing.T, a *Assembler, p CreatureParams, r Renderer) *Creature {
	t.Helper()
	c, err := a.AssembleCreature(p, r)
	require.NoError(t, err)
	return c
}

func TestAssembleCreatureStructure(t *testing.T) {
	a := newTestAssembler(t, 3)
	c := newTestCreature(t, a, testCreatureParams(t), nil)

	assert.Equal(t, "stem", c.ElementKey)
	assert.Zero(t, c.EvolutionIndex())
	assert.Equal(t, 3, c.Main().Len())
	assert.Equal(t, 2, c.Mirror().Len())
	assert.Equal(t, 5, c.NumElements())
	assert.Nil(t, c.Label())
	assert.True(t, c.Alive())

	assert.Same(t, c.Whole(), c.Main().Root.Parent)
	assert.Same(t, c.Whole(), c.Mirror().Root.Parent)
	assert.Same(t, c.Node(), c.Whole().Parent)
	assert.Same(t, c.Main().Root, c.Leading())

	assert.Equal(t, "stem", c.Main().Spec.Start)
	assert.Equal(t, "stem", c.Mirror().Spec.Start)
	for _, n := range c.Whole().Children() {
		for _, e := range n.Children() {
			assert.Equal(t, RGBA8(86, 160, 72, 1), e.Color)
		}
	}
}

func TestCreatureMirrorAnchoredOnParentElement(t *testing.T) {
	a := newTestAssembler(t, 3)
	c := newTestCreature(t, a, testCreatureParams(t), nil)

	mirror := c.Mirror().Root
	assert.Equal(t, 0.5, mirror.ScaleX)
	assert.Equal(t, 0.5, mirror.ScaleY)

	pb := c.Main().Element(1).BoundsIn(c.Whole())
	mb := mirror.Bounds()
	assert.InDelta(t, pb.X+pb.Width, mirror.X, 1e-6)
	assert.InDelta(t, pb.Y+pb.Height/2-mb.Height/2, mirror.Y, 1e-6)
}

func TestCreaturePresentationTransform(t *testing.T) {
	a := newTestAssembler(t, 3)
	p := testCreatureParams(t)
	p.Scale = 2
	p.Rotation = math.Pi / 6
	c := newTestCreature(t, a, p, nil)

	root := c.Node()
	lb := root.LocalBounds()
	assert.InDelta(t, lb.X+lb.Width/2, root.PivotX, 1e-6)
	assert.InDelta(t, lb.Y+lb.Height/2, root.PivotY, 1e-6)
	assert.Equal(t, 2.0, root.ScaleX)
	assert.Equal(t, math.Pi/6, root.Rotation)

	// The centre stays on the root's position.
	x, y := root.LocalToParent(root.PivotX, root.PivotY)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	defaults := newTestCreature(t, newTestAssembler(t, 3), testCreatureParams(t), nil)
	assert.Equal(t, 1.0, defaults.Node().ScaleX, "zero scale means 1")
}

func TestCreatureLabel(t *testing.T) {
	a := newTestAssembler(t, 3)
	r := &fakeRenderer{}
	p := testCreatureParams(t)
	p.Name = "Fern"
	c := newTestCreature(t, a, p, r)

	label := c.Label()
	require.NotNil(t, label)
	assert.Equal(t, []string{"Fern"}, r.texts)
	assert.Same(t, c.Node(), label.Parent)
	assert.Equal(t, 5, c.NumElements(), "label is not an element")

	style := label.Text.Style
	assert.Equal(t, 50.0, style.Size)
	assert.Equal(t, p.Fill, style.Fill)
	assert.Equal(t, ColorWhite, style.Stroke)
	assert.Equal(t, 1.0, style.StrokeWidth)
	assert.Equal(t, 0.25, label.ScaleX)

	bb := c.Whole().LocalBounds()
	assert.InDelta(t, bb.Width/2-label.Text.Width*0.25/2, label.X, 1e-6)
	assert.InDelta(t, bb.Height+3, label.Y, 1e-6)
}

func TestAssembleCreatureErrors(t *testing.T) {
	a := newTestAssembler(t, 3)

	p := testCreatureParams(t)
	p.Evolutions = nil
	_, err := a.AssembleCreature(p, nil)
	assert.ErrorIs(t, err, ErrMissingEvolutionStage)

	p = testCreatureParams(t)
	p.ElementIndex = 7
	_, err = a.AssembleCreature(p, nil)
	assert.ErrorIs(t, err, ErrUnknownElement)

	p = testCreatureParams(t)
	p.CreatureType = "moss"
	_, err = a.AssembleCreature(p, nil)
	assert.ErrorIs(t, err, ErrUnknownCreatureType)

	p = testCreatureParams(t)
	p.Evolutions[0].MirrorSectionParentIndex = 5
	c, err := a.AssembleCreature(p, nil)
	assert.ErrorIs(t, err, ErrMissingEvolutionStage)
	assert.Nil(t, c, "no partial creature")

	p = testCreatureParams(t)
	p.Name = "Fern"
	_, err = a.AssembleCreature(p, nil)
	assert.Error(t, err, "a label needs a renderer")

	boom := errors.New("no font")
	_, err = a.AssembleCreature(p, &fakeRenderer{failText: boom})
	assert.ErrorIs(t, err, boom)
}

func TestAssembleCreatureEvolutionIndexWraps(t *testing.T) {
	for _, tt := range []struct{ in, want int }{{0, 0}, {1, 1}, {3, 1}, {-1, 1}, {-2, 0}} {
		p := testCreatureParams(t)
		p.EvolutionIndex = tt.in
		c := newTestCreature(t, newTestAssembler(t, 3), p, nil)
		assert.Equal(t, tt.want, c.EvolutionIndex(), "index %d", tt.in)
		assert.Equal(t, len(p.Evolutions[tt.want].MainSectionChildren), c.Main().Len())
		assert.Equal(t, len(p.Evolutions[tt.want].MirrorSectionChildren), c.Mirror().Len())
	}
}

func TestCreatureDisposeReleasesLabel(t *testing.T) {
	r := &fakeRenderer{}
	p := testCreatureParams(t)
	p.Name = "Fern"
	c := newTestCreature(t, newTestAssembler(t, 3), p, r)
	root := c.Node()

	c.Dispose()
	assert.False(t, c.Alive())
	assert.True(t, root.IsDisposed())
	require.Len(t, r.textures, 1)
	assert.True(t, r.textures[0].disposed)
	assert.NotPanics(t, c.Dispose)
	assert.NotPanics(t, func() { c.Tick(1) })
}
