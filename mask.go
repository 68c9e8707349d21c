package bramble

import (
	"fmt"
	"math"
)

// MaskVariant selects how a mask silhouette is derived from a shape.
type MaskVariant uint8

const (
	MaskSingle        MaskVariant = iota // the leading chain alone
	MaskGrouped                          // the whole shape
	MaskSquareReplica                    // the shape plus one half-size mirrored copy
	MaskRadialReplica                    // N rotated copies around a pivot
	numMaskVariants
)

var maskVariantNames = [...]string{"single", "grouped", "square-replica", "radial-replica"}

// String returns the variant's name.
func (v MaskVariant) String() string {
	if v < numMaskVariants {
		return maskVariantNames[v]
	}
	return fmt.Sprintf("MaskVariant(%d)", v)
}

// MaskSource is a shape masks can be derived from.
type MaskSource interface {
	// Leading returns the first chain of the shape.
	Leading() *Node
	// Whole returns the complete shape.
	Whole() *Node
}

// MaskShape is a derived silhouette: a tree of sprites drawing textures
// rasterized from the source. The caller owns it and should Dispose it once
// composited.
type MaskShape struct {
	Variant MaskVariant
	Root    *Node
	Bounds  Rect

	// Quadrant is the placement of the SquareReplica copy, in [0, 4).
	Quadrant int
	// RadiusFactor and Copies describe a RadialReplica.
	RadiusFactor float64
	Copies       int

	textures []Texture
}

// Dispose releases the mask's textures and nodes.
func (m *MaskShape) Dispose() {
	for _, t := range m.textures {
		t.Dispose()
	}
	m.textures = nil
	if m.Root != nil {
		m.Root.Dispose()
	}
}

// MaskGenerator derives mask shapes.
type MaskGenerator struct {
	Config MaskConfig
}

// NewMaskGenerator creates a generator using cfg.
func NewMaskGenerator(cfg MaskConfig) *MaskGenerator {
	return &MaskGenerator{Config: cfg}
}

// ChooseVariant draws a variant with odds proportional to Config.Weights.
func (g *MaskGenerator) ChooseVariant(rng Rand) MaskVariant {
	total := 0.0
	for _, w := range g.Config.Weights {
		total += math.Max(w, 0)
	}
	if total <= 0 {
		return MaskSingle
	}
	pv := rng.Float64() * total
	sum := 0.0
	for i, w := range g.Config.Weights {
		if i >= int(numMaskVariants) {
			break
		}
		sum += math.Max(w, 0)
		if pv < sum {
			return MaskVariant(i)
		}
	}
	return MaskVariant(min(len(g.Config.Weights), int(numMaskVariants)) - 1)
}

// Generate picks a variant and builds it. The source is not modified.
func (g *MaskGenerator) Generate(src MaskSource, r Renderer, rng Rand) (*MaskShape, error) {
	return g.Build(g.ChooseVariant(rng), src, r, rng)
}

// Build builds the given variant.
func (g *MaskGenerator) Build(v MaskVariant, src MaskSource, r Renderer, rng Rand) (*MaskShape, error) {
	m := &MaskShape{Variant: v, Root: NewContainer("mask")}

	var err error
	switch v {
	case MaskSingle:
		err = g.buildCentered(m, src.Leading(), r)
	case MaskGrouped:
		err = g.buildCentered(m, src.Whole(), r)
	case MaskSquareReplica:
		err = g.buildSquare(m, src.Whole(), r, rng)
	case MaskRadialReplica:
		err = g.buildRadial(m, src.Whole(), r, rng)
	default:
		err = fmt.Errorf("bramble: unknown mask variant %d", v)
	}
	if err != nil {
		m.Dispose()
		return nil, err
	}
	m.Bounds = m.Root.LocalBounds()
	logger.Debug("mask generated", "variant", v, "bounds", m.Bounds)
	return m, nil
}

func (g *MaskGenerator) rasterize(m *MaskShape, n *Node, r Renderer) (Texture, error) {
	if n == nil {
		return nil, fmt.Errorf("bramble: mask source has no %s shape", m.Variant)
	}
	tex, err := r.Rasterize(n)
	if err != nil {
		return nil, fmt.Errorf("bramble: rasterize %s mask: %w", m.Variant, err)
	}
	m.textures = append(m.textures, tex)
	return tex, nil
}

func (g *MaskGenerator) buildCentered(m *MaskShape, n *Node, r Renderer) error {
	tex, err := g.rasterize(m, n, r)
	if err != nil {
		return err
	}
	sp := NewSprite("mask-base", tex)
	sp.X = -float64(tex.Width()) / 2
	sp.Y = -float64(tex.Height()) / 2
	m.Root.AddChild(sp)
	return nil
}

func (g *MaskGenerator) buildSquare(m *MaskShape, n *Node, r Renderer, rng Rand) error {
	tex, err := g.rasterize(m, n, r)
	if err != nil {
		return err
	}
	w, h := float64(tex.Width()), float64(tex.Height())

	base := NewSprite("mask-base", tex)
	base.X = -w / 2
	base.Y = -h
	m.Root.AddChild(base)

	s := g.Config.ReplicaScale
	cw, ch := w*s, h*s
	cp := NewSprite("mask-copy", tex)
	m.Quadrant = rng.IntN(4)
	switch m.Quadrant {
	case 0:
		cp.SetScale(s, s)
		cp.X = -cw / 2
	case 1:
		cp.SetScale(-s, s)
		cp.X = cw / 2
	case 2:
		cp.SetScale(s, -s)
		cp.X, cp.Y = -cw/2, ch
	case 3:
		cp.SetScale(-s, -s)
		cp.X, cp.Y = cw/2, ch
	}
	m.Root.AddChild(cp)
	return nil
}

func (g *MaskGenerator) buildRadial(m *MaskShape, n *Node, r Renderer, rng Rand) error {
	if len(g.Config.RadiusFactors) == 0 || len(g.Config.CopyCounts) == 0 {
		return fmt.Errorf("bramble: radial mask needs radius factors and copy counts")
	}
	tex, err := g.rasterize(m, n, r)
	if err != nil {
		return err
	}
	m.RadiusFactor = g.Config.RadiusFactors[rng.IntN(len(g.Config.RadiusFactors))]
	m.Copies = g.Config.CopyCounts[rng.IntN(len(g.Config.CopyCounts))]

	h := float64(tex.Height())
	step := 2 * math.Pi / float64(m.Copies)
	rot := 0.0
	for i := 0; i < m.Copies; i++ {
		sp := NewSprite(fmt.Sprintf("mask-copy-%d", i), tex)
		sp.PivotY = h * m.RadiusFactor
		sp.Rotation = rot
		// With four copies the third one is left out, leaving a gap.
		if m.Copies == 4 && i == 2 {
			sp.Alpha = 0
		}
		m.Root.AddChild(sp)
		rot += step
	}
	return nil
}
