package bramble

import "fmt"

// CreatureParams describes a creature to assemble.
type CreatureParams struct {
	// Name is drawn as a label under the body when non-empty.
	Name         string
	CreatureType string
	// ElementIndex selects the start element among the creature type's
	// element keys in sorted order.
	ElementIndex int
	// EvolutionIndex is the initial stage, taken modulo len(Evolutions).
	EvolutionIndex int
	Evolutions     []EvolutionStage
	// Scale is the uniform presentation scale. Zero means 1.
	Scale    float64
	Rotation float64
	Fill     Color
}

// Creature is an assembled composite: a main section and a mirror section
// anchored on one of its elements, plus an optional name label. It animates
// through StartAnimatingGrowth and Evolve, driven by Tick.
type Creature struct {
	Name       string
	Type       string
	ElementKey string

	root   *Node
	body   *Node
	main   *Section
	mirror *Section
	label  *Node

	asm            *Assembler
	cfg            Config
	fill           Color
	evolutions     []EvolutionStage
	evolutionIndex int

	ctl   controller
	alive bool
}

// AssembleCreature builds a creature. The main section is a chain of
// len(MainSectionChildren)-1 links from the start element, scaled per
// element; the mirror section is built likewise from the stage's mirror
// settings. r renders the name label and may be nil when p.Name is empty.
// On error nothing is returned and everything built so far is disposed.
func (a *Assembler) AssembleCreature(p CreatureParams, r Renderer) (*Creature, error) {
	if len(p.Evolutions) == 0 {
		return nil, fmt.Errorf("%w: creature %q has no evolutions", ErrMissingEvolutionStage, p.Name)
	}
	key, err := a.Catalog.ElementAt(p.CreatureType, p.ElementIndex)
	if err != nil {
		return nil, err
	}
	n := len(p.Evolutions)
	idx := ((p.EvolutionIndex % n) + n) % n

	c := &Creature{
		Name:           p.Name,
		Type:           p.CreatureType,
		ElementKey:     key,
		asm:            a,
		cfg:            a.Config,
		fill:           p.Fill,
		evolutions:     p.Evolutions,
		evolutionIndex: idx,
		alive:          true,
	}
	if err := c.build(p, r); err != nil {
		if c.root != nil {
			c.root.Dispose()
		}
		c.disposeLabel()
		return nil, fmt.Errorf("bramble: assemble creature %q: %w", p.Name, err)
	}
	logger.Debug("creature assembled", "name", c.Name, "type", c.Type, "element", key,
		"evolution", idx, "elements", c.NumElements())
	return c, nil
}

func (c *Creature) build(p CreatureParams, r Renderer) error {
	st := c.evolutions[c.evolutionIndex]

	c.root = NewContainer("creature")
	c.body = NewContainer("body")
	c.root.AddChild(c.body)

	main, err := c.asm.AssembleChain(c.Type, c.ElementKey, st.MainSectionChildren)
	if err != nil {
		return err
	}
	main.Root.Name = "main"
	main.SetFill(c.fill)
	c.body.AddChild(main.Root)
	c.main = main

	mirror, err := c.buildMirror(st)
	if err != nil {
		return err
	}
	c.body.AddChild(mirror.Root)
	c.mirror = mirror

	if p.Name != "" {
		if r == nil {
			return fmt.Errorf("no renderer for label %q", p.Name)
		}
		if err := c.buildLabel(r); err != nil {
			return err
		}
	}

	// Rotate and scale about the centre of the whole creature.
	lb := c.root.LocalBounds()
	c.root.SetPivot(lb.X+lb.Width/2, lb.Y+lb.Height/2)
	s := p.Scale
	if s == 0 {
		s = 1
	}
	c.root.SetScale(s, s)
	c.root.SetRotation(p.Rotation)
	return nil
}

// buildMirror assembles the mirror section of st and anchors its left edge on
// the midpoint of the right edge of the parent element, vertically centred.
// Placement is measured in body space, which the presentation rotation does
// not affect.
func (c *Creature) buildMirror(st EvolutionStage) (*Section, error) {
	if err := st.checkMirror(c.main.Len()); err != nil {
		return nil, err
	}
	sec, err := c.asm.AssembleChain(c.Type, c.ElementKey, st.MirrorSectionChildren)
	if err != nil {
		return nil, err
	}
	sec.Root.Name = "mirror"
	sec.SetFill(c.fill)
	sec.Root.SetScale(st.MirrorSectionScale, st.MirrorSectionScale)

	pb := c.main.Element(st.MirrorSectionParentIndex).BoundsIn(c.body)
	mb := sec.Root.Bounds()
	sec.Root.SetPosition(pb.X+pb.Width, pb.Y+pb.Height/2-mb.Height/2)
	return sec, nil
}

func (c *Creature) buildLabel(r Renderer) error {
	lc := c.cfg.Label
	ln, err := r.RenderText(c.Name, TextStyle{
		Size:        lc.FontSize,
		Fill:        c.fill,
		Stroke:      lc.Stroke,
		StrokeWidth: lc.StrokeWidth,
	})
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}
	ln.Name = "label"
	ln.SetScale(lc.Scale, lc.Scale)
	bb := c.body.LocalBounds()
	w := ln.LocalBounds().Width
	ln.SetPosition(bb.Width/2-w*lc.Scale/2, bb.Height+lc.OffsetY)
	c.root.AddChild(ln)
	c.label = ln
	return nil
}

func (c *Creature) disposeLabel() {
	if c.label == nil {
		return
	}
	if c.label.Texture != nil {
		c.label.Texture.Dispose()
		c.label.Texture = nil
	}
	c.label.Dispose()
	c.label = nil
}

// Node returns the creature's root node.
func (c *Creature) Node() *Node { return c.root }

// Main returns the main section.
func (c *Creature) Main() *Section { return c.main }

// Mirror returns the mirror section.
func (c *Creature) Mirror() *Section { return c.mirror }

// Label returns the name label node, or nil.
func (c *Creature) Label() *Node { return c.label }

// Leading returns the main section root.
func (c *Creature) Leading() *Node { return c.main.Root }

// Whole returns the body: both sections without the label.
func (c *Creature) Whole() *Node { return c.body }

// Bounds returns the creature's bounds in its root's parent space.
func (c *Creature) Bounds() Rect { return c.root.Bounds() }

// NumElements returns the number of element nodes in both sections.
func (c *Creature) NumElements() int { return c.body.NumElements() }

// EvolutionIndex returns the current evolution stage index. It advances as
// soon as Evolve is called.
func (c *Creature) EvolutionIndex() int { return c.evolutionIndex }

// Alive reports whether the creature has not been disposed.
func (c *Creature) Alive() bool { return c.alive }

// Tick advances running transitions and then the node tree by dt seconds.
func (c *Creature) Tick(dt float32) {
	if !c.alive {
		return
	}
	c.tickTransitions(dt)
	if c.alive {
		c.root.Tick(dt)
	}
}

// Dispose releases the creature. Queued and running transitions fail with
// ErrDisposed.
func (c *Creature) Dispose() {
	if !c.alive {
		return
	}
	c.alive = false
	c.failPending(ErrDisposed)
	c.disposeLabel()
	c.root.Dispose()
	logger.Debug("creature disposed", "name", c.Name)
}
