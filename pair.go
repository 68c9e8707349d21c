package bramble

// Pair is a cluster of two chains side by side: the leading chain and a
// second chain placed to its right. It is the usual source for masks.
type Pair struct {
	Root   *Node
	First  *Section
	Second *Section

	ElementA string
	ElementB string
}

// Leading returns the first chain.
func (p *Pair) Leading() *Node { return p.First.Root }

// Whole returns both chains.
func (p *Pair) Whole() *Node { return p.Root }

// Bounds returns the pair's bounds in its root's parent space.
func (p *Pair) Bounds() Rect { return p.Root.Bounds() }

// NumElements returns the number of element nodes in both chains.
func (p *Pair) NumElements() int { return p.Root.NumElements() }

// Dispose releases the pair's nodes.
func (p *Pair) Dispose() { p.Root.Dispose() }

// AssemblePair builds a cluster from two elements of creatureType, given by
// index into its sorted element keys. Chain lengths in links are drawn from
// Config.Pair. When both elements are the same the second chain reuses the
// first chain's spec half of the time. The first chain is skewed by
// -Config.Pair.Skew and never mirrored; the second is skewed by
// +Config.Pair.Skew, mirrored with probability 1/2, and shifted right by its
// own width.
func (a *Assembler) AssemblePair(creatureType string, indexA, indexB int) (*Pair, error) {
	keyA, err := a.Catalog.ElementAt(creatureType, indexA)
	if err != nil {
		return nil, err
	}
	keyB, err := a.Catalog.ElementAt(creatureType, indexB)
	if err != nil {
		return nil, err
	}

	pc := a.Config.Pair
	specA, err := Resolve(a.Catalog, creatureType, keyA, pc.First.Min, pc.First.Max, a.Rand)
	if err != nil {
		return nil, err
	}
	specB := specA
	if a.Rand.Float64() < 0.5 || keyA != keyB {
		if specB, err = Resolve(a.Catalog, creatureType, keyB, pc.Second.Min, pc.Second.Max, a.Rand); err != nil {
			return nil, err
		}
	}

	first, err := a.Assemble(specA, Orientation{Mirror: MirrorNever, Skew: -pc.Skew})
	if err != nil {
		return nil, err
	}
	first.Root.Name = "first"
	second, err := a.Assemble(specB, Orientation{Mirror: MirrorRandom, Skew: pc.Skew})
	if err != nil {
		first.Root.Dispose()
		return nil, err
	}
	second.Root.Name = "second"
	b := second.Root.Bounds()
	second.Root.SetPosition(second.Root.X+b.Width, second.Root.Y)

	root := NewContainer("pair")
	root.AddChild(first.Root)
	root.AddChild(second.Root)
	logger.Debug("pair assembled", "type", creatureType, "a", keyA, "b", keyB,
		"links", [2]int{specA.Len(), specB.Len()}, "mirrored", second.Mirrored())
	return &Pair{Root: root, First: first, Second: second, ElementA: keyA, ElementB: keyB}, nil
}
