package bramble

import "fmt"

// MirrorMode selects whether an assembled chain is flipped horizontally.
type MirrorMode uint8

const (
	MirrorRandom MirrorMode = iota // flip with probability 1/2
	MirrorNever
	MirrorAlways
)

// Orientation controls the final pose of an assembled chain.
type Orientation struct {
	Mirror MirrorMode
	// Skew is applied as SkewX to every element, in radians.
	Skew float64
}

// Assembler turns chain specs into positioned scene graphs. Geometry comes
// from Cache, loading missing assets from Assets.
type Assembler struct {
	Catalog Catalog
	Cache   *GeometryCache
	Assets  AssetSource
	Config  Config
	Rand    Rand
}

// NewAssembler creates an Assembler.
func NewAssembler(cat Catalog, cache *GeometryCache, assets AssetSource, cfg Config, rng Rand) *Assembler {
	return &Assembler{Catalog: cat, Cache: cache, Assets: assets, Config: cfg, Rand: rng}
}

// Assemble builds the section for spec. The first element's origin sits at
// the section's local origin; every following element's origin sits on its
// predecessor's anchor for the link. When the section is mirrored it is
// re-offset by its own width so its bounds are unchanged.
func (a *Assembler) Assemble(spec ChainSpec, o Orientation) (*Section, error) {
	keys := spec.Keys()
	root := NewContainer("section")
	sec := &Section{Root: root, Spec: spec, nodes: make([]*Node, 0, len(keys))}

	for _, key := range keys {
		geom, err := a.geometry(key)
		if err != nil {
			root.Dispose()
			return nil, err
		}
		n := NewElement(key, geom)
		n.SkewX = o.Skew
		root.AddChild(n)
		sec.nodes = append(sec.nodes, n)
	}
	if err := sec.layout(); err != nil {
		root.Dispose()
		return nil, err
	}

	switch o.Mirror {
	case MirrorAlways:
		sec.mirrored = true
	case MirrorRandom:
		sec.mirrored = a.Rand.Float64() < 0.5
	}
	if sec.mirrored {
		b := root.Bounds()
		root.ScaleX = -root.ScaleX
		root.X = 2*b.X + b.Width - root.X
		root.MarkDirty()
	}
	return sec, nil
}

// AssembleChain resolves a chain of len(scales)-1 links from start and
// assembles it without mirroring, scaling element i by scales[i].
func (a *Assembler) AssembleChain(creatureType, start string, scales []float64) (*Section, error) {
	if len(scales) == 0 {
		return nil, fmt.Errorf("%w: section has no children", ErrMissingEvolutionStage)
	}
	spec, err := ResolveN(a.Catalog, creatureType, start, len(scales)-1, a.Rand)
	if err != nil {
		return nil, err
	}
	sec, err := a.Assemble(spec, Orientation{Mirror: MirrorNever})
	if err != nil {
		return nil, err
	}
	if err := sec.SetScales(scales); err != nil {
		sec.Root.Dispose()
		return nil, err
	}
	return sec, nil
}

func (a *Assembler) geometry(key string) (*ElementGeometry, error) {
	if g, ok := a.Cache.Lookup(key); ok {
		return g, nil
	}
	if a.Assets == nil {
		return nil, fmt.Errorf("%w: %s: no asset source", ErrUnknownElement, key)
	}
	return a.Cache.Load(key, a.Assets)
}
