// Package bramble assembles procedural creatures from vector elements and
// animates their growth and evolution, rendered with [Ebitengine].
//
// A creature is a chain of elements. Each element is an SVG drawing with a
// main shape, an origin point, and named groups of connector anchors. A
// [Catalog] says which elements may follow which, and how many anchors each
// offers; [Resolve] walks it at random to produce a [ChainSpec], and the
// [Assembler] instantiates the chain, placing every element's origin on its
// predecessor's anchor.
//
// # Quick start
//
//	cat, _ := bramble.LoadCatalog(catalogYAML)
//	evolutions, _ := bramble.LoadEvolutions(evolutionsYAML)
//	cfg := bramble.DefaultConfig()
//
//	cache := bramble.NewGeometryCache(bramble.SVGParser{}, cfg.Tessellation)
//	src := bramble.DirAssetSource{FS: assets, Dir: "elements"}
//	asm := bramble.NewAssembler(cat, cache, src, cfg, rand.New(rand.NewPCG(1, 2)))
//
//	renderer, _ := bramble.NewEbitenRenderer()
//	c, err := asm.AssembleCreature(bramble.CreatureParams{
//		Name:         "Fiddlehead",
//		CreatureType: "fern",
//		Evolutions:   evolutions,
//		Fill:         bramble.RGBA8(86, 160, 72, 1),
//	}, renderer)
//
// Drive it from your game loop:
//
//	c.StartAnimatingGrowth(0.4)
//	// every frame:
//	c.Tick(dt)
//	renderer.Draw(screen, c.Node())
//
// # Geometry
//
// Element assets are parsed once per key by a [GeometryCache]. Concurrent
// requests for the same key share a single parse, and a failed parse is not
// remembered, so the next request retries it. Parsed [ElementGeometry] is
// immutable and shared by every node that draws it.
//
// # Creatures
//
// A [Creature] has a main section and a mirror section anchored on the
// right edge of one main element. [Creature.StartAnimatingGrowth] reveals
// every element in chain order; [Creature.Evolve] fades the mirror out,
// resizes the main section through two intermediate steps, and grows a new
// mirror. Transitions are queued and run one at a time; each call returns a
// [*Transition] handle. Progress can be observed through an [EventSink];
// the ecs subpackage publishes it into a Donburi world.
//
// # Masks and compositing
//
// A [MaskGenerator] derives a silhouette from any [MaskSource], such as a
// [Creature] or a [Pair] cluster, in one of four variants. A [Compositor]
// then clips a radial gradient to the silhouette and layers a softened copy
// of it on top.
//
// # Threading
//
// The scene graph and creatures are single-threaded: build, tick and draw
// them from the game loop. Only [GeometryCache] is safe for concurrent use.
//
// [Ebitengine]: https://ebitengine.org
package bramble
