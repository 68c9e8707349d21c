package bramble

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// stemSVG is a 10x100 bar standing on its origin, with one anchor for the
// next stem on top and two leaf anchors on its sides.
const stemSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10" height="100">
  <g id="main-shape"><rect x="0" y="0" width="10" height="100"/></g>
  <circle id="origin" cx="5" cy="100" r="1"/>
  <g id="connectors">
    <g id="stem"><circle id="0_-1" cx="5" cy="0" r="1"/></g>
    <g id="leaf">
      <circle id="-1_0" cx="0" cy="50" r="1"/>
      <circle id="1_0" cx="10" cy="50" r="1"/>
    </g>
  </g>
</svg>`

// leafSVG is a 20x40 blade with its origin at the bottom centre.
const leafSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="20" height="40">
  <g id="main-shape"><rect x="0" y="0" width="20" height="40"/></g>
  <circle id="origin" cx="10" cy="40" r="1"/>
  <g id="connectors">
    <g id="stem"><circle id="0_-1" cx="10" cy="0" r="1"/></g>
    <g id="leaf-tip"><circle id="0_-1_tip" cx="10" cy="2" r="1"/></g>
  </g>
</svg>`

const testCatalogYAML = `
fern:
  stem:
    name: Stem
    connectors:
      stem: 1
      leaf: 2
  leaf:
    name: Leaf
    connectors:
      stem: 1
      leaf: 1
dead:
  a:
    connectors:
      b: 1
  b:
    connectors: {}
`

const testEvolutionsYAML = `
- main_section_children: [1, 1, 1]
  main_section_children_anims:
    - [1, 0.9, 0.8]
    - [1, 0.8, 0.6]
  mirror_section_children: [1, 1]
  mirror_section_scale: 0.5
  mirror_section_parent_index: 1
- main_section_children: [1, 0.5, 0.25]
  main_section_children_anims:
    - [1, 0.9, 0.8]
    - [1, 0.7, 0.5]
  mirror_section_children: [1]
  mirror_section_parent_index: 0
`

var testAssets = map[string]string{
	"stem": stemSVG,
	"leaf": leafSVG,
}

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*31+7))
}

func testAssetSource() AssetSource {
	return AssetFunc(func(key string) ([]byte, error) {
		s, ok := testAssets[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownElement, key)
		}
		return []byte(s), nil
	})
}

func testCatalog(t *testing.T) Catalog {
	t.Helper()
	cat, err := LoadCatalog([]byte(testCatalogYAML))
	require.NoError(t, err)
	return cat
}

func testEvolutions(t *testing.T) []EvolutionStage {
	t.Helper()
	stages, err := LoadEvolutions([]byte(testEvolutionsYAML))
	require.NoError(t, err)
	return stages
}

// testConfig is DefaultConfig with the fixed growth delays removed.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Growth.SettleDelay = 0
	cfg.Growth.MirrorRegrow = 0
	return cfg
}

func newTestAssembler(t *testing.T, seed uint64) *Assembler {
	t.Helper()
	cfg := testConfig()
	cache := NewGeometryCache(SVGParser{}, cfg.Tessellation)
	return NewAssembler(testCatalog(t), cache, testAssetSource(), cfg, newTestRand(seed))
}

// --- fake renderer ---

type fakeTexture struct {
	w, h     int
	disposed bool
}

func (t *fakeTexture) Width() int  { return t.w }
func (t *fakeTexture) Height() int { return t.h }
func (t *fakeTexture) Dispose()    { t.disposed = true }

type combineCall struct {
	content *Node
	blur    BlurParams
}

// fakeRenderer sizes textures from node bounds without drawing anything.
type fakeRenderer struct {
	rasterized []*Node
	textures   []*fakeTexture
	combines   []combineCall
	texts      []string
	failText   error
}

func (r *fakeRenderer) Rasterize(n *Node) (Texture, error) {
	b := n.Bounds()
	tex := &fakeTexture{w: int(math.Ceil(b.Width)), h: int(math.Ceil(b.Height))}
	r.rasterized = append(r.rasterized, n)
	r.textures = append(r.textures, tex)
	return tex, nil
}

func (r *fakeRenderer) Combine(content *Node, blur BlurParams) (*Node, error) {
	r.combines = append(r.combines, combineCall{content: content, blur: blur})
	b := content.Bounds()
	n := NewRect("combined", b.Width, b.Height, ColorWhite)
	n.X, n.Y = b.X, b.Y
	return n, nil
}

func (r *fakeRenderer) RenderText(s string, style TextStyle) (*Node, error) {
	if r.failText != nil {
		return nil, r.failText
	}
	r.texts = append(r.texts, s)
	n := NewText(s, &TextBlock{
		Content: s,
		Style:   style,
		Width:   float64(len(s)) * style.Size / 2,
		Height:  style.Size,
	})
	tex := &fakeTexture{w: int(n.Text.Width), h: int(n.Text.Height)}
	r.textures = append(r.textures, tex)
	n.Texture = tex
	return n, nil
}

var _ Renderer = (*fakeRenderer)(nil)

const eps = 1e-9
