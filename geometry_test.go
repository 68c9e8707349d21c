package bramble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestGeometry(t *testing.T, key, src string, density int) *ElementGeometry {
	t.Helper()
	root, err := SVGParser{}.Parse([]byte(src))
	require.NoError(t, err)
	g, err := BuildGeometry(key, root, density)
	require.NoError(t, err)
	return g
}

func TestBuildGeometry(t *testing.T) {
	g := buildTestGeometry(t, "stem", stemSVG, 4)

	assert.Equal(t, "stem", g.Key)
	assert.Equal(t, Vec2{5, 100}, g.Origin)
	assert.Equal(t, Rect{Width: 10, Height: 100}, g.Bounds)

	layer := g.Layer(LayerMainShape)
	require.NotNil(t, layer)
	require.Len(t, layer.Contours, 1)
	assert.Len(t, layer.Contours[0], 5, "closed rect")
	assert.Nil(t, g.Layer("missing"))

	require.Len(t, g.Connectors["leaf"], 2)
	assert.Equal(t, Vec2{-1, 0}, g.Connectors["leaf"][0].AttachmentOffset)
}

func TestConnectorLookup(t *testing.T) {
	g := buildTestGeometry(t, "stem", stemSVG, 4)

	a, err := g.Connector("leaf", 1)
	require.NoError(t, err)
	assert.Equal(t, Vec2{10, 50}, a.Position)
	assert.Equal(t, Vec2{1, 0}, a.AttachmentOffset)

	a, err = g.Connector("st", 0)
	require.NoError(t, err, "prefix match")
	assert.Equal(t, Vec2{5, 0}, a.Position)

	_, err = g.Connector("leaf", 2)
	assert.ErrorIs(t, err, ErrConnectorNotFound)
	_, err = g.Connector("leaf", -1)
	assert.ErrorIs(t, err, ErrConnectorNotFound)
	_, err = g.Connector("root", 0)
	assert.ErrorIs(t, err, ErrConnectorNotFound)
}

func TestConnectorPrefixFallback(t *testing.T) {
	g := buildTestGeometry(t, "leaf", leafSVG, 4)

	a, err := g.Connector("leaf", 0)
	require.NoError(t, err)
	assert.Equal(t, Vec2{10, 2}, a.Position)
}

func TestConnectorGroupsInNestedLayers(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg">
  <rect id="main-shape" x="0" y="0" width="10" height="10"/>
  <g id="connectors">
    <g id="layer1">
      <g>
        <g id="stem"><circle id="0_-1" cx="5" cy="0" r="1"/></g>
      </g>
      <g id="leaf">
        <circle id="-1_0" cx="0" cy="5" r="1"/>
        <circle id="1_0" cx="10" cy="5" r="1"/>
      </g>
    </g>
    <circle id="stray" cx="1" cy="1" r="1"/>
  </g>
</svg>`
	g := buildTestGeometry(t, "nested", src, 4)

	assert.Len(t, g.Connectors, 2)
	assert.NotContains(t, g.Connectors, "layer1")
	assert.NotContains(t, g.Connectors, "stray")

	a, err := g.Connector("stem", 0)
	require.NoError(t, err)
	assert.Equal(t, Vec2{5, 0}, a.Position)
	assert.Equal(t, Vec2{0, -1}, a.AttachmentOffset)

	a, err = g.Connector("leaf", 1)
	require.NoError(t, err)
	assert.Equal(t, Vec2{10, 5}, a.Position)
}

func TestBuildGeometryTessellatesCurves(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg">
  <circle id="main-shape" cx="0" cy="0" r="10"/>
</svg>`
	for _, density := range []int{1, 4, 20} {
		g := buildTestGeometry(t, "dot", src, density)
		c := g.Layers[0].Contours
		require.Len(t, c, 1)
		assert.GreaterOrEqual(t, len(c[0]), 1+4*density)
		assert.Equal(t, Vec2{}, g.Origin, "missing origin defaults to zero")
		assert.InDelta(t, 20, g.Bounds.Width, 0.1)
	}
}

func TestBuildGeometryRequiresMainShape(t *testing.T) {
	root, err := SVGParser{}.Parse([]byte(`<svg><circle id="origin" cx="0" cy="0" r="1"/></svg>`))
	require.NoError(t, err)
	_, err = BuildGeometry("x", root, 4)
	assert.ErrorIs(t, err, ErrAssetParse)

	_, err = BuildGeometry("x", nil, 4)
	assert.ErrorIs(t, err, ErrAssetParse)
}
