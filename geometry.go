package bramble

import (
	"fmt"
	"slices"
	"strings"
)

// Layer names looked up in element assets.
const (
	LayerMainShape  = "main-shape"
	LayerOrigin     = "origin"
	LayerConnectors = "connectors"
)

// Anchor is one attachment point of a connector. AttachmentOffset is the
// value encoded in the marker's name.
type Anchor struct {
	Position         Vec2
	AttachmentOffset Vec2
}

// Layer is a drawable part of an element, tessellated into closed or open
// polylines in element space.
type Layer struct {
	Name     string
	Contours [][]Vec2
	Bounds   Rect
}

// connectorGroup keeps connectors in document order so prefix lookups are
// stable.
type connectorGroup struct {
	name    string
	anchors []Anchor
}

// ElementGeometry is the parsed, immutable form of one element asset. It is
// shared by pointer between every node that renders the element and must not
// be modified after BuildGeometry returns it.
type ElementGeometry struct {
	Key     string
	Layers  []Layer
	Origin  Vec2
	Bounds  Rect
	Density int

	// Connectors maps connector type to its anchors, in document order.
	Connectors map[string][]Anchor

	groups []connectorGroup
}

// Layer returns the layer with the given name, or nil.
func (g *ElementGeometry) Layer(name string) *Layer {
	for i := range g.Layers {
		if g.Layers[i].Name == name {
			return &g.Layers[i]
		}
	}
	return nil
}

// Connector returns the index-th anchor of the connector for typ. A connector
// group named exactly typ wins; otherwise the first group whose name starts
// with typ is used.
func (g *ElementGeometry) Connector(typ string, index int) (Anchor, error) {
	anchors, ok := g.Connectors[typ]
	if !ok {
		for _, grp := range g.groups {
			if strings.HasPrefix(grp.name, typ) {
				anchors, ok = grp.anchors, true
				break
			}
		}
	}
	if !ok {
		return Anchor{}, fmt.Errorf("%w: %s has no connector %q", ErrConnectorNotFound, g.Key, typ)
	}
	if index < 0 || index >= len(anchors) {
		return Anchor{}, fmt.Errorf("%w: %s connector %q index %d of %d",
			ErrConnectorNotFound, g.Key, typ, index, len(anchors))
	}
	return anchors[index], nil
}

// BuildGeometry extracts the main shape, origin and connector anchors from a
// parsed asset. Each curve segment of the main shape is approximated by
// density points. A missing main shape is a parse failure; a missing origin
// defaults to (0, 0).
func BuildGeometry(key string, root *Shape, density int) (*ElementGeometry, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: %s: empty document", ErrAssetParse, key)
	}
	if density < 1 {
		density = 1
	}
	main := root.Find(LayerMainShape)
	if main == nil {
		return nil, fmt.Errorf("%w: %s: no %q layer", ErrAssetParse, key, LayerMainShape)
	}

	g := &ElementGeometry{
		Key:        key,
		Density:    density,
		Connectors: make(map[string][]Anchor),
	}

	layer := Layer{Name: LayerMainShape}
	collectContours(main, density, &layer.Contours)
	var all []Vec2
	for _, c := range layer.Contours {
		all = append(all, c...)
	}
	layer.Bounds = pointsBounds(all)
	g.Layers = append(g.Layers, layer)
	g.Bounds = layer.Bounds

	if o := root.Find(LayerOrigin); o != nil {
		g.Origin, _ = o.Position()
	}

	if grp := root.Find(LayerConnectors); grp != nil {
		for _, c := range grp.Children {
			g.addConnectorGroups(c)
		}
	}
	return g, nil
}

// collectContours tessellates s and its descendants into polylines.
func collectContours(s *Shape, density int, out *[][]Vec2) {
	var cur []Vec2
	var start Vec2
	flush := func() {
		if len(cur) > 1 {
			*out = append(*out, cur)
		}
		cur = nil
	}
	for _, seg := range s.Segments {
		switch seg.Op {
		case SegMove:
			flush()
			start = seg.P[0]
			cur = []Vec2{start}
		case SegLine:
			cur = appendStart(cur, start)
			cur = append(cur, seg.P[0])
		case SegQuad:
			cur = appendStart(cur, start)
			p0 := cur[len(cur)-1]
			for i := 1; i <= density; i++ {
				cur = append(cur, quadPoint(p0, seg.P[0], seg.P[1], float64(i)/float64(density)))
			}
		case SegCubic:
			cur = appendStart(cur, start)
			p0 := cur[len(cur)-1]
			for i := 1; i <= density; i++ {
				cur = append(cur, cubicPoint(p0, seg.P[0], seg.P[1], seg.P[2], float64(i)/float64(density)))
			}
		case SegClose:
			if len(cur) > 0 && cur[len(cur)-1] != start {
				cur = append(cur, start)
			}
			flush()
		}
	}
	flush()
	for _, c := range s.Children {
		collectContours(c, density, out)
	}
}

func appendStart(cur []Vec2, start Vec2) []Vec2 {
	if len(cur) == 0 {
		return []Vec2{start}
	}
	return cur
}

func quadPoint(p0, p1, p2 Vec2, t float64) Vec2 {
	u := 1 - t
	return Vec2{
		u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
		u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
	}
}

func cubicPoint(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	u := 1 - t
	return Vec2{
		u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
		u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
	}
}

// addConnectorGroups registers s as a connector group when its children are
// all markers. Editor layers and other wrapper groups are searched instead.
func (g *ElementGeometry) addConnectorGroups(s *Shape) {
	if slices.ContainsFunc(s.Children, func(c *Shape) bool { return len(c.Children) > 0 }) {
		for _, c := range s.Children {
			g.addConnectorGroups(c)
		}
		return
	}
	if s.Name == "" || (len(s.Children) == 0 && len(s.Segments) > 0) {
		return
	}
	anchors := make([]Anchor, 0, len(s.Children))
	for _, m := range s.Children {
		p, _ := m.Position()
		anchors = append(anchors, Anchor{Position: p, AttachmentOffset: decodeAnchorName(m.Name)})
	}
	if _, dup := g.Connectors[s.Name]; !dup {
		g.Connectors[s.Name] = anchors
	}
	g.groups = append(g.groups, connectorGroup{name: s.Name, anchors: anchors})
}
