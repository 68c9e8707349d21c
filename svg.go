package bramble

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"cogentcore.org/core/math32"
	"cogentcore.org/core/paint/ppath"
	"github.com/tdewolff/parse/v2/strconv"
	"golang.org/x/net/html/charset"
)

// Parser turns raw asset bytes into a tree of named shapes.
type Parser interface {
	Parse(data []byte) (*Shape, error)
}

// SegmentOp identifies a path segment kind.
type SegmentOp uint8

const (
	SegMove  SegmentOp = iota // P[0] = point
	SegLine                   // P[0] = end
	SegQuad                   // P[0] = control, P[1] = end
	SegCubic                  // P[0], P[1] = controls, P[2] = end
	SegClose                  // back to subpath start
)

// Segment is one path command in document space.
type Segment struct {
	Op SegmentOp
	P  [3]Vec2
}

// Shape is a node of a parsed vector asset: a named group or drawable with
// its path data flattened into document space.
type Shape struct {
	Name     string
	Tag      string
	Segments []Segment
	Children []*Shape

	marker    Vec2
	hasMarker bool

	// found memoizes Find results; shapes are immutable after parsing.
	found map[string]*Shape
}

// Position returns the shape's reference point: the centre of a circle,
// ellipse or rect, the first point of a path, or for a group the position of
// its first positioned descendant.
func (s *Shape) Position() (Vec2, bool) {
	if s.hasMarker {
		return s.marker, true
	}
	for _, c := range s.Children {
		if p, ok := c.Position(); ok {
			return p, true
		}
	}
	return Vec2{}, false
}

// Find returns the first shape in depth-first pre-order whose name equals
// name or starts with it, or nil. Results are memoized per query.
func (s *Shape) Find(name string) *Shape {
	if s.found == nil {
		s.found = make(map[string]*Shape)
	} else if r, ok := s.found[name]; ok {
		return r
	}
	r := findShape(s, name)
	s.found[name] = r
	return r
}

func findShape(s *Shape, name string) *Shape {
	if s.Name != "" && strings.HasPrefix(s.Name, name) {
		return s
	}
	for _, c := range s.Children {
		if r := findShape(c, name); r != nil {
			return r
		}
	}
	return nil
}

// decodeAnchorName reads the attachment offset encoded in a connector
// marker name such as "0.5_1" or "0.5_1_tip". Names with fewer than two
// "_"-separated tokens decode to (0, 0); a token without a numeric prefix
// decodes to 0.
func decodeAnchorName(name string) Vec2 {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return Vec2{}
	}
	x, _ := strconv.ParseFloat([]byte(parts[0]))
	y, _ := strconv.ParseFloat([]byte(parts[1]))
	return Vec2{x, y}
}

// SVGParser parses SVG documents. Group, path, rect, circle, ellipse, line,
// polyline and polygon elements are kept; transforms are applied to the
// point data. Arcs are converted to cubic Béziers.
type SVGParser struct{}

var skippedSVGTags = map[string]bool{
	"defs": true, "clipPath": true, "mask": true, "style": true,
	"title": true, "desc": true, "metadata": true, "namedview": true,
}

// Parse implements Parser.
func (SVGParser) Parse(data []byte) (*Shape, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	type frame struct {
		shape *Shape
		m     math32.Matrix2
	}
	var (
		root  *Shape
		stack []frame
		skip  int
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssetParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skip > 0 || skippedSVGTags[t.Name.Local] {
				skip++
				continue
			}
			m := math32.Identity2()
			if len(stack) > 0 {
				m = stack[len(stack)-1].m
			}
			if tr := attr(t, "transform"); tr != "" {
				var local math32.Matrix2
				if err := local.SetString(tr); err != nil {
					return nil, fmt.Errorf("%w: <%s transform=%q>: %v", ErrAssetParse, t.Name.Local, tr, err)
				}
				m = m.Mul(local)
			}
			sh := &Shape{Name: shapeName(t), Tag: t.Name.Local}
			if err := sh.readGeometry(t, m); err != nil {
				return nil, err
			}
			if root == nil {
				if t.Name.Local != "svg" {
					return nil, fmt.Errorf("%w: root element is <%s>, want <svg>", ErrAssetParse, t.Name.Local)
				}
				root = sh
			} else if len(stack) > 0 {
				parent := stack[len(stack)-1].shape
				parent.Children = append(parent.Children, sh)
			}
			stack = append(stack, frame{shape: sh, m: m})
		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no <svg> element", ErrAssetParse)
	}
	return root, nil
}

// shapeName prefers an editor label over data-name over id.
func shapeName(t xml.StartElement) string {
	var label, dataName, id string
	for _, a := range t.Attr {
		switch {
		case a.Name.Local == "label" && strings.Contains(a.Name.Space, "inkscape"):
			label = a.Value
		case a.Name.Local == "data-name":
			dataName = a.Value
		case a.Name.Local == "id" && a.Name.Space == "":
			id = a.Value
		}
	}
	switch {
	case label != "":
		return label
	case dataName != "":
		return dataName
	}
	return id
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

func attrFloat(t xml.StartElement, name string) (float64, error) {
	v := strings.TrimSpace(attr(t, name))
	if v == "" {
		return 0, nil
	}
	f, n := strconv.ParseFloat([]byte(v))
	if n == 0 {
		return 0, fmt.Errorf("%w: <%s %s=%q>", ErrAssetParse, t.Name.Local, name, v)
	}
	return f, nil
}

// readGeometry converts the element's own geometry into document space.
func (s *Shape) readGeometry(t xml.StartElement, m math32.Matrix2) error {
	var p ppath.Path
	switch t.Name.Local {
	case "path":
		var err error
		if p, err = parsePathData(attr(t, "d")); err != nil {
			return err
		}
	case "rect":
		v, err := attrFloats(t, "x", "y", "width", "height")
		if err != nil {
			return err
		}
		p.Rectangle(v[0], v[1], v[2], v[3])
		s.setMarker(m, math32.Vec2(v[0]+v[2]/2, v[1]+v[3]/2))
	case "circle":
		v, err := attrFloats(t, "cx", "cy", "r")
		if err != nil {
			return err
		}
		p.Circle(v[0], v[1], v[2])
		s.setMarker(m, math32.Vec2(v[0], v[1]))
	case "ellipse":
		v, err := attrFloats(t, "cx", "cy", "rx", "ry")
		if err != nil {
			return err
		}
		p.Ellipse(v[0], v[1], v[2], v[3])
		s.setMarker(m, math32.Vec2(v[0], v[1]))
	case "line":
		v, err := attrFloats(t, "x1", "y1", "x2", "y2")
		if err != nil {
			return err
		}
		p.Line(v[0], v[1], v[2], v[3])
	case "polyline", "polygon":
		pts, err := parsePoints(attr(t, "points"))
		if err != nil {
			return err
		}
		if t.Name.Local == "polygon" {
			p.Polygon(pts...)
		} else {
			p.Polyline(pts...)
		}
	default:
		return nil
	}

	segs := pathSegments(p.Transform(m))
	if !s.hasMarker && len(segs) > 0 {
		s.marker, s.hasMarker = segs[0].P[0], true
	}
	s.Segments = segs
	return nil
}

func (s *Shape) setMarker(m math32.Matrix2, p math32.Vector2) {
	s.marker, s.hasMarker = vec2(m.MulVector2AsPoint(p)), true
}

func vec2(v math32.Vector2) Vec2 {
	return Vec2{float64(v.X), float64(v.Y)}
}

func attrFloats(t xml.StartElement, names ...string) ([]float32, error) {
	out := make([]float32, len(names))
	for i, n := range names {
		v, err := attrFloat(t, n)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parsePathData parses SVG path data into absolute path commands.
func parsePathData(d string) (ppath.Path, error) {
	p, err := ppath.ParseSVGPath(d)
	if err != nil {
		return nil, fmt.Errorf("%w: path data: %v", ErrAssetParse, err)
	}
	return p, nil
}

// pathSegments converts path commands into segments. Any arc still present
// is replaced by cubic Béziers first.
func pathSegments(p ppath.Path) []Segment {
	var segs []Segment
	sc := p.Scanner()
	for sc.Scan() {
		switch sc.Cmd() {
		case ppath.MoveTo:
			segs = append(segs, Segment{Op: SegMove, P: [3]Vec2{vec2(sc.End())}})
		case ppath.LineTo:
			segs = append(segs, Segment{Op: SegLine, P: [3]Vec2{vec2(sc.End())}})
		case ppath.QuadTo:
			segs = append(segs, Segment{Op: SegQuad, P: [3]Vec2{vec2(sc.CP1()), vec2(sc.End())}})
		case ppath.CubeTo:
			segs = append(segs, Segment{Op: SegCubic, P: [3]Vec2{vec2(sc.CP1()), vec2(sc.CP2()), vec2(sc.End())}})
		case ppath.ArcTo:
			rx, ry, phi, large, sweep := sc.Arc()
			arc := pathSegments(ppath.ArcToCube(sc.Start(), rx, ry, phi, large, sweep, sc.End()))
			if len(arc) > 0 {
				segs = append(segs, arc[1:]...)
			}
		case ppath.Close:
			segs = append(segs, Segment{Op: SegClose})
		}
	}
	return segs
}

// parsePoints reads a polyline points list.
func parsePoints(s string) ([]math32.Vector2, error) {
	b := []byte(s)
	var nums []float32
	for i := 0; i < len(b); {
		switch b[i] {
		case ' ', '\t', '\n', '\r', ',':
			i++
			continue
		}
		f, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return nil, fmt.Errorf("%w: points: expected number at offset %d", ErrAssetParse, i)
		}
		nums = append(nums, float32(f))
		i += n
	}
	pts := make([]math32.Vector2, 0, len(nums)/2)
	for i := 0; i+1 < len(nums); i += 2 {
		pts = append(pts, math32.Vec2(nums[i], nums[i+1]))
	}
	return pts, nil
}
