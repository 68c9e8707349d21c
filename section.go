package bramble

import "fmt"

// Section is one assembled chain: a container whose element children are
// laid out connector to origin in chain order.
type Section struct {
	Root *Node
	Spec ChainSpec

	nodes    []*Node
	mirrored bool
}

// Elements returns the element nodes in chain order. The returned slice MUST
// NOT be mutated by the caller.
func (s *Section) Elements() []*Node { return s.nodes }

// Len returns the number of element nodes.
func (s *Section) Len() int { return len(s.nodes) }

// Element returns the i-th element node.
func (s *Section) Element(i int) *Node { return s.nodes[i] }

// Mirrored reports whether the section was flipped horizontally.
func (s *Section) Mirrored() bool { return s.mirrored }

// Bounds returns the section's bounds in its parent's space.
func (s *Section) Bounds() Rect { return s.Root.Bounds() }

// SetFill tints every element.
func (s *Section) SetFill(c Color) {
	for _, n := range s.nodes {
		n.Color = c
	}
}

// SetScales scales element i uniformly by scales[i], or to 0 when scales has
// no entry for it, then re-lays the chain out.
func (s *Section) SetScales(scales []float64) error {
	for i, n := range s.nodes {
		v := 0.0
		if i < len(scales) {
			v = scales[i]
		}
		n.SetScale(v, v)
	}
	return s.layout()
}

// layout places the origin of every element after the first on its
// predecessor's anchor. Anchors are measured on the fully grown predecessor
// so nodes keep their place while they are being revealed.
func (s *Section) layout() error {
	for i := 1; i < len(s.nodes); i++ {
		prev, n := s.nodes[i-1], s.nodes[i]
		link := s.Spec.Links[i-1]
		a, err := prev.Geometry.Connector(link.NextTypeKey, link.ConnectorIndex)
		if err != nil {
			return fmt.Errorf("link %d: %w", i-1, err)
		}
		x, y := transformPoint(placementTransform(prev), a.Position.X, a.Position.Y)
		n.SetPosition(x, y)
	}
	return nil
}

// hideAll collapses every element so a growth sequence can reveal them.
func (s *Section) hideAll() {
	for _, n := range s.nodes {
		n.Visible = false
		n.Growth = 0
		n.MarkDirty()
	}
}

// unfade restores the section root after a fade-out.
func (s *Section) unfade() {
	if s.Root.IsDisposed() {
		return
	}
	s.Root.Alpha = 1
	s.Root.Growth = 1
	s.Root.MarkDirty()
}

// showAll makes every element fully visible.
func (s *Section) showAll() {
	for _, n := range s.nodes {
		n.Visible = true
		n.Growth = 1
		n.MarkDirty()
	}
}
