package bramble

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the local affine matrix from the node's
// transform properties, including its growth progress. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale*Growth -> Skew -> Rotate -> Translate(X, Y)
func computeLocalTransform(n *Node) [6]float64 {
	return localTransform(n, n.Growth)
}

// placementTransform is the local transform of a fully grown node. Chain
// layout uses it so anchors do not drift while a node is being revealed.
func placementTransform(n *Node) [6]float64 {
	return localTransform(n, 1)
}

func localTransform(n *Node, growth float64) [6]float64 {
	sx := n.ScaleX * growth
	sy := n.ScaleY * growth

	sin, cos := math.Sincos(n.Rotation)

	var tanSkewX, tanSkewY float64
	if n.SkewX != 0 {
		tanSkewX = math.Tan(n.SkewX)
	}
	if n.SkewY != 0 {
		tanSkewY = math.Tan(n.SkewY)
	}

	// After Scale * Translate(-pivot), then Skew:
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := n.PivotX
	py := n.PivotY
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	// After Rotate:
	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// After Translate(X, Y):
	return [6]float64{ra, rb, rc, rd, rtx + n.X, rty + n.Y}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect returns the axis-aligned bounds of r after applying m.
func transformRect(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y)
	x2, y2 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	x3, y3 := transformPoint(m, r.X, r.Y+r.Height)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// UpdateTransforms recomputes the world transform of n and its subtree,
// treating n's parent space as world space.
func (n *Node) UpdateTransforms() {
	updateWorldTransform(n, identityTransform, false)
}

// updateWorldTransform recomputes a node's worldTransform.
// parentRecomputed forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parentTransform [6]float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = multiplyAffine(parentTransform, computeLocalTransform(n))
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, recompute)
	}
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
	n.transformDirty = true
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
	n.transformDirty = true
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	n.Rotation = r
	n.transformDirty = true
}

// SetSkew sets the node's SkewX and SkewY and marks it dirty.
func (n *Node) SetSkew(sx, sy float64) {
	n.SkewX = sx
	n.SkewY = sy
	n.transformDirty = true
}

// SetPivot sets the node's PivotX and PivotY and marks it dirty.
func (n *Node) SetPivot(px, py float64) {
	n.PivotX = px
	n.PivotY = py
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next UpdateTransforms. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// --- Coordinate conversion ---

// LocalToParent converts a point in n's local space to its parent's space.
func (n *Node) LocalToParent(x, y float64) (float64, float64) {
	return transformPoint(computeLocalTransform(n), x, y)
}

// transformTo returns the matrix mapping n's local space into ancestor's
// local space. A nil ancestor means the root of n's tree, exclusive.
func transformTo(n, ancestor *Node) [6]float64 {
	m := identityTransform
	for p := n; p != nil && p != ancestor; p = p.Parent {
		m = multiplyAffine(computeLocalTransform(p), m)
	}
	return m
}

// LocalToAncestor converts a point in n's local space to ancestor's local space.
func (n *Node) LocalToAncestor(ancestor *Node, x, y float64) (float64, float64) {
	return transformPoint(transformTo(n, ancestor), x, y)
}

// --- Bounds ---

// contentRect returns the node's own drawable area in local space.
func contentRect(n *Node) (Rect, bool) {
	switch n.Type {
	case NodeTypeElement:
		if n.Geometry != nil {
			return n.Geometry.Bounds, !n.Geometry.Bounds.Empty()
		}
	case NodeTypeSprite:
		if n.Texture != nil {
			w, h := float64(n.Texture.Width()), float64(n.Texture.Height())
			return Rect{Width: w, Height: h}, w > 0 && h > 0
		}
	case NodeTypeRect:
		return Rect{Width: n.Width, Height: n.Height}, n.Width > 0 && n.Height > 0
	case NodeTypeText:
		if n.Text != nil {
			return Rect{Width: n.Text.Width, Height: n.Text.Height}, n.Text.Width > 0 && n.Text.Height > 0
		}
	}
	return Rect{}, false
}

// LocalBounds computes the bounding rectangle of n and its visible
// descendants in n's own coordinate space.
func (n *Node) LocalBounds() Rect {
	var r Rect
	first := true
	subtreeBoundsWalk(n, identityTransform, &r, &first)
	return r
}

// Bounds computes the bounding rectangle of n and its visible descendants in
// its parent's coordinate space.
func (n *Node) Bounds() Rect {
	var r Rect
	first := true
	subtreeBoundsWalk(n, computeLocalTransform(n), &r, &first)
	return r
}

// BoundsIn computes n's subtree bounds in ancestor's coordinate space.
func (n *Node) BoundsIn(ancestor *Node) Rect {
	var r Rect
	first := true
	subtreeBoundsWalk(n, transformTo(n, ancestor), &r, &first)
	return r
}

// subtreeBoundsWalk recursively accumulates bounds.
func subtreeBoundsWalk(n *Node, m [6]float64, bounds *Rect, first *bool) {
	if !n.Visible {
		return
	}
	if rect, ok := contentRect(n); ok {
		aabb := transformRect(m, rect)
		if *first {
			*bounds = aabb
			*first = false
		} else {
			*bounds = bounds.Union(aabb)
		}
	}
	for _, child := range n.children {
		subtreeBoundsWalk(child, multiplyAffine(m, computeLocalTransform(child)), bounds, first)
	}
}
