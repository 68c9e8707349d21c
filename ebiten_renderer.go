package bramble

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// --- Render texture pool ---

// renderTexturePool manages reusable offscreen ebiten.Images keyed by
// power-of-two dimensions. Acquire hands out an exact-size view into a
// pooled image; Release takes the view back.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
	parents map[*ebiten.Image]*ebiten.Image
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image of exactly (w, h) pixels.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	var img *ebiten.Image
	if stack := p.buckets[key]; len(stack) > 0 {
		img = stack[len(stack)-1]
		p.buckets[key] = stack[:len(stack)-1]
		img.Clear()
	} else {
		img = ebiten.NewImageWithOptions(
			image.Rect(0, 0, pw, ph),
			&ebiten.NewImageOptions{Unmanaged: true},
		)
	}
	view := img.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
	if p.parents == nil {
		p.parents = make(map[*ebiten.Image]*ebiten.Image)
	}
	p.parents[view] = img
	return view
}

// Release returns an image obtained from Acquire to the pool. Images not
// obtained from Acquire are ignored.
func (p *renderTexturePool) Release(view *ebiten.Image) {
	if view == nil {
		return
	}
	img, ok := p.parents[view]
	if !ok {
		return
	}
	delete(p.parents, view)
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// --- Textures ---

type ebitenTexture struct {
	img *ebiten.Image
}

func (t *ebitenTexture) Width() int  { return t.img.Bounds().Dx() }
func (t *ebitenTexture) Height() int { return t.img.Bounds().Dy() }
func (t *ebitenTexture) Dispose()    { t.img.Deallocate() }

// TextureImage returns the image behind a texture made by an
// EbitenRenderer, or nil.
func TextureImage(t Texture) *ebiten.Image {
	if et, ok := t.(*ebitenTexture); ok {
		return et.img
	}
	return nil
}

// blendMask keeps the destination where the source is opaque.
var blendMask = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorZero,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
	BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// fillMesh is the triangulated fill of one geometry layer, in element space.
type fillMesh struct {
	verts []ebiten.Vertex
	inds  []uint16
}

// EbitenRenderer draws node trees with Ebitengine and implements Renderer.
// Like the scene graph it must only be used from the game goroutine.
type EbitenRenderer struct {
	pool  renderTexturePool
	font  *text.GoTextFaceSource
	fills map[*ElementGeometry][]fillMesh
	white *ebiten.Image

	verts []ebiten.Vertex
	op    ebiten.DrawImageOptions
	triOp ebiten.DrawTrianglesOptions
}

// NewEbitenRenderer creates a renderer that sets labels in Go Regular.
func NewEbitenRenderer() (*EbitenRenderer, error) {
	r := &EbitenRenderer{fills: make(map[*ElementGeometry][]fillMesh)}
	if err := r.SetFont(goregular.TTF); err != nil {
		return nil, err
	}
	return r, nil
}

// SetFont replaces the label font with TTF/OTF data.
func (r *EbitenRenderer) SetFont(ttfData []byte) error {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return fmt.Errorf("bramble: failed to parse TTF data: %w", err)
	}
	r.font = source
	return nil
}

func (r *EbitenRenderer) whiteImage() *ebiten.Image {
	if r.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		r.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return r.white
}

// Draw renders root and its subtree onto dst, treating dst as root's parent
// space.
func (r *EbitenRenderer) Draw(dst *ebiten.Image, root *Node) {
	root.UpdateTransforms()
	r.drawWorld(dst, root, 1)
}

// drawWorld walks the tree using the world transforms from UpdateTransforms.
func (r *EbitenRenderer) drawWorld(dst *ebiten.Image, n *Node, parentAlpha float64) {
	if !n.Visible {
		return
	}
	alpha := parentAlpha * n.Alpha
	if n.mask != nil || len(n.Filters) > 0 {
		r.drawSpecial(dst, n, n.worldTransform, alpha)
		return
	}
	r.drawContent(dst, n, n.worldTransform, alpha)
	for _, c := range n.children {
		r.drawWorld(dst, c, alpha)
	}
}

// drawTree walks the tree with explicit transforms. parent maps n's parent
// space onto dst.
func (r *EbitenRenderer) drawTree(dst *ebiten.Image, n *Node, parent [6]float64, parentAlpha float64) {
	if !n.Visible {
		return
	}
	m := multiplyAffine(parent, computeLocalTransform(n))
	alpha := parentAlpha * n.Alpha
	if n.mask != nil || len(n.Filters) > 0 {
		r.drawSpecial(dst, n, m, alpha)
		return
	}
	r.drawContent(dst, n, m, alpha)
	for _, c := range n.children {
		r.drawTree(dst, c, m, alpha)
	}
}

// renderSubtree renders n's own content and children into target, with n's
// local space offset by -bounds.X, -bounds.Y. n's mask and filters are not
// applied.
func (r *EbitenRenderer) renderSubtree(target *ebiten.Image, n *Node, bounds Rect) {
	offset := [6]float64{1, 0, 0, 1, -bounds.X, -bounds.Y}
	r.drawContent(target, n, offset, 1)
	for _, c := range n.children {
		r.drawTree(target, c, offset, 1)
	}
}

// drawSpecial renders a masked or filtered node offscreen and draws the
// result with transform m.
func (r *EbitenRenderer) drawSpecial(dst *ebiten.Image, n *Node, m [6]float64, alpha float64) {
	bounds := n.LocalBounds()
	pad := float64(filterChainPadding(n.Filters))
	bounds.X -= pad
	bounds.Y -= pad
	bounds.Width += 2 * pad
	bounds.Height += 2 * pad

	w := int(math.Ceil(bounds.Width))
	h := int(math.Ceil(bounds.Height))
	if w <= 0 || h <= 0 {
		return
	}

	rt := r.pool.Acquire(w, h)
	r.renderSubtree(rt, n, bounds)

	if n.mask != nil {
		maskRT := r.pool.Acquire(w, h)
		r.drawTree(maskRT, n.mask, [6]float64{1, 0, 0, 1, -bounds.X, -bounds.Y}, 1)
		var op ebiten.DrawImageOptions
		op.Blend = blendMask
		rt.DrawImage(maskRT, &op)
		r.pool.Release(maskRT)
	}

	result := applyFilters(n.Filters, rt, &r.pool)
	if result != rt {
		r.pool.Release(rt)
	}

	placed := multiplyAffine(m, [6]float64{1, 0, 0, 1, bounds.X, bounds.Y})
	r.op.GeoM = geoM(placed)
	r.op.ColorScale.Reset()
	r.op.ColorScale.ScaleAlpha(float32(alpha))
	r.op.Filter = ebiten.FilterLinear
	r.op.Blend = ebiten.BlendSourceOver
	dst.DrawImage(result, &r.op)
	r.pool.Release(result)
}

// drawContent draws n's own visual at transform m.
func (r *EbitenRenderer) drawContent(dst *ebiten.Image, n *Node, m [6]float64, alpha float64) {
	switch n.Type {
	case NodeTypeElement:
		if n.Geometry == nil {
			return
		}
		cr, cg, cb, ca := n.Color.Premultiplied()
		a := float32(alpha)
		for _, mesh := range r.fillMeshes(n.Geometry) {
			r.verts = r.verts[:0]
			for _, v := range mesh.verts {
				x, y := transformPoint(m, float64(v.DstX), float64(v.DstY))
				v.DstX, v.DstY = float32(x), float32(y)
				v.SrcX, v.SrcY = 1, 1
				v.ColorR, v.ColorG, v.ColorB, v.ColorA = cr*a, cg*a, cb*a, ca*a
				r.verts = append(r.verts, v)
			}
			r.triOp.FillRule = ebiten.FillRuleNonZero
			r.triOp.AntiAlias = true
			dst.DrawTriangles(r.verts, mesh.inds, r.whiteImage(), &r.triOp)
		}
	case NodeTypeSprite, NodeTypeText:
		img := TextureImage(n.Texture)
		if img == nil {
			return
		}
		r.drawImage(dst, img, m, n.Color, alpha)
	case NodeTypeRect:
		if n.Width <= 0 || n.Height <= 0 {
			return
		}
		scaled := multiplyAffine(m, [6]float64{n.Width, 0, 0, n.Height, 0, 0})
		r.drawImage(dst, r.whiteImage(), scaled, n.Color, alpha)
	}
}

func (r *EbitenRenderer) drawImage(dst, img *ebiten.Image, m [6]float64, c Color, alpha float64) {
	r.op.GeoM = geoM(m)
	r.op.ColorScale.Reset()
	a := float32(clamp01(c.A) * alpha)
	r.op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
	r.op.Filter = ebiten.FilterLinear
	r.op.Blend = ebiten.BlendSourceOver
	dst.DrawImage(img, &r.op)
}

// fillMeshes triangulates each layer of g once.
func (r *EbitenRenderer) fillMeshes(g *ElementGeometry) []fillMesh {
	if meshes, ok := r.fills[g]; ok {
		return meshes
	}
	meshes := make([]fillMesh, 0, len(g.Layers))
	for _, l := range g.Layers {
		var p vector.Path
		for _, c := range l.Contours {
			p.MoveTo(float32(c[0].X), float32(c[0].Y))
			for _, pt := range c[1:] {
				p.LineTo(float32(pt.X), float32(pt.Y))
			}
			p.Close()
		}
		verts, inds := p.AppendVerticesAndIndicesForFilling(nil, nil)
		meshes = append(meshes, fillMesh{verts: verts, inds: inds})
	}
	r.fills[g] = meshes
	return meshes
}

func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// --- Renderer implementation ---

// Rasterize implements Renderer. The texture is owned by the caller.
func (r *EbitenRenderer) Rasterize(n *Node) (Texture, error) {
	b := n.Bounds()
	w := int(math.Ceil(b.Width))
	h := int(math.Ceil(b.Height))
	if w <= 0 || h <= 0 {
		return &ebitenTexture{img: ebiten.NewImage(1, 1)}, nil
	}
	img := ebiten.NewImage(w, h)
	r.drawTree(img, n, [6]float64{1, 0, 0, 1, -b.X, -b.Y}, 1)
	return &ebitenTexture{img: img}, nil
}

// Combine implements Renderer. The content is drawn, clipped by its mask
// through drawSpecial, blurred and returned as a sprite placed over the
// content's bounds.
func (r *EbitenRenderer) Combine(content *Node, blur BlurParams) (*Node, error) {
	f := NewBlurFilter(blur)
	defer f.Dispose()

	b := content.Bounds()
	pad := float64(f.Padding())
	w := int(math.Ceil(b.Width + 2*pad))
	h := int(math.Ceil(b.Height + 2*pad))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("bramble: combine: empty content bounds")
	}
	offset := [6]float64{1, 0, 0, 1, pad - b.X, pad - b.Y}

	rt := r.pool.Acquire(w, h)
	r.drawTree(rt, content, offset, 1)

	out := ebiten.NewImage(w, h)
	f.Apply(rt, out)
	r.pool.Release(rt)

	n := NewSprite("combined", &ebitenTexture{img: out})
	n.X, n.Y = b.X-pad, b.Y-pad
	return n, nil
}

// RenderText implements Renderer. The stroke is drawn as eight offset copies
// under the fill.
func (r *EbitenRenderer) RenderText(s string, style TextStyle) (*Node, error) {
	if r.font == nil {
		return nil, fmt.Errorf("bramble: render text: no font")
	}
	face := &text.GoTextFace{Source: r.font, Size: style.Size}
	m := face.Metrics()
	lh := m.HAscent + m.HDescent + m.HLineGap
	tw, th := text.Measure(s, face, lh)

	sw := math.Ceil(math.Max(style.StrokeWidth, 0))
	w := int(math.Ceil(tw+2*sw)) + 1
	h := int(math.Ceil(th+2*sw)) + 1
	img := ebiten.NewImage(w, h)

	draw := func(dx, dy float64, c Color) {
		op := &text.DrawOptions{}
		op.GeoM.Translate(sw+dx, sw+dy)
		op.ColorScale.ScaleWithColor(c)
		op.LineSpacing = lh
		text.Draw(img, s, face, op)
	}
	if sw > 0 {
		for _, d := range [8][2]float64{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}} {
			draw(d[0]*sw, d[1]*sw, style.Stroke)
		}
	}
	draw(0, 0, style.Fill)

	n := NewText(s, &TextBlock{Content: s, Style: style, Width: float64(w), Height: float64(h)})
	n.Texture = &ebitenTexture{img: img}
	return n, nil
}

var _ Renderer = (*EbitenRenderer)(nil)
