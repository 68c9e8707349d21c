package bramble

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is the interface for visual effects applied to a node's rendered output.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
	// Padding returns the extra pixels needed around the source to accommodate
	// the effect (e.g. blur radius). Zero means no padding.
	Padding() int
}

// --- Kage shader sources ---
// Shaders use //kage:unit pixels. Ebitengine uses premultiplied alpha.

const radialGradientShaderSrc = `//kage:unit pixels
package main

var Radius1 float
var Color1 vec4
var Radius2 float
var Color2 vec4
var Background vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	mask := imageSrc0At(src).a
	if mask == 0 {
		return vec4(0)
	}
	uv := (src - imageSrc0Origin()) / imageSrc0Size()
	// 0 at the centre, 1 at the middle of each edge.
	d := distance(uv, vec2(0.5)) * 2
	var c vec4
	if d <= Radius1 {
		c = Color1
	} else if d <= Radius2 {
		c = mix(Color1, Color2, (d-Radius1)/max(Radius2-Radius1, 0.0001))
	} else {
		c = mix(Color2, Background, clamp((d-Radius2)/max(1-Radius2, 0.0001), 0, 1))
	}
	return vec4(c.rgb*c.a, c.a) * mask
}
`

// --- Lazy shader compilation (no sync.Once; rendering is single-threaded) ---

var radialGradientShader *ebiten.Shader

func ensureRadialGradientShader() *ebiten.Shader {
	if radialGradientShader == nil {
		s, err := ebiten.NewShader([]byte(radialGradientShaderSrc))
		if err != nil {
			panic("bramble: failed to compile radial gradient shader: " + err.Error())
		}
		radialGradientShader = s
	}
	return radialGradientShader
}

// --- GradientParams ---

// GradientParams describes a two-stop radial gradient that fades into a
// background color. Radii are fractions of the half-extent of the filled area.
type GradientParams struct {
	Radius1    float64 `toml:"radius1"`
	Color1     Color   `toml:"color1"`
	Radius2    float64 `toml:"radius2"`
	Color2     Color   `toml:"color2"`
	Background Color   `toml:"background"`
}

// DefaultGradient returns the magenta to blue gradient over translucent black.
func DefaultGradient() GradientParams {
	return GradientParams{
		Radius1:    0.4,
		Color1:     Color{244.0 / 256, 17.0 / 256, 190.0 / 256, 1},
		Radius2:    0.6,
		Color2:     Color{3.0 / 256, 120.0 / 256, 245.0 / 256, 1},
		Background: Color{0, 0, 0, 0.8},
	}
}

func colorVec4(c Color) []float32 {
	return []float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// --- RadialGradientFilter ---

// RadialGradientFilter replaces the color of every covered pixel of the
// source with a radial gradient spanning the source bounds.
type RadialGradientFilter struct {
	Params   GradientParams
	shaderOp ebiten.DrawRectShaderOptions
	uniforms map[string]any
}

// NewRadialGradientFilter creates a gradient filter.
func NewRadialGradientFilter(p GradientParams) *RadialGradientFilter {
	return &RadialGradientFilter{Params: p, uniforms: make(map[string]any, 5)}
}

// Apply shades src with the gradient into dst.
func (f *RadialGradientFilter) Apply(src, dst *ebiten.Image) {
	f.uniforms["Radius1"] = float32(f.Params.Radius1)
	f.uniforms["Color1"] = colorVec4(f.Params.Color1)
	f.uniforms["Radius2"] = float32(f.Params.Radius2)
	f.uniforms["Color2"] = colorVec4(f.Params.Color2)
	f.uniforms["Background"] = colorVec4(f.Params.Background)
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	f.shaderOp.GeoM.Reset()
	f.shaderOp.GeoM.Translate(float64(bounds.Min.X-dst.Bounds().Min.X), float64(bounds.Min.Y-dst.Bounds().Min.Y))
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), ensureRadialGradientShader(), &f.shaderOp)
}

// Padding returns 0; the gradient only recolors covered pixels.
func (f *RadialGradientFilter) Padding() int { return 0 }

// --- BlurFilter ---

// BlurFilter applies a Kawase iterative blur using downscale/upscale passes.
// Quality is the number of passes; each pass shrinks the image so that the
// whole chain downsamples by roughly Strength.
// No Kage shader needed; bilinear filtering during DrawImage does the work.
type BlurFilter struct {
	Strength float64
	Quality  int
	temps    []*ebiten.Image
	imgOp    ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur filter from p. Negative values clamp to 0.
func NewBlurFilter(p BlurParams) *BlurFilter {
	return &BlurFilter{Strength: math.Max(p.Strength, 0), Quality: max(p.Quality, 0)}
}

// passScale returns the per-pass downscale factor.
func (f *BlurFilter) passScale() float64 {
	if f.Strength <= 1 || f.Quality <= 0 {
		return 0.9
	}
	s := math.Pow(f.Strength, -1/float64(f.Quality))
	return math.Min(math.Max(s, 0.5), 0.9)
}

// Apply renders a Kawase blur from src into dst using iterative downscale/upscale.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	op := &f.imgOp
	if f.Strength <= 0 || f.Quality <= 0 {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
		return
	}

	passes := f.Quality
	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	scale := f.passScale()
	srcBounds := src.Bounds()
	fw, fh := float64(srcBounds.Dx()), float64(srcBounds.Dy())

	// Downscale passes.
	current := src
	for i := 0; i < passes; i++ {
		fw, fh = fw*scale, fh*scale
		w, h := max(int(fw), 1), max(int(fh), 1)
		if f.temps[i] == nil || f.temps[i].Bounds().Dx() != w || f.temps[i].Bounds().Dy() != h {
			if f.temps[i] != nil {
				f.temps[i].Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			f.temps[i].Clear()
		}
		drawScaled(op, f.temps[i], current)
		current = f.temps[i]
	}

	// Upscale passes back through the chain.
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		drawScaled(op, f.temps[i], current)
		current = f.temps[i]
	}

	drawScaled(op, dst, current)
}

func drawScaled(op *ebiten.DrawImageOptions, dst, src *ebiten.Image) {
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, op)
}

// Padding returns the blur extent; the offscreen buffer is expanded to avoid clipping.
func (f *BlurFilter) Padding() int { return int(math.Ceil(f.Strength)) }

// Dispose releases the filter's scratch images.
func (f *BlurFilter) Dispose() {
	for _, t := range f.temps {
		if t != nil {
			t.Deallocate()
		}
	}
	f.temps = nil
}

// --- Filter padding helper ---

// filterChainPadding returns the cumulative padding required by a slice of
// filters. The offscreen image is sized for the sum of all paddings.
func filterChainPadding(filters []Filter) int {
	pad := 0
	for _, f := range filters {
		pad += f.Padding()
	}
	return pad
}

// --- Filter application helper ---

// applyFilters runs a filter chain on src, ping-ponging between two images.
// Returns the image containing the final result (either src or a scratch
// image from pool). The caller must release whichever pooled image it no
// longer needs.
func applyFilters(filters []Filter, src *ebiten.Image, pool *renderTexturePool) *ebiten.Image {
	if len(filters) == 0 {
		return src
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	current := src
	var scratch *ebiten.Image

	for _, f := range filters {
		if scratch == nil {
			scratch = pool.Acquire(w, h)
		} else {
			scratch.Clear()
		}
		f.Apply(current, scratch)
		current, scratch = scratch, current
	}
	if scratch != nil && scratch != src {
		pool.Release(scratch)
	}
	return current
}
