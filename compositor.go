package bramble

import "fmt"

// Compositor layers a gradient fill, clipped to a mask silhouette, under a
// softened copy of the silhouette.
type Compositor struct {
	Renderer Renderer
	Config   CompositeConfig
}

// NewCompositor creates a Compositor drawing through r.
func NewCompositor(r Renderer, cfg CompositeConfig) *Compositor {
	return &Compositor{Renderer: r, Config: cfg}
}

// Composite returns a new node holding two layers: a fill covering bbox,
// shaded with gp, clipped to mask and blurred with Config.FillBlur; and over
// it the unclipped mask blurred with Config.OverlayBlur. bbox is in the
// mask's space. Neither mask nor anything it was derived from is modified.
func (c *Compositor) Composite(mask *MaskShape, bbox Rect, gp GradientParams) (*Node, error) {
	if mask == nil || mask.Root == nil {
		return nil, fmt.Errorf("bramble: composite: nil mask")
	}
	if bbox.Empty() {
		return nil, fmt.Errorf("bramble: composite: empty bounds %v", bbox)
	}

	// The gradient sits in a container at the mask's origin so the mask
	// lines up with it.
	gradient := NewRect("gradient", bbox.Width, bbox.Height, ColorWhite)
	gradient.X, gradient.Y = bbox.X, bbox.Y
	gradient.Filters = []Filter{NewRadialGradientFilter(gp)}
	fill := NewContainer("fill")
	fill.AddChild(gradient)
	fill.SetMask(mask.Root)

	masked, err := c.Renderer.Combine(fill, c.Config.FillBlur)
	if err != nil {
		return nil, fmt.Errorf("bramble: composite fill: %w", err)
	}
	overlay, err := c.Renderer.Combine(mask.Root, c.Config.OverlayBlur)
	if err != nil {
		masked.Dispose()
		return nil, fmt.Errorf("bramble: composite overlay: %w", err)
	}

	out := NewContainer("composite")
	out.AddChild(masked)
	out.AddChild(overlay)
	return out, nil
}
