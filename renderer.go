package bramble

// Texture is an opaque rasterized image owned by the Renderer that made it.
type Texture interface {
	Width() int
	Height() int
	// Dispose releases the texture. The texture must not be drawn afterwards.
	Dispose()
}

// BlurParams configures a blur pass. Strength is the blur extent in pixels;
// Quality is the number of passes.
type BlurParams struct {
	Strength float64 `toml:"strength"`
	Quality  int     `toml:"quality"`
}

// TextStyle styles a rendered text label.
type TextStyle struct {
	Size        float64
	Fill        Color
	Stroke      Color
	StrokeWidth float64
}

// Renderer is the drawing backend the engine calls for anything that needs
// pixels. EbitenRenderer is the stock implementation.
type Renderer interface {
	// Rasterize renders n, including its own local transform, into a texture
	// tightly cropped to its bounds.
	Rasterize(n *Node) (Texture, error)
	// Combine returns a new node showing content, clipped to the alpha of its
	// mask if it has one, and blurred by blur. The returned node lives in
	// content's parent space.
	Combine(content *Node, blur BlurParams) (*Node, error)
	// RenderText returns a text node for s with its size measured.
	RenderText(s string, style TextStyle) (*Node, error)
}
