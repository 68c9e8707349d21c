package bramble

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenGrowth, TweenScale,
// TweenAlpha) and call Update(dt) each frame. The group writes values into
// the node and marks it dirty. On the final update the exact target values
// are written, so a grown node ends at exactly 1. If the target node is
// disposed, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	ends   [4]float64
	count  int
	fields [4]*float64
	target *Node
	Done   bool

	// OnUpdate, if set, runs after every write.
	OnUpdate func()
}

func newTweenGroup(node *Node, duration float32, fn ease.TweenFunc, fields []*float64, ends []float64) *TweenGroup {
	if fn == nil {
		fn = ease.Linear
	}
	g := &TweenGroup{count: len(fields), target: node}
	for i, f := range fields {
		g.fields[i] = f
		g.ends[i] = ends[i]
		g.tweens[i] = gween.New(float32(*f), float32(ends[i]), duration, fn)
	}
	if duration <= 0 {
		g.finish()
	}
	return g
}

func (g *TweenGroup) finish() {
	for i := 0; i < g.count; i++ {
		*g.fields[i] = g.ends[i]
	}
	g.Done = true
	if g.target != nil {
		g.target.MarkDirty()
	}
	if g.OnUpdate != nil {
		g.OnUpdate()
	}
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and marks the node dirty. If the target node has been disposed, Done is set
// to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if allDone {
		g.finish()
		return
	}
	if g.target != nil {
		g.target.MarkDirty()
	}
	if g.OnUpdate != nil {
		g.OnUpdate()
	}
}

// TweenGrowth creates a TweenGroup that animates node.Growth to the target
// value over the specified duration using the easing function.
func TweenGrowth(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.Growth}, []float64{to})
}

// TweenScale creates a TweenGroup that animates node.ScaleX and node.ScaleY to
// the given target values over the specified duration using the easing function.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		[]*float64{&node.ScaleX, &node.ScaleY}, []float64{toSX, toSY})
}

// TweenAlpha creates a TweenGroup that animates node.Alpha to the target value
// over the specified duration using the easing function.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.Alpha}, []float64{to})
}

// TweenFade creates a TweenGroup that animates node.Alpha and node.Growth
// together, the way a dying section shrinks away.
func TweenFade(node *Node, toAlpha, toGrowth float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		[]*float64{&node.Alpha, &node.Growth}, []float64{toAlpha, toGrowth})
}
