package bramble

import (
	"fmt"

	"github.com/tanema/gween/ease"
)

// Phase is a state of a creature's growth/evolution state machine.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseGrowingMain
	PhaseGrowingMirror
	PhaseSettling
	PhaseDyingMirror
	PhaseResizingStage1
	PhaseResizingStage2
	PhaseResizingFinal
	PhaseRebuildMirror
	PhaseGrowingNewMirror
)

var phaseNames = [...]string{
	"idle", "growing-main", "growing-mirror", "settling", "dying-mirror",
	"resizing-stage-1", "resizing-stage-2", "resizing-final", "rebuild-mirror",
	"growing-new-mirror",
}

// String returns the phase name.
func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// TransitionKind distinguishes growth from evolution.
type TransitionKind uint8

const (
	TransitionGrowth TransitionKind = iota
	TransitionEvolution
)

// String returns the kind name.
func (k TransitionKind) String() string {
	if k == TransitionEvolution {
		return "evolution"
	}
	return "growth"
}

// Transition is a handle on a queued or running growth or evolution
// sequence. It completes once every phase has run, or when a phase fails.
type Transition struct {
	Kind TransitionKind
	// EvolutionIndex is the stage an evolution moves to.
	EvolutionIndex int

	phase     Phase
	done      bool
	err       error
	callbacks []func(*Transition)

	stages []stage
	next   int
	runner stageRunner
}

// Done reports whether the sequence has finished, successfully or not.
func (t *Transition) Done() bool { return t.done }

// Err returns the failure of a finished sequence: a *StageError, or
// ErrDisposed if the creature was disposed first.
func (t *Transition) Err() error { return t.err }

// Phase returns the running phase, or PhaseIdle while queued or once done.
func (t *Transition) Phase() Phase { return t.phase }

// OnComplete registers fn to run when the sequence finishes. If it already
// has, fn runs immediately.
func (t *Transition) OnComplete(fn func(*Transition)) {
	if t.done {
		fn(t)
		return
	}
	t.callbacks = append(t.callbacks, fn)
}

// stageRunner advances one phase. It reports completion or failure.
type stageRunner interface {
	update(dt float32) (bool, error)
}

// stage is one phase of a sequence. begin runs when the phase starts and
// returns the runner driving it, or nil when the phase completes at once.
type stage struct {
	phase Phase
	begin func() (stageRunner, error)
}

// tweenBatch runs tweens in parallel and calls after once per update.
type tweenBatch struct {
	groups []*TweenGroup
	after  func() error
}

func (b *tweenBatch) update(dt float32) (bool, error) {
	done := true
	for _, g := range b.groups {
		g.Update(dt)
		if !g.Done {
			done = false
		}
	}
	if b.after != nil {
		if err := b.after(); err != nil {
			return false, err
		}
	}
	return done, nil
}

// revealRunner grows nodes one after another, each from 0 to 1 over d.
type revealRunner struct {
	nodes []*Node
	d     float32
	i     int
	cur   *TweenGroup
}

func (r *revealRunner) update(dt float32) (bool, error) {
	for {
		if r.cur == nil {
			if r.i >= len(r.nodes) {
				return true, nil
			}
			n := r.nodes[r.i]
			r.i++
			n.Visible = true
			n.Growth = 0
			r.cur = TweenGrowth(n, 1, r.d, ease.OutQuad)
		}
		r.cur.Update(dt)
		dt = 0
		if !r.cur.Done {
			return false, nil
		}
		r.cur = nil
	}
}

// delayRunner waits for a fixed time.
type delayRunner struct {
	left float32
}

func (d *delayRunner) update(dt float32) (bool, error) {
	d.left -= dt
	return d.left <= 0, nil
}

// controller runs a creature's transitions one at a time in request order.
type controller struct {
	queue  []*Transition
	growth *Transition
	sink   EventSink
}

func (c *controller) current() *Transition {
	if len(c.queue) == 0 {
		return nil
	}
	return c.queue[0]
}

// --- Creature entry points ---

// StartAnimatingGrowth hides every element and reveals them one by one in
// chain order, main section first, each over elementDuration seconds, then
// waits the configured settle delay. While a growth is queued or running the
// call starts nothing and returns that growth's handle.
func (c *Creature) StartAnimatingGrowth(elementDuration float32) *Transition {
	if c.ctl.growth != nil {
		return c.ctl.growth
	}
	t := &Transition{Kind: TransitionGrowth, EvolutionIndex: c.evolutionIndex}
	if !c.alive {
		c.finish(t, ErrDisposed)
		return t
	}
	t.stages = []stage{
		{PhaseGrowingMain, func() (stageRunner, error) {
			c.main.hideAll()
			if c.mirror != nil {
				c.mirror.unfade()
				c.mirror.hideAll()
			}
			return &revealRunner{nodes: c.main.Elements(), d: elementDuration}, nil
		}},
		{PhaseGrowingMirror, func() (stageRunner, error) {
			if c.mirror == nil {
				return nil, nil
			}
			return &revealRunner{nodes: c.mirror.Elements(), d: elementDuration}, nil
		}},
		{PhaseSettling, func() (stageRunner, error) {
			return &delayRunner{left: float32(c.cfg.Growth.SettleDelay)}, nil
		}},
	}
	c.ctl.growth = t
	c.enqueue(t)
	return t
}

// Evolve moves the creature to its next evolution stage. The evolution index
// advances immediately; the restructuring runs after any earlier transition
// has finished. Each phase takes duration seconds except the regrowth of the
// new mirror section, which uses the configured mirror regrow time per
// element.
func (c *Creature) Evolve(duration float32) *Transition {
	c.evolutionIndex = (c.evolutionIndex + 1) % len(c.evolutions)
	t := &Transition{Kind: TransitionEvolution, EvolutionIndex: c.evolutionIndex}
	if !c.alive {
		c.finish(t, ErrDisposed)
		return t
	}
	st := c.evolutions[c.evolutionIndex]
	resize := func(scales []float64) (stageRunner, error) {
		b := &tweenBatch{after: c.main.layout}
		for i, n := range c.main.Elements() {
			v := 0.0
			if i < len(scales) {
				v = scales[i]
			}
			b.groups = append(b.groups, TweenScale(n, v, v, duration, ease.InOutQuad))
		}
		return b, nil
	}
	t.stages = []stage{
		{PhaseDyingMirror, func() (stageRunner, error) {
			if c.mirror == nil {
				return nil, nil
			}
			return &tweenBatch{groups: []*TweenGroup{TweenFade(c.mirror.Root, 0, 0, duration, ease.InQuad)}}, nil
		}},
		{PhaseResizingStage1, func() (stageRunner, error) {
			if err := st.checkAnim(0); err != nil {
				return nil, err
			}
			return resize(st.MainSectionChildrenAnims[0])
		}},
		{PhaseResizingStage2, func() (stageRunner, error) {
			if err := st.checkAnim(1); err != nil {
				return nil, err
			}
			return resize(st.MainSectionChildrenAnims[1])
		}},
		{PhaseResizingFinal, func() (stageRunner, error) {
			if len(st.MainSectionChildren) == 0 {
				return nil, fmt.Errorf("%w: main section has no children", ErrMissingEvolutionStage)
			}
			return resize(st.MainSectionChildren)
		}},
		{PhaseRebuildMirror, func() (stageRunner, error) {
			mirror, err := c.buildMirror(st)
			if err != nil {
				return nil, err
			}
			at := c.body.NumChildren()
			if c.mirror != nil {
				// Keep the draw order of the section being replaced.
				if i := c.body.IndexOf(c.mirror.Root); i >= 0 {
					at = i
				}
				c.mirror.Root.Dispose()
			}
			mirror.hideAll()
			c.body.AddChildAt(mirror.Root, min(at, c.body.NumChildren()))
			c.mirror = mirror
			return nil, nil
		}},
		{PhaseGrowingNewMirror, func() (stageRunner, error) {
			return &revealRunner{nodes: c.mirror.Elements(), d: float32(c.cfg.Growth.MirrorRegrow)}, nil
		}},
	}
	c.enqueue(t)
	return t
}

// IsAnimatingGrowth reports whether a growth is queued or running.
func (c *Creature) IsAnimatingGrowth() bool { return c.ctl.growth != nil }

// IsEvolving reports whether an evolution is queued or running.
func (c *Creature) IsEvolving() bool {
	for _, t := range c.ctl.queue {
		if t.Kind == TransitionEvolution {
			return true
		}
	}
	return false
}

// Phase returns the phase of the running transition, or PhaseIdle.
func (c *Creature) Phase() Phase {
	if t := c.ctl.current(); t != nil {
		return t.phase
	}
	return PhaseIdle
}

// SetEventSink sets the receiver of lifecycle events. nil disables events.
func (c *Creature) SetEventSink(s EventSink) { c.ctl.sink = s }

func (c *Creature) enqueue(t *Transition) {
	c.ctl.queue = append(c.ctl.queue, t)
	c.emit(t, EventTransitionQueued, nil)
}

// tickTransitions advances the running transition by dt seconds. A phase
// that completes hands the rest of the tick over to the next phase with no
// time left, so zero-length phases all run within one tick.
func (c *Creature) tickTransitions(dt float32) {
	if !c.alive {
		c.failPending(ErrDisposed)
		return
	}
	for {
		t := c.ctl.current()
		if t == nil {
			return
		}
		if t.runner == nil {
			if t.next >= len(t.stages) {
				c.finish(t, nil)
				continue
			}
			st := t.stages[t.next]
			t.next++
			t.phase = st.phase
			c.emit(t, EventPhaseStarted, nil)
			r, err := st.begin()
			if err != nil {
				c.finish(t, &StageError{Phase: st.phase, Err: err})
				continue
			}
			if r == nil {
				continue
			}
			t.runner = r
		}
		done, err := t.runner.update(dt)
		dt = 0
		if err != nil {
			c.finish(t, &StageError{Phase: t.phase, Err: err})
			continue
		}
		if !done {
			return
		}
		t.runner = nil
	}
}

// finish completes t, removes it from the queue and clears its flags.
func (c *Creature) finish(t *Transition, err error) {
	failedIn := t.phase
	t.done = true
	t.err = err
	t.phase = PhaseIdle
	t.runner = nil
	t.stages = nil
	for i, q := range c.ctl.queue {
		if q == t {
			c.ctl.queue = append(c.ctl.queue[:i], c.ctl.queue[i+1:]...)
			break
		}
	}
	if c.ctl.growth == t {
		c.ctl.growth = nil
	}

	// An aborted evolution may have faded the old mirror out.
	if err != nil && t.Kind == TransitionEvolution && c.mirror != nil {
		c.mirror.unfade()
	}

	if err != nil {
		logger.Warn("transition aborted", "creature", c.Name, "kind", t.Kind, "phase", failedIn, "err", err)
		c.emitPhase(t, EventTransitionFailed, failedIn, err)
	} else {
		logger.Debug("transition completed", "creature", c.Name, "kind", t.Kind)
		c.emit(t, EventTransitionCompleted, nil)
	}
	cbs := t.callbacks
	t.callbacks = nil
	for _, fn := range cbs {
		fn(t)
	}
}

func (c *Creature) failPending(err error) {
	for len(c.ctl.queue) > 0 {
		c.finish(c.ctl.queue[0], err)
	}
}

func (c *Creature) emit(t *Transition, typ LifecycleEventType, err error) {
	c.emitPhase(t, typ, t.phase, err)
}

func (c *Creature) emitPhase(t *Transition, typ LifecycleEventType, p Phase, err error) {
	if typ == EventPhaseStarted {
		logger.Debug("phase started", "creature", c.Name, "kind", t.Kind, "phase", p)
	}
	if c.ctl.sink == nil {
		return
	}
	c.ctl.sink.EmitEvent(LifecycleEvent{
		Type:           typ,
		Kind:           t.Kind,
		Phase:          p,
		Creature:       c.Name,
		EvolutionIndex: t.EvolutionIndex,
		Err:            err,
	})
}
