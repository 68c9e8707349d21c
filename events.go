package bramble

// LifecycleEventType identifies what happened to a transition.
type LifecycleEventType uint8

const (
	EventTransitionQueued LifecycleEventType = iota
	EventPhaseStarted
	EventTransitionCompleted
	EventTransitionFailed
)

// String returns the event type name.
func (t LifecycleEventType) String() string {
	switch t {
	case EventTransitionQueued:
		return "queued"
	case EventPhaseStarted:
		return "phase-started"
	case EventTransitionCompleted:
		return "completed"
	case EventTransitionFailed:
		return "failed"
	}
	return "unknown"
}

// LifecycleEvent reports progress of a creature's growth or evolution.
type LifecycleEvent struct {
	Type           LifecycleEventType
	Kind           TransitionKind
	Phase          Phase
	Creature       string
	EvolutionIndex int
	Err            error
}

// EventSink receives lifecycle events. It is the optional bridge to an ECS
// or any other observer; see the ecs package for a Donburi implementation.
type EventSink interface {
	EmitEvent(event LifecycleEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(LifecycleEvent)

// EmitEvent calls f(event).
func (f EventSinkFunc) EmitEvent(event LifecycleEvent) { f(event) }
