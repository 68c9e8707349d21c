package ecs

import (
	"errors"
	"testing"

	"github.com/phanxgames/bramble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	require.NotNil(t, NewDonburiSink(world))
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []bramble.LifecycleEvent
	LifecycleEventType.Subscribe(world, func(w donburi.World, e bramble.LifecycleEvent) {
		received = append(received, e)
	})

	sink.EmitEvent(bramble.LifecycleEvent{
		Type:     bramble.EventPhaseStarted,
		Kind:     bramble.TransitionGrowth,
		Phase:    bramble.PhaseGrowingMain,
		Creature: "fern",
	})
	failure := errors.New("boom")
	sink.EmitEvent(bramble.LifecycleEvent{
		Type:           bramble.EventTransitionFailed,
		Kind:           bramble.TransitionEvolution,
		Phase:          bramble.PhaseRebuildMirror,
		EvolutionIndex: 2,
		Err:            failure,
	})

	// Events are queued until processed.
	assert.Empty(t, received)
	LifecycleEventType.ProcessEvents(world)

	require.Len(t, received, 2)
	assert.Equal(t, bramble.EventPhaseStarted, received[0].Type)
	assert.Equal(t, bramble.PhaseGrowingMain, received[0].Phase)
	assert.Equal(t, "fern", received[0].Creature)
	assert.Equal(t, bramble.TransitionEvolution, received[1].Kind)
	assert.Equal(t, 2, received[1].EvolutionIndex)
	assert.ErrorIs(t, received[1].Err, failure)
}

func TestDonburiSink_ImplementsEventSink(t *testing.T) {
	var _ bramble.EventSink = NewDonburiSink(donburi.NewWorld())
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	LifecycleEventType.Subscribe(world, func(w donburi.World, e bramble.LifecycleEvent) {
		count1++
	})
	LifecycleEventType.Subscribe(world, func(w donburi.World, e bramble.LifecycleEvent) {
		count2++
	})

	sink.EmitEvent(bramble.LifecycleEvent{Type: bramble.EventTransitionCompleted})
	events.ProcessAllEvents(world)

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}
