// Package ecs provides ECS adapters for bramble's lifecycle events.
//
// The primary adapter is [NewDonburiSink], which publishes creature growth
// and evolution events into a [Donburi] world as typed events. Subscribe to
// [LifecycleEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	creature.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
