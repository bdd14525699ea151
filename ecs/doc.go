// Package ecs provides ECS adapters for cadence's animation runtime.
//
// [NewDonburiSink] bridges machine state and transition events into a
// [Donburi] world as typed events; subscribe to [AnimationEventType] in
// your ECS systems to receive them. The [Animator] component carries an
// entity's machine, mixer, and tween runtimes, and [UpdateAnimators]
// advances all of them once per frame.
//
// Usage:
//
//	machine.SetEventSink(ecs.NewDonburiSink(world))
//	entry := world.Entry(world.Create(ecs.Animator))
//	ecs.Animator.SetValue(entry, ecs.AnimatorData{Machine: machine})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
