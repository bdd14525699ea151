// Package ecs provides ECS adapters for cadence.
package ecs

import (
	"github.com/phanxgames/cadence"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// AnimationEventType is the Donburi event type for machine state and
// transition events. Subscribe to this in your ECS systems to react to
// state changes without wiring per-machine callbacks.
var AnimationEventType = events.NewEventType[cadence.AnimationEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Machine
// events are published to AnimationEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) cadence.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitAnimationEvent(event cadence.AnimationEvent) {
	AnimationEventType.Publish(s.world, event)
}

// AnimatorData carries the animation runtimes stepped for one entity. Any
// field may be nil. A machine advances its own mixer, so Mixer is only for
// standalone mixers not owned by a machine.
type AnimatorData struct {
	Machine *cadence.Machine
	Mixer   *cadence.Mixer
	Tween   *cadence.Tween
}

// Animator is the Donburi component holding an entity's animation runtimes.
var Animator = donburi.NewComponentType[AnimatorData]()

var animatorQuery = donburi.NewQuery(filter.Contains(Animator))

// UpdateAnimators advances every Animator in the world by dt seconds. Call
// it once per frame from your game's update loop.
func UpdateAnimators(world donburi.World, dt float64) {
	animatorQuery.Each(world, func(entry *donburi.Entry) {
		d := Animator.Get(entry)
		if d.Machine != nil {
			d.Machine.Update(dt)
		}
		if d.Mixer != nil {
			d.Mixer.Update(dt)
		}
		if d.Tween != nil {
			d.Tween.Update(dt)
		}
	})
}
