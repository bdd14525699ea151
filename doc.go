// Package cadence is a keyframe animation runtime for [Ebitengine] games
// and other Go programs that step a frame at a time.
//
// Cadence samples keyframed clips, blends concurrent animations on a
// weighted mixer, drives property tweens, evaluates blend spaces, and runs
// state machines with conditional, crossfaded transitions. It draws
// nothing: each update writes interpolated values to the properties you
// bind, and your render code reads them back.
//
// Full documentation, tutorials, and examples are available at:
//
// https://phanxgames.github.io/cadence/
//
// # Quick start
//
// Author a [Clip] from keyframed tracks, register it in a [Library], and
// play it on a [Mixer] bound to any [Target]:
//
//	track, _ := cadence.NewTrack("position.x",
//		cadence.Keyframe{Time: 0, Value: cadence.Float(0)},
//		cadence.Keyframe{Time: 1, Value: cadence.Float(120)},
//	)
//	clip := cadence.NewClip("slide", 1, true, track)
//
//	obj := cadence.NewObject()
//	mixer := cadence.NewMixer()
//	mixer.NewAction(clip, obj)
//
// Then advance the mixer once per frame from your game loop:
//
//	func (g *Game) Update() error {
//		g.mixer.Update(1.0 / float64(ebiten.TPS()))
//		g.hero.X = g.obj.Float("position.x")
//		return nil
//	}
//
// # State machines
//
// A [Machine] owns named states, typed parameters, and prioritized
// transitions. Each state plays one clip; when a transition's conditions
// hold, the machine crossfades to the target state over the transition's
// duration:
//
//	m := cadence.NewMachine(lib, obj)
//	m.AddParameter("speed", cadence.ParamFloat, 0.0)
//	m.AddState("Idle", "idle")
//	m.AddState("Walk", "walk")
//	tr, _ := m.AddTransition("Idle", "Walk")
//	tr.When("speed", cadence.OpGt, 0.1)
//	m.Start()
//
// Machines round-trip through editor graph documents; see [ExportGraph],
// [ImportGraph], [ParseGraphJSON], and [ParseGraphYAML].
//
// # Tweens
//
// A [Tween] runs tweener steps sequentially, or all at once after
// [Tween.SetParallel]. Property steps interpolate a target property toward
// an end value through a [Curve] and [Ease] pair (clocked by [gween]),
// interval steps wait, and callback steps fire a function:
//
//	tw := cadence.NewTween()
//	tw.TweenProperty(obj, "alpha", cadence.Float(0), 0.4)
//	tw.TweenCallback(func() { hero.Visible = false })
//	tw.Play()
//
// # Blend spaces
//
// [BlendSpace1D] and [BlendSpace2D] place clips at parameter coordinates
// and yield normalized clip weights for any sample point, so a locomotion
// set (idle, walk, run) can follow a live speed value without explicit
// transitions.
//
// # ECS integration
//
// The cadence/ecs subpackage bridges machines and mixers into [Donburi]
// worlds: an Animator component steps every entity's runtime, and machine
// events publish on a Donburi event type.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package cadence
