package cadence

import (
	"log"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenerKind discriminates the flat Tweener variants.
type TweenerKind uint8

const (
	TweenerProperty TweenerKind = iota // animates one target property
	TweenerInterval                    // pure delay
	TweenerCallback                    // fires a func once when reached
)

// Tweener is a single unit of procedural animation inside a Tween: a
// property change, a wait, or a callback. One flat struct switched on kind
// keeps the per-frame stepping free of interface dispatch.
type Tweener struct {
	kind TweenerKind

	target       Target
	path         string
	from, to     Value
	duration     float64
	delay        float64
	curve        Curve
	easing       Ease
	relative     bool
	explicitFrom bool

	callback func()

	clock      *gween.Tween // property progress, linear 0→1
	end        Value        // resolved destination, computed at start
	elapsed    float64      // interval bookkeeping
	delayLeft  float64
	started    bool
	done       bool
	disposable Disposable // cached probe; nil when the target doesn't implement it
}

// Kind returns which variant this tweener is.
func (t *Tweener) Kind() TweenerKind { return t.kind }

// SetDelay holds the tweener for d seconds before it begins. In a
// sequential tween the delay runs once the cursor reaches it.
func (t *Tweener) SetDelay(d float64) *Tweener {
	if d < 0 {
		d = 0
	}
	t.delay = d
	t.delayLeft = d
	return t
}

// SetTransition picks the curve family the property follows.
func (t *Tweener) SetTransition(c Curve) *Tweener {
	t.curve = c
	return t
}

// SetEase picks how the curve composes.
func (t *Tweener) SetEase(e Ease) *Tweener {
	t.easing = e
	return t
}

// AsRelative treats the destination as an offset added onto the start value
// captured when the tweener begins.
func (t *Tweener) AsRelative() *Tweener {
	t.relative = true
	return t
}

// From fixes the start value explicitly instead of reading the live
// property when the tweener begins.
func (t *Tweener) From(v Value) *Tweener {
	t.from = v
	t.explicitFrom = true
	return t
}

// IsValid reports whether the tweener can still do its work. A property
// tweener goes invalid when its target is nil or reports itself disposed;
// it then steps as already done instead of dereferencing a dead object.
func (t *Tweener) IsValid() bool {
	if t.kind != TweenerProperty {
		return true
	}
	if t.target == nil {
		return false
	}
	if t.disposable != nil && t.disposable.IsDisposed() {
		return false
	}
	return true
}

// Finish force-completes the tweener: the property jumps straight to its
// destination, intervals elapse, an unfired callback fires. Idempotent.
func (t *Tweener) Finish() {
	switch t.kind {
	case TweenerCallback:
		if !t.done {
			t.callback()
		}
	case TweenerProperty:
		if t.IsValid() {
			if !t.started {
				t.start()
			}
			t.target.Set(t.path, t.end)
		}
	}
	t.done = true
}

// prime readies the tweener to run: the delay rewinds and, with none in the
// way, a property tweener captures its start value right away.
func (t *Tweener) prime() {
	t.delayLeft = t.delay
	if t.kind == TweenerProperty && t.delay == 0 && t.IsValid() {
		t.start()
	}
}

// start resolves the interpolation endpoints. The start value reads from
// the live property unless From fixed it; a missing property starts from
// the destination kind's zero. Relative tweeners add their destination
// onto the start.
func (t *Tweener) start() {
	t.started = true
	if !t.explicitFrom {
		if v, ok := t.target.Get(t.path); ok {
			t.from = v
		} else {
			t.from = Value{Kind: t.to.Kind}
		}
	}
	t.end = t.to
	if t.relative {
		t.end = Add(t.from, t.to)
	}
	t.clock = gween.New(0, 1, float32(t.duration), ease.Linear)
}

// step advances the tweener by dt seconds and reports whether it is still
// running. The final property write is the destination value itself, not a
// lerp result, so tweens land bit-exact.
func (t *Tweener) step(dt float64) bool {
	if t.done {
		return false
	}
	if !t.IsValid() {
		t.done = true
		return false
	}
	switch t.kind {
	case TweenerCallback:
		t.callback()
		t.done = true
		return false
	case TweenerInterval:
		t.elapsed += dt
		if t.elapsed >= t.duration {
			t.done = true
			return false
		}
		return true
	}

	if t.delayLeft > 0 {
		t.delayLeft -= dt
		if t.delayLeft > 0 {
			return true
		}
		dt = -t.delayLeft // the remainder flows into this frame's interpolation
		t.delayLeft = 0
	}
	if !t.started {
		t.start()
	}
	raw, finished := t.clock.Update(float32(dt))
	if finished {
		t.target.Set(t.path, t.end)
		t.done = true
		return false
	}
	eased := Apply(t.curve, t.easing, float64(raw))
	t.target.Set(t.path, Lerp(t.from, t.end, eased))
	return true
}

// reset rewinds the tweener for a replay.
func (t *Tweener) reset() {
	t.started = false
	t.done = false
	t.elapsed = 0
	t.delayLeft = t.delay
	t.clock = nil
}

// Tween sequences tweeners and drives them from a per-frame Update, the
// way a Mixer drives actions. Sequential mode (the default) runs one
// tweener at a time in append order; parallel mode steps them all and
// finishes when the last one does.
//
// The zero value is not ready; use NewTween.
type Tween struct {
	tweeners   []*Tweener
	parallel   bool
	cursor     int
	speedScale float64

	running  bool
	primed   bool
	finished bool
	killed   bool

	// OnFinished fires once when every tweener has completed naturally.
	// Stop and Kill do not fire it. Nil by default.
	OnFinished func()
}

// NewTween returns an empty sequence in sequential mode at speed 1. Append
// tweeners, call Play, then Update it once per frame.
func NewTween() *Tween {
	return &Tween{speedScale: 1}
}

// TweenProperty appends a tweener animating target's path to a destination
// value over duration seconds, returning it for fluent tuning. Defaults:
// no delay, linear curve, in-out ease, start value read live at begin.
func (tw *Tween) TweenProperty(target Target, path string, to Value, duration float64) *Tweener {
	if duration < 0 {
		duration = 0
	}
	t := &Tweener{
		kind:     TweenerProperty,
		target:   target,
		path:     path,
		to:       to,
		duration: duration,
		easing:   EaseInOut,
	}
	if d, ok := target.(Disposable); ok {
		t.disposable = d
	}
	tw.tweeners = append(tw.tweeners, t)
	return t
}

// TweenInterval appends a pure delay of duration seconds.
func (tw *Tween) TweenInterval(duration float64) *Tweener {
	if duration < 0 {
		duration = 0
	}
	t := &Tweener{kind: TweenerInterval, duration: duration}
	tw.tweeners = append(tw.tweeners, t)
	return t
}

// TweenCallback appends a tweener that fires fn once when the sequence
// reaches it. A nil fn panics.
func (tw *Tween) TweenCallback(fn func()) *Tweener {
	if fn == nil {
		panic("cadence: cannot tween a nil callback")
	}
	t := &Tweener{kind: TweenerCallback, callback: fn}
	tw.tweeners = append(tw.tweeners, t)
	return t
}

// SetParallel switches the sequence to parallel mode. Call before Play.
func (tw *Tween) SetParallel() *Tween {
	tw.parallel = true
	return tw
}

// SetSpeedScale multiplies the dt of every subsequent Update. Zero freezes
// the tween; negative values clamp to zero.
func (tw *Tween) SetSpeedScale(s float64) *Tween {
	if s < 0 {
		s = 0
	}
	tw.speedScale = s
	return tw
}

// Play starts or resumes the sequence. A paused tween resumes in place, a
// stopped or naturally finished one restarts from the top, and a killed
// one only logs a warning.
func (tw *Tween) Play() {
	if tw.killed {
		log.Printf("cadence: cannot play a killed tween")
		return
	}
	if tw.running {
		return
	}
	if tw.finished {
		tw.rewind()
	}
	if !tw.primed {
		tw.primeFirst()
		tw.primed = true
	}
	tw.running = true
}

// Pause halts advancement without rewinding; Play resumes in place.
func (tw *Tween) Pause() {
	tw.running = false
}

// Stop halts the sequence and rewinds it to the top. Properties keep
// whatever value they last received; a later Play re-captures implicit
// start values from the live properties.
func (tw *Tween) Stop() {
	tw.running = false
	tw.rewind()
}

// Kill force-completes every remaining tweener, then permanently
// invalidates the sequence. OnFinished does not fire.
func (tw *Tween) Kill() {
	if tw.killed {
		return
	}
	for _, t := range tw.tweeners {
		if !t.done {
			t.Finish()
		}
	}
	tw.killed = true
	tw.running = false
}

// IsRunning reports whether Update currently advances the sequence.
func (tw *Tween) IsRunning() bool { return tw.running }

// IsValid reports whether the sequence can still be played. Killed tweens
// are permanently invalid.
func (tw *Tween) IsValid() bool { return !tw.killed }

// Len returns the number of appended tweeners.
func (tw *Tween) Len() int { return len(tw.tweeners) }

// Update advances the sequence by dt seconds, scaled by the speed scale.
// Sequential completion hands the cursor to the next tweener immediately,
// but its first interpolation happens on the next frame.
func (tw *Tween) Update(dt float64) {
	if !tw.running {
		return
	}
	dt *= tw.speedScale

	if tw.parallel {
		alive := false
		for _, t := range tw.tweeners {
			if t.step(dt) {
				alive = true
			}
		}
		if !alive {
			tw.complete()
		}
		return
	}

	if tw.cursor >= len(tw.tweeners) {
		tw.complete()
		return
	}
	if tw.tweeners[tw.cursor].step(dt) {
		return
	}
	tw.cursor++
	if tw.cursor < len(tw.tweeners) {
		tw.tweeners[tw.cursor].prime()
	} else {
		tw.complete()
	}
}

func (tw *Tween) primeFirst() {
	if tw.parallel {
		for _, t := range tw.tweeners {
			t.prime()
		}
		return
	}
	if len(tw.tweeners) > 0 {
		tw.tweeners[tw.cursor].prime()
	}
}

func (tw *Tween) rewind() {
	tw.cursor = 0
	tw.finished = false
	tw.primed = false
	for _, t := range tw.tweeners {
		t.reset()
	}
}

func (tw *Tween) complete() {
	if tw.finished {
		return
	}
	tw.finished = true
	tw.running = false
	if tw.OnFinished != nil {
		tw.OnFinished()
	}
}
