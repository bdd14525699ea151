package cadence

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Crossfade blends one action out and another in over a fixed duration.
// The two weights sum to 1 on every frame. A Machine drives one crossfade
// per transition; hosts may also drive their own between hand-made actions.
type Crossfade struct {
	From, To *Action

	curve  Curve
	easing Ease

	driver   *gween.Tween // linear 0→1 clock; raw progress stays queryable
	progress float64
	active   bool

	// OnFinished fires once when the blend completes, after From stops and
	// To reaches weight 1.
	OnFinished func()
}

// Begin starts blending from → to over duration seconds through the given
// curve. Weights snap to (1, 0) immediately; a duration of zero (or less)
// completes on the next Update. Nil actions panic.
func (c *Crossfade) Begin(from, to *Action, duration float64, curve Curve, easing Ease) {
	if from == nil || to == nil {
		panic("cadence: cannot crossfade nil actions")
	}
	if duration < 0 {
		duration = 0
	}
	c.From, c.To = from, to
	c.curve, c.easing = curve, easing
	c.driver = gween.New(0, 1, float32(duration), ease.Linear)
	c.progress = 0
	c.active = true
	from.Weight = 1
	to.Weight = 0
}

// Active reports whether a blend is in flight.
func (c *Crossfade) Active() bool { return c.active }

// Progress returns the raw, un-eased fraction of the blend completed, in
// [0, 1]. It reads 1 after completion.
func (c *Crossfade) Progress() float64 { return c.progress }

// Update advances the blend by dt seconds and reassigns both weights:
// To gets the eased progress, From gets its complement. On completion the
// From action stops, To reaches weight 1 exactly, and OnFinished fires.
func (c *Crossfade) Update(dt float64) {
	if !c.active {
		return
	}
	raw, finished := c.driver.Update(float32(dt))
	c.progress = float64(raw)
	if finished {
		c.progress = 1
		c.From.Stop()
		c.From.Weight = 0
		c.To.Weight = 1
		c.active = false
		if c.OnFinished != nil {
			c.OnFinished()
		}
		return
	}
	w := Apply(c.curve, c.easing, c.progress)
	c.To.Weight = w
	c.From.Weight = 1 - w
}

// Cancel abandons an in-flight blend: the To action stops, the From action
// restores weight 1, and OnFinished does not fire. Canceling an inactive
// crossfade is a no-op.
func (c *Crossfade) Cancel() {
	if !c.active {
		return
	}
	c.To.Stop()
	c.To.Weight = 0
	c.From.Weight = 1
	c.active = false
}
