package cadence

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Curve selects the transition curve family used by crossfades and tweens.
type Curve uint8

const (
	CurveLinear  Curve = iota // constant velocity
	CurveSine                 // quarter sine wave
	CurveQuad                 // t²
	CurveCubic                // t³
	CurveQuart                // t⁴
	CurveQuint                // t⁵
	CurveExpo                 // exponential, 2^(10(t-1))
	CurveCirc                 // circular arc
	CurveBack                 // pulls back past the start, then overshoots
	CurveElastic              // exponentially decaying oscillation
	CurveBounce               // decaying bounces against the endpoint
	CurveSpring               // damped spring, slight overshoot then settle
)

// Ease selects how a Curve is applied over the [0, 1] interval.
type Ease uint8

const (
	EaseIn    Ease = iota // accelerate from rest
	EaseOut               // decelerate to rest
	EaseInOut             // in-curve for the first half, out-curve for the second
	EaseOutIn             // out-curve for the first half, in-curve for the second
)

// Apply evaluates the (curve, easing) pair at t. Input is clamped so the
// result is exactly 0 at t ≤ 0 and exactly 1 at t ≥ 1 for every combination.
// Back, elastic, bounce, and spring transiently leave [0, 1] in between.
func Apply(curve Curve, easing Ease, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch easing {
	case EaseIn:
		return curveIn(curve, t)
	case EaseOut:
		return 1 - curveIn(curve, 1-t)
	case EaseInOut:
		if t < 0.5 {
			return curveIn(curve, 2*t) / 2
		}
		return 1 - curveIn(curve, 2-2*t)/2
	case EaseOutIn:
		if t < 0.5 {
			return (1 - curveIn(curve, 1-2*t)) / 2
		}
		return (curveIn(curve, 2*t-1) + 1) / 2
	}
	return t
}

// TweenEase adapts a (curve, easing) pair to gween's TweenFunc signature so
// any curve in the matrix can drive a gween.Tween directly.
func TweenEase(curve Curve, easing Ease) ease.TweenFunc {
	return func(t, b, c, d float32) float32 {
		if d <= 0 {
			return b + c
		}
		return b + c*float32(Apply(curve, easing, float64(t/d)))
	}
}

const (
	backOvershoot = 1.70158 // ~10% overshoot
	elasticPeriod = 0.3
)

// curveIn evaluates the in-form primitive of a curve family at t ∈ (0, 1).
// Out, in-out, and out-in forms are derived in Apply.
func curveIn(curve Curve, t float64) float64 {
	switch curve {
	case CurveLinear:
		return t
	case CurveSine:
		return 1 - math.Cos(t*math.Pi/2)
	case CurveQuad:
		return t * t
	case CurveCubic:
		return t * t * t
	case CurveQuart:
		return t * t * t * t
	case CurveQuint:
		return t * t * t * t * t
	case CurveExpo:
		return math.Pow(2, 10*(t-1))
	case CurveCirc:
		return 1 - math.Sqrt(1-t*t)
	case CurveBack:
		return t * t * ((backOvershoot+1)*t - backOvershoot)
	case CurveElastic:
		return -math.Pow(2, 10*(t-1)) *
			math.Sin((t-1-elasticPeriod/4)*(2*math.Pi)/elasticPeriod)
	case CurveBounce:
		return 1 - bounceOut(1-t)
	case CurveSpring:
		return 1 - springOut(1-t)
	}
	return t
}

// bounceOut is the canonical four-segment decaying bounce (out form).
func bounceOut(t float64) float64 {
	switch {
	case t < 1/2.75:
		return 7.5625 * t * t
	case t < 2/2.75:
		t -= 1.5 / 2.75
		return 7.5625*t*t + 0.75
	case t < 2.5/2.75:
		t -= 2.25 / 2.75
		return 7.5625*t*t + 0.9375
	default:
		t -= 2.625 / 2.75
		return 7.5625*t*t + 0.984375
	}
}

// springOut rises past 1 with a damped oscillation, then settles (out form).
func springOut(t float64) float64 {
	s := 1 - t
	return (math.Sin(t*math.Pi*(0.2+2.5*t*t*t))*math.Pow(s, 2.2) + t) * (1 + 1.2*s)
}
