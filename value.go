package cadence

import "math"

// ValueKind distinguishes the payload carried by a Value.
type ValueKind uint8

const (
	ValueFloat ValueKind = iota // scalar stored in X
	ValueVec2                   // X, Y
	ValueVec3                   // X, Y, Z
	ValueQuat                   // rotation quaternion (X, Y, Z, W)
	ValueColor                  // R, G, B, A stored in X, Y, Z, W, components in [0, 1]
)

// Value is a single animation value: a scalar, vector, quaternion, or color.
// A single flat struct is used for all kinds to avoid interface dispatch in
// per-frame sampling loops.
type Value struct {
	Kind       ValueKind
	X, Y, Z, W float64
}

// Float returns a scalar Value.
func Float(v float64) Value { return Value{Kind: ValueFloat, X: v} }

// Vec2 returns a 2D vector Value.
func Vec2(x, y float64) Value { return Value{Kind: ValueVec2, X: x, Y: y} }

// Vec3 returns a 3D vector Value.
func Vec3(x, y, z float64) Value { return Value{Kind: ValueVec3, X: x, Y: y, Z: z} }

// Quat returns a rotation quaternion Value. Components are stored as given;
// keyframe authors are expected to supply unit quaternions.
func Quat(x, y, z, w float64) Value { return Value{Kind: ValueQuat, X: x, Y: y, Z: z, W: w} }

// Color returns an RGBA color Value with components in [0, 1].
func Color(r, g, b, a float64) Value { return Value{Kind: ValueColor, X: r, Y: g, Z: b, W: a} }

// Scalar returns the scalar payload of a float Value (the X component).
func (v Value) Scalar() float64 { return v.X }

// Lerp interpolates between a and b by t. Quaternions use shortest-arc
// slerp; every other kind interpolates component-wise. If the kinds differ,
// a is returned unchanged.
func Lerp(a, b Value, t float64) Value {
	if a.Kind != b.Kind {
		return a
	}
	if a.Kind == ValueQuat {
		return slerp(a, b, t)
	}
	return Value{
		Kind: a.Kind,
		X:    a.X + (b.X-a.X)*t,
		Y:    a.Y + (b.Y-a.Y)*t,
		Z:    a.Z + (b.Z-a.Z)*t,
		W:    a.W + (b.W-a.W)*t,
	}
}

// Add combines two values for relative tweening: component-wise sum for
// scalars, vectors, and colors. A quaternion delta composes by
// multiplication (apply a, then b). If the kinds differ, a is returned
// unchanged.
func Add(a, b Value) Value {
	if a.Kind != b.Kind {
		return a
	}
	if a.Kind == ValueQuat {
		return quatMul(b, a)
	}
	return Value{
		Kind: a.Kind,
		X:    a.X + b.X,
		Y:    a.Y + b.Y,
		Z:    a.Z + b.Z,
		W:    a.W + b.W,
	}
}

// slerp performs shortest-arc spherical interpolation between unit
// quaternions.
func slerp(a, b Value, t float64) Value {
	dot := a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
	if dot < 0 {
		b = Value{Kind: ValueQuat, X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}
		dot = -dot
	}
	if dot > 0.9995 {
		// Nearly parallel: normalized lerp avoids dividing by a vanishing sin.
		return normalizeQuat(Value{
			Kind: ValueQuat,
			X:    a.X + (b.X-a.X)*t,
			Y:    a.Y + (b.Y-a.Y)*t,
			Z:    a.Z + (b.Z-a.Z)*t,
			W:    a.W + (b.W-a.W)*t,
		})
	}
	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return Value{
		Kind: ValueQuat,
		X:    a.X*wa + b.X*wb,
		Y:    a.Y*wa + b.Y*wb,
		Z:    a.Z*wa + b.Z*wb,
		W:    a.W*wa + b.W*wb,
	}
}

func normalizeQuat(v Value) Value {
	n := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z + v.W*v.W)
	if n == 0 {
		return Value{Kind: ValueQuat, W: 1}
	}
	return Value{Kind: ValueQuat, X: v.X / n, Y: v.Y / n, Z: v.Z / n, W: v.W / n}
}

// quatMul returns the Hamilton product a·b (apply b's rotation, then a's).
func quatMul(a, b Value) Value {
	return Value{
		Kind: ValueQuat,
		X:    a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y:    a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z:    a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		W:    a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}
