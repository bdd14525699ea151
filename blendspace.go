package cadence

// BlendedClip pairs a clip with the weight a blend space assigned it.
type BlendedClip struct {
	Clip   *Clip
	Weight float64
}

type blendPoint1D struct {
	pos  float64
	clip *Clip
}

// BlendSpace1D interpolates among clips placed along one continuous axis,
// walk/run locomotion being the usual case. Evaluate picks the bracketing
// pair around the input and splits weight between them; everything else
// gets zero.
type BlendSpace1D struct {
	// Min and Max bound the input axis; Evaluate clamps into them. Snap is
	// an editor grid hint carried for tooling, never applied at runtime.
	Min, Max float64
	Snap     float64

	points []blendPoint1D

	blendDriver
	out []BlendedClip
}

// NewBlendSpace1D returns an empty space over [min, max]. Reversed bounds
// are swapped.
func NewBlendSpace1D(min, max float64) *BlendSpace1D {
	if max < min {
		min, max = max, min
	}
	return &BlendSpace1D{Min: min, Max: max}
}

// AddPoint places a clip at pos on the axis. Points keep ascending order;
// equal positions keep insertion order. A nil clip panics.
func (b *BlendSpace1D) AddPoint(pos float64, c *Clip) {
	if c == nil {
		panic("cadence: cannot add nil clip to blend space")
	}
	i := len(b.points)
	for i > 0 && b.points[i-1].pos > pos {
		i--
	}
	b.points = append(b.points, blendPoint1D{})
	copy(b.points[i+1:], b.points[i:])
	b.points[i] = blendPoint1D{pos: pos, clip: c}
}

// Len returns the number of placed points.
func (b *BlendSpace1D) Len() int { return len(b.points) }

// Evaluate returns the clip weights for input v, summing to 1. Values
// outside the outermost points pin weight 1 on the nearest endpoint; a
// space with no points returns nothing. The returned slice is reused by
// the next Evaluate or Apply call.
func (b *BlendSpace1D) Evaluate(v float64) []BlendedClip {
	b.out = b.out[:0]
	n := len(b.points)
	if n == 0 {
		return b.out
	}
	if v < b.Min {
		v = b.Min
	} else if v > b.Max {
		v = b.Max
	}
	if n == 1 || v <= b.points[0].pos {
		b.out = append(b.out, BlendedClip{Clip: b.points[0].clip, Weight: 1})
		return b.out
	}
	if v >= b.points[n-1].pos {
		b.out = append(b.out, BlendedClip{Clip: b.points[n-1].clip, Weight: 1})
		return b.out
	}

	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if b.points[mid].pos <= v {
			lo = mid
		} else {
			hi = mid
		}
	}
	width := b.points[hi].pos - b.points[lo].pos
	if width <= 0 {
		b.out = append(b.out, BlendedClip{Clip: b.points[lo].clip, Weight: 1})
		return b.out
	}
	t := (v - b.points[lo].pos) / width
	b.out = append(b.out,
		BlendedClip{Clip: b.points[lo].clip, Weight: 1 - t},
		BlendedClip{Clip: b.points[hi].clip, Weight: t},
	)
	return b.out
}

// Apply evaluates the space at v and keeps one live action per weighted
// clip on the mixer, adjusting weights in place. Clips that drop out of
// the blend stop. Actions are reused across calls, so driving a space
// every frame allocates nothing once warm.
func (b *BlendSpace1D) Apply(m *Mixer, target Target, v float64) {
	b.drive(m, target, b.Evaluate(v))
}

type blendPoint2D struct {
	x, y float64
	clip *Clip
}

// BlendSpace2D places clips on a plane and picks the nearest one to the
// input by Euclidean distance, winner take all. Nearest-point selection is
// a deliberate simplification over triangulated blending; ties go to the
// earliest added point.
type BlendSpace2D struct {
	// Min and Max bound both input axes; Evaluate clamps into them. Snap
	// is an editor grid hint carried for tooling, never applied at runtime.
	Min, Max Point
	Snap     Point

	points []blendPoint2D

	blendDriver
	out []BlendedClip
}

// NewBlendSpace2D returns an empty space over the rectangle min..max.
// Reversed bounds are swapped per axis.
func NewBlendSpace2D(min, max Point) *BlendSpace2D {
	if max.X < min.X {
		min.X, max.X = max.X, min.X
	}
	if max.Y < min.Y {
		min.Y, max.Y = max.Y, min.Y
	}
	return &BlendSpace2D{Min: min, Max: max}
}

// AddPoint places a clip at (x, y). A nil clip panics.
func (b *BlendSpace2D) AddPoint(x, y float64, c *Clip) {
	if c == nil {
		panic("cadence: cannot add nil clip to blend space")
	}
	b.points = append(b.points, blendPoint2D{x: x, y: y, clip: c})
}

// Len returns the number of placed points.
func (b *BlendSpace2D) Len() int { return len(b.points) }

// Evaluate returns weight 1 on the clip nearest to (x, y), or nothing when
// the space is empty. The returned slice is reused by the next Evaluate or
// Apply call.
func (b *BlendSpace2D) Evaluate(x, y float64) []BlendedClip {
	b.out = b.out[:0]
	if len(b.points) == 0 {
		return b.out
	}
	if x < b.Min.X {
		x = b.Min.X
	} else if x > b.Max.X {
		x = b.Max.X
	}
	if y < b.Min.Y {
		y = b.Min.Y
	} else if y > b.Max.Y {
		y = b.Max.Y
	}

	best := 0
	bestDist := sqDist(b.points[0], x, y)
	for i := 1; i < len(b.points); i++ {
		if d := sqDist(b.points[i], x, y); d < bestDist {
			best, bestDist = i, d
		}
	}
	b.out = append(b.out, BlendedClip{Clip: b.points[best].clip, Weight: 1})
	return b.out
}

// Apply evaluates the space at (x, y) and keeps the winning clip's action
// live on the mixer, stopping the previous winner when it changes.
func (b *BlendSpace2D) Apply(m *Mixer, target Target, x, y float64) {
	b.drive(m, target, b.Evaluate(x, y))
}

func sqDist(p blendPoint2D, x, y float64) float64 {
	dx, dy := p.x-x, p.y-y
	return dx*dx + dy*dy
}

type clipAction struct {
	clip *Clip
	act  *Action
}

// blendDriver keeps one mixer action per clip a space currently weights,
// reusing them across frames so each clip's local time runs on unbroken.
type blendDriver struct {
	live []clipAction
}

func (d *blendDriver) drive(m *Mixer, target Target, result []BlendedClip) {
	keep := d.live[:0]
	for _, ca := range d.live {
		if ca.act.Active() && blendHasClip(result, ca.clip) {
			keep = append(keep, ca)
			continue
		}
		ca.act.Stop()
	}
	d.live = keep

	for _, bc := range result {
		a := d.find(bc.Clip)
		if a == nil {
			a = m.NewAction(bc.Clip, target)
			d.live = append(d.live, clipAction{clip: bc.Clip, act: a})
		}
		a.Weight = bc.Weight
	}
}

func (d *blendDriver) find(c *Clip) *Action {
	for _, ca := range d.live {
		if ca.clip == c {
			return ca.act
		}
	}
	return nil
}

func blendHasClip(result []BlendedClip, c *Clip) bool {
	for i := range result {
		if result[i].Clip == c {
			return true
		}
	}
	return false
}
