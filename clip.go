package cadence

import (
	"fmt"
	"log"
)

// Interp selects how a keyframe interpolates toward the next one.
type Interp uint8

const (
	InterpLinear Interp = iota // lerp toward the next key (slerp for quaternions)
	InterpStep                 // hold this key's value until the next key
	InterpCubic                // Catmull-Rom through the neighboring keys
)

// Keyframe is one sampled value on a track's timeline.
type Keyframe struct {
	Time   float64
	Value  Value
	Interp Interp
}

// Track animates a single property, addressed by dot-path (e.g. "position.x"
// or "bones.Head.rotation"), from an ordered keyframe sequence.
type Track struct {
	TargetPath string
	keys       []Keyframe
}

// NewTrack builds a track from keyframes. Times must be non-negative and
// non-decreasing; the keyframe slice is copied.
func NewTrack(targetPath string, keys ...Keyframe) (*Track, error) {
	if targetPath == "" {
		return nil, fmt.Errorf("cadence: track target path is empty")
	}
	for i, k := range keys {
		if k.Time < 0 {
			return nil, fmt.Errorf("cadence: track %q keyframe %d has negative time %g",
				targetPath, i, k.Time)
		}
		if i > 0 && k.Time < keys[i-1].Time {
			return nil, fmt.Errorf("cadence: track %q keyframes out of order at index %d (%g after %g)",
				targetPath, i, k.Time, keys[i-1].Time)
		}
	}
	tr := &Track{TargetPath: targetPath, keys: make([]Keyframe, len(keys))}
	copy(tr.keys, keys)
	return tr, nil
}

// Len returns the number of keyframes.
func (tr *Track) Len() int { return len(tr.keys) }

// Sample evaluates the track at time x. ok is false when the track has no
// keyframes. Outside the keyed range the nearest endpoint value is held.
func (tr *Track) Sample(x float64) (Value, bool) {
	n := len(tr.keys)
	if n == 0 {
		return Value{}, false
	}
	if x <= tr.keys[0].Time {
		return tr.keys[0].Value, true
	}
	if x >= tr.keys[n-1].Time {
		return tr.keys[n-1].Value, true
	}
	// Last key at or before x.
	lo, hi := 0, n-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if tr.keys[mid].Time <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	a, b := tr.keys[lo], tr.keys[hi]
	span := b.Time - a.Time
	if span <= 0 {
		return a.Value, true
	}
	u := (x - a.Time) / span
	switch a.Interp {
	case InterpStep:
		return a.Value, true
	case InterpCubic:
		return tr.cubic(lo, hi, u), true
	default:
		return Lerp(a.Value, b.Value, u), true
	}
}

// cubic interpolates Catmull-Rom through keys [lo-1, lo, hi, hi+1] with
// clamped endpoints. Quaternion tracks fall back to slerp: a spline through
// quaternion components would leave the unit sphere.
func (tr *Track) cubic(lo, hi int, u float64) Value {
	a, b := tr.keys[lo], tr.keys[hi]
	if a.Value.Kind == ValueQuat {
		return slerp(a.Value, b.Value, u)
	}
	p0 := a.Value
	if lo > 0 {
		p0 = tr.keys[lo-1].Value
	}
	p3 := b.Value
	if hi < len(tr.keys)-1 {
		p3 = tr.keys[hi+1].Value
	}
	u2 := u * u
	u3 := u2 * u
	return Value{
		Kind: a.Value.Kind,
		X:    catmullRom1(p0.X, a.Value.X, b.Value.X, p3.X, u, u2, u3),
		Y:    catmullRom1(p0.Y, a.Value.Y, b.Value.Y, p3.Y, u, u2, u3),
		Z:    catmullRom1(p0.Z, a.Value.Z, b.Value.Z, p3.Z, u, u2, u3),
		W:    catmullRom1(p0.W, a.Value.W, b.Value.W, p3.W, u, u2, u3),
	}
}

// catmullRom1 evaluates one component of a uniform Catmull-Rom segment
// between b and c.
func catmullRom1(a, b, c, d, u, u2, u3 float64) float64 {
	return 0.5 * (2*b + (-a+c)*u + (2*a-5*b+4*c-d)*u2 + (-a+3*b-3*c+d)*u3)
}

// Clip is an immutable named animation: an ordered set of tracks plus timing
// metadata. Clips are safe to share across any number of actions.
type Clip struct {
	name     string
	duration float64
	loop     bool
	tracks   []*Track
}

// NewClip creates a clip from tracks. The track slice is copied. If duration
// is shorter than a track's last keyframe, it is extended to cover it with a
// warning. Nil tracks panic.
func NewClip(name string, duration float64, loop bool, tracks ...*Track) *Clip {
	c := &Clip{name: name, duration: duration, loop: loop, tracks: make([]*Track, len(tracks))}
	copy(c.tracks, tracks)
	for _, tr := range c.tracks {
		if tr == nil {
			panic("cadence: cannot add nil track to clip")
		}
		if n := tr.Len(); n > 0 {
			if last := tr.keys[n-1].Time; last > c.duration {
				log.Printf("cadence: clip %q duration %g shorter than track %q last key %g, extending",
					name, duration, tr.TargetPath, last)
				c.duration = last
			}
		}
	}
	return c
}

// Name returns the clip's name.
func (c *Clip) Name() string { return c.name }

// Duration returns the clip's length in seconds.
func (c *Clip) Duration() float64 { return c.duration }

// Loop reports whether playback wraps at the end of the clip.
func (c *Clip) Loop() bool { return c.loop }

// Tracks returns the clip's tracks. The returned slice is shared and must
// not be modified.
func (c *Clip) Tracks() []*Track { return c.tracks }

// Library is a named clip registry shared by machines, blend spaces, and
// host code. Create with NewLibrary.
type Library struct {
	clips map[string]*Clip
}

// NewLibrary returns an empty clip registry.
func NewLibrary() *Library {
	return &Library{clips: make(map[string]*Clip)}
}

// Add registers a clip under its name. Re-adding a name replaces the
// previous clip with a warning.
func (l *Library) Add(c *Clip) {
	if c == nil {
		panic("cadence: cannot add nil clip to library")
	}
	if _, exists := l.clips[c.name]; exists {
		log.Printf("cadence: clip %q already registered, replacing", c.name)
	}
	l.clips[c.name] = c
}

// Clip returns the registered clip, or nil with a warning when the name is
// unknown. Callers treat nil as "skip this clip" so a missing animation
// never takes down the host.
func (l *Library) Clip(name string) *Clip {
	if c, ok := l.clips[name]; ok {
		return c
	}
	log.Printf("cadence: clip %q not found", name)
	return nil
}

// Len returns the number of registered clips.
func (l *Library) Len() int { return len(l.clips) }
