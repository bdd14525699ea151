package cadence

import "math"

// Action is a live binding of one clip to one target: playback position,
// blend weight, speed, and loop mode. Actions are owned by the Mixer that
// created them; hosts keep the pointer to adjust fields or stop playback.
type Action struct {
	Clip   *Clip
	Target Target

	LocalTime float64
	Weight    float64
	Speed     float64
	Looping   bool
	Paused    bool

	// OnFinished fires once when a non-looping action reaches the end of
	// its clip, after that frame's values are written. OnLooped fires after
	// each wrap. Nil by default; zero cost when unused.
	OnFinished func(*Action)
	OnLooped   func(*Action)

	mixer      *Mixer
	disposable Disposable // cached probe; nil when Target doesn't implement it
	stopped    bool
}

// Stop halts the action; its mixer drops it during the next Update. Safe to
// call more than once. No callbacks fire.
func (a *Action) Stop() {
	a.stopped = true
}

// Active reports whether the action is still advanced by its mixer.
func (a *Action) Active() bool {
	return !a.stopped
}

// Seek jumps playback to time t: clamped into the clip for one-shot actions,
// wrapped for looping ones. No loop or finished callbacks fire.
func (a *Action) Seek(t float64) {
	d := a.Clip.Duration()
	if d <= 0 {
		a.LocalTime = 0
		return
	}
	if a.Looping {
		t = math.Mod(t, d)
		if t < 0 {
			t += d
		}
	} else if t < 0 {
		t = 0
	} else if t > d {
		t = d
	}
	a.LocalTime = t
}

// NormalizedTime returns LocalTime as a fraction of the clip duration in
// [0, 1]. Looping actions report the fraction within the current cycle;
// zero-length clips report 1.
func (a *Action) NormalizedTime() float64 {
	d := a.Clip.Duration()
	if d <= 0 {
		return 1
	}
	nt := a.LocalTime / d
	if nt < 0 {
		return 0
	}
	if nt > 1 {
		return 1
	}
	return nt
}

// pathBlend accumulates weighted contributions to one (target, path) slot
// within a single Update.
type pathBlend struct {
	target Target
	path   string
	value  Value
	weight float64
}

// Mixer owns and advances playback actions. One Update(dt) per frame moves
// every active action's clock, samples its tracks, and writes weight-blended
// results to each target. Contributions to the same (target, path) slot are
// normalized by their summed weight, so a lone action applies fully whatever
// its weight, and a crossfading pair mixes in proportion.
//
// There is no global mixer; hosts call Update themselves, once per frame.
type Mixer struct {
	actions []*Action

	// scratch buffers reused across Update calls; sampling stays
	// allocation-free at steady state
	blends   []pathBlend
	looped   []*Action
	finished []*Action
}

// NewMixer returns an empty mixer.
func NewMixer() *Mixer {
	return &Mixer{}
}

// NewAction registers and starts playback of clip on target: weight 1,
// speed 1, local time 0, loop mode taken from the clip. Nil arguments panic.
func (m *Mixer) NewAction(c *Clip, target Target) *Action {
	if c == nil {
		panic("cadence: cannot create action from nil clip")
	}
	if target == nil {
		panic("cadence: cannot create action with nil target")
	}
	a := &Action{
		Clip:    c,
		Target:  target,
		Weight:  1,
		Speed:   1,
		Looping: c.Loop(),
		mixer:   m,
	}
	if d, ok := target.(Disposable); ok {
		a.disposable = d
	}
	m.actions = append(m.actions, a)
	return a
}

// Len returns the number of active actions.
func (m *Mixer) Len() int {
	n := 0
	for _, a := range m.actions {
		if !a.stopped {
			n++
		}
	}
	return n
}

// StopAll stops every action without firing callbacks.
func (m *Mixer) StopAll() {
	for _, a := range m.actions {
		a.stopped = true
	}
}

// Update advances all actions by dt seconds, samples their tracks, and
// writes blended values. Loop and finished callbacks fire after the frame's
// writes, in action order; finished actions are removed afterward.
func (m *Mixer) Update(dt float64) {
	m.blends = m.blends[:0]
	m.looped = m.looped[:0]
	m.finished = m.finished[:0]

	for _, a := range m.actions {
		if a.stopped {
			continue
		}
		if a.Target == nil || (a.disposable != nil && a.disposable.IsDisposed()) {
			a.stopped = true
			continue
		}
		m.advance(a, dt)
		if a.Weight > 0 {
			m.collect(a)
		}
	}

	for i := range m.blends {
		e := &m.blends[i]
		e.target.Set(e.path, e.value)
	}

	for _, a := range m.looped {
		a.OnLooped(a)
	}
	for _, a := range m.finished {
		if a.OnFinished != nil {
			a.OnFinished(a)
		}
		a.stopped = true
	}

	m.sweep()
}

// advance moves one action's clock, wrapping or clamping at the clip end.
func (m *Mixer) advance(a *Action, dt float64) {
	if a.Paused || a.Speed == 0 || dt == 0 {
		return
	}
	a.LocalTime += dt * a.Speed
	d := a.Clip.Duration()
	if d <= 0 {
		a.LocalTime = 0
		if !a.Looping {
			m.finished = append(m.finished, a)
		}
		return
	}
	if a.Looping {
		if a.LocalTime >= d || a.LocalTime < 0 {
			a.LocalTime = math.Mod(a.LocalTime, d)
			if a.LocalTime < 0 {
				a.LocalTime += d
			}
			if a.OnLooped != nil {
				m.looped = append(m.looped, a)
			}
		}
		return
	}
	if a.LocalTime >= d {
		a.LocalTime = d
		m.finished = append(m.finished, a)
	} else if a.LocalTime < 0 {
		a.LocalTime = 0
	}
}

// collect samples every track of the action at its local time and folds the
// results into the frame's blend slots.
func (m *Mixer) collect(a *Action) {
	for _, tr := range a.Clip.tracks {
		v, ok := tr.Sample(a.LocalTime)
		if !ok {
			continue // no keyframes: target untouched
		}
		m.blend(a.Target, tr.TargetPath, v, a.Weight)
	}
}

func (m *Mixer) blend(target Target, path string, v Value, w float64) {
	for i := range m.blends {
		e := &m.blends[i]
		if e.target == target && e.path == path {
			total := e.weight + w
			e.value = Lerp(e.value, v, w/total)
			e.weight = total
			return
		}
	}
	m.blends = append(m.blends, pathBlend{target: target, path: path, value: v, weight: w})
}

// sweep compacts the action list, dropping stopped actions.
func (m *Mixer) sweep() {
	live := m.actions[:0]
	for _, a := range m.actions {
		if !a.stopped {
			live = append(live, a)
		}
	}
	for i := len(live); i < len(m.actions); i++ {
		m.actions[i] = nil
	}
	m.actions = live
}
