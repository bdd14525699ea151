package cadence

import (
	"fmt"
	"log"
	"strconv"
)

// ParamType identifies the value kind a machine parameter holds.
type ParamType uint8

const (
	ParamBool    ParamType = iota // boolean flag
	ParamInt                      // whole number
	ParamFloat                    // continuous value
	ParamTrigger                  // one-shot flag, cleared after the Update that observes it
)

// Parameter is a named, typed value the machine reads while evaluating
// transition conditions. Hosts write parameters through the machine's typed
// setters, never directly.
type Parameter struct {
	Name string
	Type ParamType

	b bool
	i int
	f float64

	defB bool
	defI int
	defF float64

	observed bool // trigger was read by a condition this Update
}

// Bool returns the current boolean value. Trigger parameters report whether
// they are set.
func (p *Parameter) Bool() bool { return p.b }

// Int returns the current integer value.
func (p *Parameter) Int() int { return p.i }

// Float returns the current float value.
func (p *Parameter) Float() float64 { return p.f }

// Value returns the current value boxed for snapshots and tooling.
func (p *Parameter) Value() any {
	switch p.Type {
	case ParamBool, ParamTrigger:
		return p.b
	case ParamInt:
		return p.i
	default:
		return p.f
	}
}

// CondOp compares a parameter against a condition's reference value.
type CondOp uint8

const (
	OpEq  CondOp = iota // ==
	OpNeq               // !=
	OpGt                // >
	OpLt                // <
	OpGte               // >=
	OpLte               // <=
)

// Condition is one clause of a transition's guard; all clauses of an edge
// must hold together. Bool carries the reference value for boolean
// parameters and Number for int and float ones. A condition on a trigger
// holds whenever the trigger is set, ignoring the operator.
type Condition struct {
	Parameter string
	Op        CondOp
	Bool      bool
	Number    float64
}

// Point is a 2D editor coordinate. The runtime never reads it; it rides
// along so graph documents round-trip without losing node placement.
type Point struct {
	X, Y float64
}

// State is one node of a machine's graph: a named animation binding plus
// its outgoing transitions. Exactly one state is current while the machine
// runs; during a crossfade the from and to states are co-active.
type State struct {
	Name          string
	AnimationName string // resolved through the machine's library on entry
	Speed         float64
	Loop          bool
	Position      Point // editor placement, round-trip only

	// OnEnter and OnExit fire exactly once per activation and
	// deactivation. Nil by default.
	OnEnter func()
	OnExit  func()

	id          string
	transitions []*Transition
}

// ID returns the state's stable identity used by graph documents.
func (s *State) ID() string { return s.id }

// Transitions returns the state's outgoing edges in evaluation order.
// Callers must not modify the returned slice.
func (s *State) Transitions() []*Transition { return s.transitions }

// Transition is a directed edge between two states.
type Transition struct {
	From, To string

	Conditions []Condition

	// Duration is the crossfade length in seconds. Zero or less switches
	// states instantly.
	Duration float64

	// HasExitTime gates the edge until the source clip has played past
	// ExitTime, a fraction of its length in [0, 1].
	HasExitTime bool
	ExitTime    float64

	// Interruptible lets another edge from the same source re-target the
	// machine mid-blend; the abandoned blend is undone by explicit state
	// re-entry before the new one begins.
	Interruptible bool

	Curve  Curve
	Easing Ease

	id string
}

// ID returns the transition's stable identity used by graph documents.
func (t *Transition) ID() string { return t.id }

// When adds a numeric condition against an int or float parameter.
func (t *Transition) When(param string, op CondOp, v float64) *Transition {
	t.Conditions = append(t.Conditions, Condition{Parameter: param, Op: op, Number: v})
	return t
}

// WhenBool adds a condition that holds while a bool parameter equals v.
func (t *Transition) WhenBool(param string, v bool) *Transition {
	t.Conditions = append(t.Conditions, Condition{Parameter: param, Op: OpEq, Bool: v})
	return t
}

// WhenTrigger adds a condition that holds when a trigger parameter is set.
func (t *Transition) WhenTrigger(param string) *Transition {
	t.Conditions = append(t.Conditions, Condition{Parameter: param, Op: OpEq, Bool: true})
	return t
}

// WithExitTime gates the edge until the source clip's normalized time
// reaches at.
func (t *Transition) WithExitTime(at float64) *Transition {
	t.HasExitTime = true
	t.ExitTime = at
	return t
}

// MachineStatus is the machine's coarse lifecycle phase. Exactly one phase
// holds at any instant.
type MachineStatus uint8

const (
	StatusIdle          MachineStatus = iota // not started, no current state
	StatusRunning                            // one current state, no blend in flight
	StatusTransitioning                      // blending between two states
)

// Machine is a parameter-driven state machine over animation clips. Each
// Update it evaluates the current state's outgoing transitions against its
// parameters, runs at most one crossfade at a time, and drives an internal
// mixer that writes the blended result to the bound target.
//
// During a blend the from state stays current: its outgoing edges are the
// ones an interruptible blend re-evaluates, and Snapshot keeps reporting it
// until the hand-off completes.
type Machine struct {
	lib    *Library
	target Target
	mixer  *Mixer

	states     map[string]*State
	order      []*State
	params     map[string]*Parameter
	paramOrder []*Parameter

	defaultName string

	current    *State
	currentAct *Action

	fade       Crossfade
	active     *Transition // edge being blended, nil otherwise
	pending    *State
	pendingAct *Action

	// enteredPending records that enter/exit callbacks already fired at
	// blend start (edges without exit time), so completion must not fire
	// them again.
	enteredPending bool

	sink EventSink

	// OnTransitionBegan and OnTransitionFinished observe every edge the
	// machine takes, including instant ones. Nil by default.
	OnTransitionBegan    func(from, to string)
	OnTransitionFinished func(from, to string)
}

// NewMachine returns an empty machine resolving clips from lib and writing
// samples to target. Nil arguments panic.
func NewMachine(lib *Library, target Target) *Machine {
	if lib == nil {
		panic("cadence: cannot create machine with nil library")
	}
	if target == nil {
		panic("cadence: cannot create machine with nil target")
	}
	m := &Machine{
		lib:    lib,
		target: target,
		mixer:  NewMixer(),
		states: make(map[string]*State),
		params: make(map[string]*Parameter),
	}
	m.fade.OnFinished = m.completeTransition
	return m
}

// Mixer returns the machine's internal mixer. The machine owns the actions
// on it; callers may inspect but should not stop them directly.
func (m *Machine) Mixer() *Mixer { return m.mixer }

// States returns the machine's states in registration order. Callers must
// not modify the returned slice.
func (m *Machine) States() []*State { return m.order }

// Parameters returns the machine's parameters in registration order.
// Callers must not modify the returned slice.
func (m *Machine) Parameters() []*Parameter { return m.paramOrder }

// AddState registers a state bound to the named clip and returns it for
// tuning. Speed defaults to 1 and Loop to true. The first state added is
// the entry state unless SetDefault overrides it. Re-adding a name logs a
// warning and returns the existing state unchanged.
func (m *Machine) AddState(name, animationName string) *State {
	if s, ok := m.states[name]; ok {
		log.Printf("cadence: machine already has state %q", name)
		return s
	}
	s := &State{
		Name:          name,
		AnimationName: animationName,
		Speed:         1,
		Loop:          true,
		id:            nextGraphID("s"),
	}
	m.states[name] = s
	m.order = append(m.order, s)
	return s
}

// State returns the named state, or nil with a warning when the name is
// unknown.
func (m *Machine) State(name string) *State {
	s := m.states[name]
	if s == nil {
		log.Printf("cadence: machine has no state %q", name)
	}
	return s
}

// SetDefault picks the state Start enters. Unknown names log a warning and
// leave the default unchanged.
func (m *Machine) SetDefault(name string) {
	if _, ok := m.states[name]; !ok {
		log.Printf("cadence: machine has no state %q", name)
		return
	}
	m.defaultName = name
}

// AddTransition registers a directed edge between two existing states and
// returns it for condition and tuning setup. Duration defaults to 0.25
// seconds on a linear curve. Unregistered endpoints are rejected: nothing
// is added and a non-nil error comes back.
func (m *Machine) AddTransition(from, to string) (*Transition, error) {
	f := m.states[from]
	if f == nil || m.states[to] == nil {
		log.Printf("cadence: transition %s -> %s references an unregistered state", from, to)
		return nil, fmt.Errorf("cadence: transition %s -> %s references an unregistered state", from, to)
	}
	tr := &Transition{
		From:     from,
		To:       to,
		Duration: 0.25,
		Easing:   EaseInOut,
		id:       nextGraphID("t"),
	}
	f.transitions = append(f.transitions, tr)
	return tr, nil
}

// AddParameter registers a typed parameter with a default value. The
// default may be nil for the type's zero value; numeric defaults accept
// both int and float64, since graph documents decode numbers as float64.
// A duplicate name logs a warning and replaces the old parameter.
func (m *Machine) AddParameter(name string, typ ParamType, def any) *Parameter {
	p := &Parameter{Name: name, Type: typ}
	switch typ {
	case ParamBool:
		if v, ok := def.(bool); ok {
			p.defB = v
		} else if def != nil {
			log.Printf("cadence: parameter %q wants a bool default, got %T", name, def)
		}
		p.b = p.defB
	case ParamInt:
		switch v := def.(type) {
		case int:
			p.defI = v
		case float64:
			p.defI = int(v)
		case nil:
		default:
			log.Printf("cadence: parameter %q wants an int default, got %T", name, def)
		}
		p.i = p.defI
	case ParamFloat:
		switch v := def.(type) {
		case float64:
			p.defF = v
		case int:
			p.defF = float64(v)
		case nil:
		default:
			log.Printf("cadence: parameter %q wants a float default, got %T", name, def)
		}
		p.f = p.defF
	case ParamTrigger:
		// triggers start unset; defaults are ignored
	}
	if old, ok := m.params[name]; ok {
		log.Printf("cadence: machine already has parameter %q, replacing", name)
		for i, q := range m.paramOrder {
			if q == old {
				m.paramOrder[i] = p
				break
			}
		}
		m.params[name] = p
		return p
	}
	m.params[name] = p
	m.paramOrder = append(m.paramOrder, p)
	return p
}

// Param returns a registered parameter for reading, or nil with a warning
// when the name is unknown.
func (m *Machine) Param(name string) *Parameter {
	p := m.params[name]
	if p == nil {
		log.Printf("cadence: machine has no parameter %q", name)
	}
	return p
}

// SetBool writes a bool parameter. Unknown names and type mismatches log a
// warning and change nothing.
func (m *Machine) SetBool(name string, v bool) {
	p := m.params[name]
	if p == nil {
		log.Printf("cadence: machine has no parameter %q", name)
		return
	}
	if p.Type != ParamBool {
		log.Printf("cadence: parameter %q is not a bool", name)
		return
	}
	p.b = v
}

// SetInt writes an int parameter. Unknown names and type mismatches log a
// warning and change nothing.
func (m *Machine) SetInt(name string, v int) {
	p := m.params[name]
	if p == nil {
		log.Printf("cadence: machine has no parameter %q", name)
		return
	}
	if p.Type != ParamInt {
		log.Printf("cadence: parameter %q is not an int", name)
		return
	}
	p.i = v
}

// SetFloat writes a float parameter. Unknown names and type mismatches log
// a warning and change nothing.
func (m *Machine) SetFloat(name string, v float64) {
	p := m.params[name]
	if p == nil {
		log.Printf("cadence: machine has no parameter %q", name)
		return
	}
	if p.Type != ParamFloat {
		log.Printf("cadence: parameter %q is not a float", name)
		return
	}
	p.f = v
}

// SetTrigger sets a trigger parameter. The flag stays up until a condition
// observes it during an Update; it clears at the end of that same call.
func (m *Machine) SetTrigger(name string) {
	p := m.params[name]
	if p == nil {
		log.Printf("cadence: machine has no parameter %q", name)
		return
	}
	if p.Type != ParamTrigger {
		log.Printf("cadence: parameter %q is not a trigger", name)
		return
	}
	p.b = true
	p.observed = false
}

// Start enters the default state. Starting a started machine, or one with
// no states, logs a warning and does nothing.
func (m *Machine) Start() {
	if m.current != nil {
		log.Printf("cadence: machine already started")
		return
	}
	name := m.defaultName
	if name == "" {
		if len(m.order) == 0 {
			log.Printf("cadence: machine has no states")
			return
		}
		name = m.order[0].Name
	}
	s := m.states[name]
	m.current = s
	m.currentAct = m.startAction(s)
	m.fireEnter(s)
}

// Stop deactivates the machine: any blend is abandoned, all of its actions
// stop, the active state exits, and the machine returns to idle. Parameters
// keep their values.
func (m *Machine) Stop() {
	if m.current == nil {
		return
	}
	if m.fade.Active() {
		m.fade.Cancel()
		if m.enteredPending {
			m.fireExit(m.pending)
		} else {
			m.fireExit(m.current)
		}
	} else {
		m.fireExit(m.current)
	}
	if m.currentAct != nil {
		m.currentAct.Stop()
	}
	m.current = nil
	m.currentAct = nil
	m.active = nil
	m.pending = nil
	m.pendingAct = nil
	m.enteredPending = false
}

// Play forces the named state immediately, skipping transitions and blends.
// An in-flight blend is undone by explicit re-entry first. Unknown names
// log a warning and change nothing.
func (m *Machine) Play(name string) {
	s := m.states[name]
	if s == nil {
		log.Printf("cadence: machine has no state %q", name)
		return
	}
	if m.current == nil {
		m.current = s
		m.currentAct = m.startAction(s)
		m.fireEnter(s)
		return
	}
	if s == m.current && !m.fade.Active() {
		return
	}
	if m.fade.Active() {
		m.interrupt()
	}
	from := m.current
	if m.currentAct != nil {
		m.currentAct.Stop()
	}
	m.current = s
	m.currentAct = m.startAction(s)
	m.fireExit(from)
	m.fireEnter(s)
}

// CurrentState returns the current state's name, or "" when idle. During a
// blend it stays the from state until the hand-off completes.
func (m *Machine) CurrentState() string {
	if m.current == nil {
		return ""
	}
	return m.current.Name
}

// Status reports which lifecycle phase the machine is in.
func (m *Machine) Status() MachineStatus {
	switch {
	case m.current == nil:
		return StatusIdle
	case m.fade.Active():
		return StatusTransitioning
	default:
		return StatusRunning
	}
}

// Update advances the machine by dt seconds: evaluate transitions, move any
// in-flight crossfade, run the internal mixer, then clear triggers observed
// by this call's condition checks.
func (m *Machine) Update(dt float64) {
	if m.current != nil {
		if m.fade.Active() {
			m.updateBlend(dt)
		} else if tr := m.match(); tr != nil {
			m.begin(tr)
		}
	}
	m.mixer.Update(dt)
	m.resetTriggers()
}

// updateBlend advances the active crossfade, first giving interruptible
// edges a chance to re-target. A re-target starts the new edge without
// advancing it this frame, so its weights begin at (1, 0) like any other.
func (m *Machine) updateBlend(dt float64) {
	if m.active != nil && m.active.Interruptible {
		if tr := m.match(); tr != nil && tr != m.active {
			m.interrupt()
			m.begin(tr)
			return
		}
	}
	m.fade.Update(dt)
}

// match returns the first eligible edge out of the current state. Edges are
// checked in registration order; an exit-time gate is checked before the
// edge's conditions, so a gated trigger is not consumed while the gate is
// closed.
func (m *Machine) match() *Transition {
	nt := 1.0
	if m.currentAct != nil {
		nt = m.currentAct.NormalizedTime()
	}
	for _, tr := range m.current.transitions {
		if tr.HasExitTime && nt < tr.ExitTime {
			continue
		}
		if m.conditionsHold(tr.Conditions) {
			return tr
		}
	}
	return nil
}

// conditionsHold reports whether every clause holds. An empty list is
// vacuously true, which makes a gated edge with no conditions a pure timed
// hand-off.
func (m *Machine) conditionsHold(conds []Condition) bool {
	for i := range conds {
		if !m.holds(&conds[i]) {
			return false
		}
	}
	return true
}

// holds evaluates one clause. Unknown parameters never hold; a set trigger
// holds and is marked for reset at the end of this Update.
func (m *Machine) holds(c *Condition) bool {
	p := m.params[c.Parameter]
	if p == nil {
		return false
	}
	switch p.Type {
	case ParamTrigger:
		if p.b {
			p.observed = true
			return true
		}
		return false
	case ParamBool:
		switch c.Op {
		case OpEq:
			return p.b == c.Bool
		case OpNeq:
			return p.b != c.Bool
		}
		return false
	case ParamInt:
		return compareNumber(float64(p.i), c.Op, c.Number)
	default:
		return compareNumber(p.f, c.Op, c.Number)
	}
}

func compareNumber(a float64, op CondOp, b float64) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNeq:
		return a != b
	case OpGt:
		return a > b
	case OpLt:
		return a < b
	case OpGte:
		return a >= b
	default:
		return a <= b
	}
}

// begin takes an edge. Edges with a positive duration, a live source action,
// and a resolvable target clip start a crossfade; everything else switches
// instantly. Enter/exit callbacks fire at begin for non-gated edges and at
// completion for gated ones.
func (m *Machine) begin(tr *Transition) {
	from := m.current
	to := m.states[tr.To]
	m.fireTransitionBegan(from.Name, to.Name)

	toAct := m.startAction(to)
	if tr.Duration <= 0 || m.currentAct == nil || toAct == nil {
		if m.currentAct != nil {
			m.currentAct.Stop()
		}
		m.current = to
		m.currentAct = toAct
		m.fireExit(from)
		m.fireEnter(to)
		m.fireTransitionFinished(from.Name, to.Name)
		return
	}

	m.fade.Begin(m.currentAct, toAct, tr.Duration, tr.Curve, tr.Easing)
	m.active = tr
	m.pending = to
	m.pendingAct = toAct
	m.enteredPending = !tr.HasExitTime
	if m.enteredPending {
		m.fireExit(from)
		m.fireEnter(to)
	}
}

// interrupt abandons the active blend: the pending action stops, the source
// action restores full weight, and any enter fired at begin is balanced by
// an exit, with the source re-entering, so activations stay paired.
func (m *Machine) interrupt() {
	to := m.pending
	from := m.current
	m.fade.Cancel()
	m.active = nil
	m.pending = nil
	m.pendingAct = nil
	if m.enteredPending {
		m.enteredPending = false
		m.fireExit(to)
		m.fireEnter(from)
	}
}

// completeTransition runs when the crossfade finishes: the pending state
// becomes current and gated callbacks fire.
func (m *Machine) completeTransition() {
	from := m.current
	to := m.pending
	m.current = to
	m.currentAct = m.pendingAct
	m.active = nil
	m.pending = nil
	m.pendingAct = nil
	if !m.enteredPending {
		m.fireExit(from)
		m.fireEnter(to)
	}
	m.enteredPending = false
	m.fireTransitionFinished(from.Name, to.Name)
}

// startAction begins playback of a state's clip on the machine's mixer.
// States with no animation name, or whose clip is missing from the library,
// run without an action; the library logs the miss.
func (m *Machine) startAction(s *State) *Action {
	if s.AnimationName == "" {
		return nil
	}
	c := m.lib.Clip(s.AnimationName)
	if c == nil {
		return nil
	}
	a := m.mixer.NewAction(c, m.target)
	a.Speed = s.Speed
	a.Looping = s.Loop
	return a
}

func (m *Machine) fireEnter(s *State) {
	if s.OnEnter != nil {
		s.OnEnter()
	}
	m.emit(EventStateEntered, s.Name, "")
}

func (m *Machine) fireExit(s *State) {
	if s.OnExit != nil {
		s.OnExit()
	}
	m.emit(EventStateExited, s.Name, "")
}

func (m *Machine) fireTransitionBegan(from, to string) {
	if m.OnTransitionBegan != nil {
		m.OnTransitionBegan(from, to)
	}
	m.emit(EventTransitionBegan, to, from)
}

func (m *Machine) fireTransitionFinished(from, to string) {
	if m.OnTransitionFinished != nil {
		m.OnTransitionFinished(from, to)
	}
	m.emit(EventTransitionFinished, to, from)
}

func (m *Machine) emit(t EventType, state, from string) {
	if m.sink == nil {
		return
	}
	m.sink.EmitAnimationEvent(AnimationEvent{Type: t, State: state, From: from})
}

// resetTriggers clears triggers observed by condition checks this Update.
// Unobserved triggers stay set for later frames.
func (m *Machine) resetTriggers() {
	for _, p := range m.paramOrder {
		if p.observed {
			p.b = false
			p.observed = false
		}
	}
}

// Graph documents need stable string ids for states and edges. Fresh ids
// come from a plain counter (no atomic, cadence is single-threaded);
// imports keep the ids their document carries.
var lastGraphID uint64

func nextGraphID(prefix string) string {
	lastGraphID++
	return prefix + strconv.FormatUint(lastGraphID, 10)
}
