package cadence

import (
	"math"
	"reflect"
	"testing"
)

// machineFixture returns a machine with Idle and Walk states over constant
// clips writing 0 and 10 to "x", plus a "run" clip in the library.
func machineFixture(t *testing.T) (*Machine, *Object) {
	t.Helper()
	lib := NewLibrary()
	lib.Add(constClip(t, "idle", "x", 0, true))
	lib.Add(constClip(t, "walk", "x", 10, true))
	lib.Add(constClip(t, "run", "x", 20, true))
	obj := NewObject()
	m := NewMachine(lib, obj)
	m.AddState("Idle", "idle")
	m.AddState("Walk", "walk")
	return m, obj
}

// traceMachine records every callback the machine fires into dst, in order.
func traceMachine(m *Machine, dst *[]string) {
	for _, s := range m.States() {
		name := s.Name
		s.OnEnter = func() { *dst = append(*dst, "enter "+name) }
		s.OnExit = func() { *dst = append(*dst, "exit "+name) }
	}
	m.OnTransitionBegan = func(from, to string) { *dst = append(*dst, "began "+from+">"+to) }
	m.OnTransitionFinished = func(from, to string) { *dst = append(*dst, "finished "+from+">"+to) }
}

type recordingSink struct {
	events []AnimationEvent
}

func (r *recordingSink) EmitAnimationEvent(e AnimationEvent) {
	r.events = append(r.events, e)
}

func TestMachineStartEntersDefaultState(t *testing.T) {
	m, _ := machineFixture(t)
	entered := 0
	m.State("Idle").OnEnter = func() { entered++ }

	m.Start()

	if got := m.CurrentState(); got != "Idle" {
		t.Fatalf("CurrentState = %q, want Idle", got)
	}
	if m.Status() != StatusRunning {
		t.Fatalf("Status = %v, want StatusRunning", m.Status())
	}
	if got := m.Mixer().Len(); got != 1 {
		t.Fatalf("mixer has %d actions, want 1", got)
	}
	if entered != 1 {
		t.Fatalf("OnEnter fired %d times, want 1", entered)
	}
}

func TestMachineStartHonorsSetDefault(t *testing.T) {
	m, _ := machineFixture(t)
	m.SetDefault("Walk")
	m.Start()
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q, want Walk", got)
	}
}

func TestMachineWithoutStatesStaysIdle(t *testing.T) {
	m := NewMachine(NewLibrary(), NewObject())
	m.Start()
	if m.Status() != StatusIdle {
		t.Fatalf("Status = %v, want StatusIdle", m.Status())
	}
	m.Update(0.1) // must not panic with no states
}

func TestMachineBlendsOnParameterChange(t *testing.T) {
	m, obj := machineFixture(t)
	m.AddParameter("speed", ParamFloat, 0.0)
	tr, err := m.AddTransition("Idle", "Walk")
	if err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	tr.When("speed", OpGt, 0.1).Duration = 0.5

	m.Start()
	m.Update(0.1)
	if m.Status() != StatusRunning {
		t.Fatalf("transitioned with speed 0; Status = %v", m.Status())
	}

	m.SetFloat("speed", 5)
	m.Update(0.1)
	if m.Status() != StatusTransitioning {
		t.Fatalf("Status = %v after speed change, want StatusTransitioning", m.Status())
	}
	if got := m.CurrentState(); got != "Idle" {
		t.Fatalf("CurrentState during blend = %q, want Idle", got)
	}
	if got := m.Mixer().Len(); got != 2 {
		t.Fatalf("blend should hold two actions, got %d", got)
	}
	if got := obj.Float("x"); got != 0 {
		t.Fatalf("x = %v on the begin frame, want 0 (weights start at 1,0)", got)
	}

	m.Update(0.25)
	if got := obj.Float("x"); math.Abs(got-5) > 1e-6 {
		t.Fatalf("x = %v at half blend, want 5", got)
	}

	m.Update(0.25)
	if m.Status() != StatusRunning {
		t.Fatalf("Status = %v after blend, want StatusRunning", m.Status())
	}
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q after blend, want Walk", got)
	}
	if got := obj.Float("x"); got != 10 {
		t.Fatalf("x = %v after blend, want 10 exactly", got)
	}
	if got := m.Mixer().Len(); got != 1 {
		t.Fatalf("mixer has %d actions after blend, want 1", got)
	}
}

func TestMachineFirstMatchWins(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddState("Run", "run")
	m.AddParameter("go", ParamBool, false)
	first, _ := m.AddTransition("Idle", "Walk")
	first.WhenBool("go", true).Duration = 0
	second, _ := m.AddTransition("Idle", "Run")
	second.WhenBool("go", true).Duration = 0

	m.Start()
	m.SetBool("go", true)
	m.Update(0.1)

	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q, want Walk (first registered edge wins)", got)
	}
}

func TestMachineExitTimeGates(t *testing.T) {
	m, _ := machineFixture(t)
	began := 0
	m.OnTransitionBegan = func(from, to string) { began++ }
	tr, _ := m.AddTransition("Idle", "Walk")
	tr.WithExitTime(0.5).Duration = 0.25

	m.Start()
	m.Update(0.25) // evaluated at normalized time 0
	m.Update(0.25) // evaluated at 0.25
	if began != 0 {
		t.Fatalf("edge fired %d times before its exit time", began)
	}
	m.Update(0.25) // evaluated at 0.5: fires
	if began != 1 {
		t.Fatalf("edge fired %d times at the exit time, want exactly 1", began)
	}
	m.Update(0.25) // blend completes; no second fire
	if began != 1 {
		t.Fatalf("edge fired %d times in total, want exactly 1", began)
	}
}

func TestMachineGatedCallbacksFireAtCompletion(t *testing.T) {
	m, _ := machineFixture(t)
	tr, _ := m.AddTransition("Idle", "Walk")
	tr.WithExitTime(0.5).Duration = 0.5
	var trace []string
	traceMachine(m, &trace)

	m.Start()
	m.Update(0.5)  // gate closed at normalized time 0
	m.Update(0.25) // gate open: blend begins, enter/exit held back

	want := []string{"enter Idle", "began Idle>Walk"}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("callbacks at begin = %v, want %v", trace, want)
	}
	if got := m.CurrentState(); got != "Idle" {
		t.Fatalf("CurrentState during gated blend = %q, want Idle", got)
	}

	m.Update(0.25)
	m.Update(0.25) // blend completes here

	want = []string{"enter Idle", "began Idle>Walk", "exit Idle", "enter Walk", "finished Idle>Walk"}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("callbacks = %v, want %v", trace, want)
	}
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q after blend, want Walk", got)
	}
}

func TestMachineImmediateCallbacksFireAtBegin(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("go", ParamBool, false)
	tr, _ := m.AddTransition("Idle", "Walk")
	tr.WhenBool("go", true).Duration = 0.5
	var trace []string
	traceMachine(m, &trace)

	m.Start()
	m.SetBool("go", true)
	m.Update(0.1)

	want := []string{"enter Idle", "began Idle>Walk", "exit Idle", "enter Walk"}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("callbacks at begin = %v, want %v", trace, want)
	}

	m.Update(0.5) // completion only reports the finish
	want = append(want, "finished Idle>Walk")
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("callbacks = %v, want %v", trace, want)
	}
}

func TestMachineInstantSwitchEventOrder(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("go", ParamBool, false)
	tr, _ := m.AddTransition("Idle", "Walk")
	tr.WhenBool("go", true).Duration = 0
	sink := &recordingSink{}
	m.SetEventSink(sink)

	m.Start()
	m.SetBool("go", true)
	m.Update(0.1)

	want := []AnimationEvent{
		{Type: EventStateEntered, State: "Idle"},
		{Type: EventTransitionBegan, State: "Walk", From: "Idle"},
		{Type: EventStateExited, State: "Idle"},
		{Type: EventStateEntered, State: "Walk"},
		{Type: EventTransitionFinished, State: "Walk", From: "Idle"},
	}
	if !reflect.DeepEqual(sink.events, want) {
		t.Fatalf("events = %v, want %v", sink.events, want)
	}
	if m.Status() != StatusRunning {
		t.Fatalf("Status = %v after instant switch, want StatusRunning", m.Status())
	}
}

func TestMachineTriggerFiresAndResets(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("jump", ParamTrigger, nil)
	tr, _ := m.AddTransition("Idle", "Walk")
	tr.WhenTrigger("jump").Duration = 0

	m.Start()
	m.Update(0.1)
	if got := m.CurrentState(); got != "Idle" {
		t.Fatalf("moved to %q without the trigger", got)
	}

	m.SetTrigger("jump")
	if !m.Param("jump").Bool() {
		t.Fatalf("trigger not set")
	}
	m.Update(0.1)
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q, want Walk", got)
	}
	if m.Param("jump").Bool() {
		t.Fatalf("trigger still set after the Update that observed it")
	}
}

func TestMachineUnobservedTriggerStaysSet(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("jump", ParamTrigger, nil)

	m.Start()
	m.SetTrigger("jump")
	m.Update(0.1)
	m.Update(0.1)

	if !m.Param("jump").Bool() {
		t.Fatalf("trigger cleared although no condition observed it")
	}
}

func TestMachineGatedTriggerWaitsForGate(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("jump", ParamTrigger, nil)
	tr, _ := m.AddTransition("Idle", "Walk")
	tr.WhenTrigger("jump").WithExitTime(0.5).Duration = 0

	m.Start()
	m.SetTrigger("jump")
	m.Update(0.25)
	m.Update(0.25)
	if got := m.CurrentState(); got != "Idle" {
		t.Fatalf("gated edge fired early, state %q", got)
	}
	if !m.Param("jump").Bool() {
		t.Fatalf("closed gate consumed the trigger")
	}

	m.Update(0.25) // gate opens at normalized time 0.5
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q once gate opened, want Walk", got)
	}
	if m.Param("jump").Bool() {
		t.Fatalf("trigger still set after firing")
	}
}

func TestMachineInterruptibleRetargets(t *testing.T) {
	m, obj := machineFixture(t)
	m.AddState("Run", "run")
	m.AddParameter("speed", ParamFloat, 0.0)
	toRun, _ := m.AddTransition("Idle", "Run")
	toRun.When("speed", OpGt, 5).Duration = 1
	toWalk, _ := m.AddTransition("Idle", "Walk")
	toWalk.When("speed", OpGt, 0.1).Duration = 1
	toWalk.Interruptible = true
	var trace []string
	traceMachine(m, &trace)

	m.Start()
	m.SetFloat("speed", 1)
	m.Update(0.1) // begins Idle -> Walk
	if m.Status() != StatusTransitioning {
		t.Fatalf("Status = %v, want StatusTransitioning", m.Status())
	}

	m.SetFloat("speed", 10)
	m.Update(0.1) // re-targets to Idle -> Run by explicit re-entry
	if got := m.Mixer().Len(); got != 2 {
		t.Fatalf("mixer has %d actions after re-target, want 2", got)
	}

	m.Update(1.0) // completes the new blend
	if got := m.CurrentState(); got != "Run" {
		t.Fatalf("CurrentState = %q, want Run", got)
	}
	if got := obj.Float("x"); got != 20 {
		t.Fatalf("x = %v after blend into Run, want 20", got)
	}

	want := []string{
		"enter Idle",
		"began Idle>Walk", "exit Idle", "enter Walk",
		"exit Walk", "enter Idle", "began Idle>Run", "exit Idle", "enter Run",
		"finished Idle>Run",
	}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("callbacks = %v, want %v", trace, want)
	}
}

func TestMachineNonInterruptibleBlocksRetarget(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddState("Run", "run")
	m.AddParameter("speed", ParamFloat, 0.0)
	toRun, _ := m.AddTransition("Idle", "Run")
	toRun.When("speed", OpGt, 5).Duration = 1
	toWalk, _ := m.AddTransition("Idle", "Walk")
	toWalk.When("speed", OpGt, 0.1).Duration = 1

	m.Start()
	m.SetFloat("speed", 1)
	m.Update(0.1)
	m.SetFloat("speed", 10) // would match Idle -> Run, but the blend is locked
	m.Update(1.0)

	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q, want Walk (blend must run to completion)", got)
	}
}

func TestMachineStopReturnsToIdle(t *testing.T) {
	m, _ := machineFixture(t)
	var trace []string
	traceMachine(m, &trace)

	m.Start()
	m.Update(0.1)
	m.Stop()

	if m.Status() != StatusIdle {
		t.Fatalf("Status = %v after Stop, want StatusIdle", m.Status())
	}
	if got := m.CurrentState(); got != "" {
		t.Fatalf("CurrentState = %q after Stop, want empty", got)
	}
	if got := m.Mixer().Len(); got != 0 {
		t.Fatalf("mixer has %d actions after Stop, want 0", got)
	}
	want := []string{"enter Idle", "exit Idle"}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("callbacks = %v, want %v", trace, want)
	}
}

func TestMachinePlayForcesState(t *testing.T) {
	m, _ := machineFixture(t)
	m.Start()

	m.Play("Walk")
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q after Play, want Walk", got)
	}
	if m.Status() != StatusRunning {
		t.Fatalf("Status = %v after Play, want StatusRunning", m.Status())
	}

	m.Play("Missing")
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("unknown Play changed state to %q", got)
	}
}

func TestMachinePlayBeforeStartEnters(t *testing.T) {
	m, _ := machineFixture(t)
	m.Play("Walk")
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q, want Walk", got)
	}
}

func TestMachineAddTransitionRejectsUnknownStates(t *testing.T) {
	m, _ := machineFixture(t)
	if _, err := m.AddTransition("Idle", "Missing"); err == nil {
		t.Fatalf("want error for unregistered target state")
	}
	if _, err := m.AddTransition("Missing", "Idle"); err == nil {
		t.Fatalf("want error for unregistered source state")
	}
	if n := len(m.State("Idle").Transitions()); n != 0 {
		t.Fatalf("rejected edge was still added, %d edges", n)
	}
}

func TestMachineParameterTypeMismatchIgnored(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("flag", ParamBool, true)
	m.SetFloat("flag", 3)
	if !m.Param("flag").Bool() {
		t.Fatalf("type-mismatched set changed the value")
	}

	m.SetBool("missing", true) // unknown name: warn and move on

	m.AddParameter("count", ParamInt, 2)
	if got := m.Param("count").Int(); got != 2 {
		t.Fatalf("count default = %d, want 2", got)
	}
	m.SetInt("count", 7)
	if got := m.Param("count").Int(); got != 7 {
		t.Fatalf("count = %d, want 7", got)
	}

	m.AddParameter("ratio", ParamFloat, 3) // int default coerces for floats
	if got := m.Param("ratio").Float(); got != 3 {
		t.Fatalf("ratio default = %v, want 3", got)
	}
}

func TestMachineStatelessStateTransitionsOut(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddState("Ghost", "nope") // clip not in the library
	m.SetDefault("Ghost")
	tr, _ := m.AddTransition("Ghost", "Walk")
	tr.WithExitTime(0.9).Duration = 0.5

	m.Start()
	if got := m.CurrentState(); got != "Ghost" {
		t.Fatalf("CurrentState = %q, want Ghost", got)
	}
	if got := m.Mixer().Len(); got != 0 {
		t.Fatalf("stateless state holds %d actions, want 0", got)
	}

	// With no action the gate reads normalized time 1, and with no source
	// action the switch is instant.
	m.Update(0.1)
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("CurrentState = %q, want Walk", got)
	}
	if m.Status() != StatusRunning {
		t.Fatalf("Status = %v, want StatusRunning", m.Status())
	}
}

func TestMachineTransitionToMissingClipIsInstant(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddState("Ghost", "nope")
	tr, _ := m.AddTransition("Idle", "Ghost")
	tr.Duration = 0.5

	m.Start()
	m.Update(0.1)
	if got := m.CurrentState(); got != "Ghost" {
		t.Fatalf("CurrentState = %q, want Ghost", got)
	}
	if m.Status() != StatusRunning {
		t.Fatalf("Status = %v, want StatusRunning (nothing to blend into)", m.Status())
	}
}

func TestMachineSnapshot(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("speed", ParamFloat, 0.0)
	m.AddParameter("armed", ParamBool, true)
	m.AddParameter("coins", ParamInt, 3)
	m.AddParameter("jump", ParamTrigger, nil)
	tr, _ := m.AddTransition("Idle", "Walk")
	tr.When("speed", OpGt, 0.1).Duration = 0.5

	m.Start()
	snap := m.Snapshot()
	if snap.CurrentState != "Idle" || snap.IsTransitioning {
		t.Fatalf("snapshot = %+v, want running in Idle", snap)
	}
	wantParams := map[string]any{"speed": 0.0, "armed": true, "coins": 3, "jump": false}
	if !reflect.DeepEqual(snap.Parameters, wantParams) {
		t.Fatalf("snapshot parameters = %v, want %v", snap.Parameters, wantParams)
	}

	m.SetFloat("speed", 5)
	m.Update(0.1)  // blend begins
	m.Update(0.25) // half way through
	snap = m.Snapshot()
	if !snap.IsTransitioning {
		t.Fatalf("snapshot not transitioning mid-blend")
	}
	if math.Abs(snap.TransitionProgress-0.5) > 1e-6 {
		t.Fatalf("TransitionProgress = %v, want 0.5", snap.TransitionProgress)
	}
	if snap.CurrentState != "Idle" {
		t.Fatalf("snapshot CurrentState = %q during blend, want Idle", snap.CurrentState)
	}
}

func TestMachineUpdateZeroAlloc(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("speed", ParamFloat, 0.0)
	tr, _ := m.AddTransition("Idle", "Walk")
	tr.When("speed", OpGt, 100).Duration = 0.25

	m.Start()
	m.Update(0.01) // warm up the mixer's scratch buffers

	result := testing.AllocsPerRun(100, func() {
		m.Update(0.001)
	})
	if result > 0 {
		t.Errorf("Machine.Update allocated %f times per run, want 0", result)
	}
}
