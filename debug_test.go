package cadence

import (
	"reflect"
	"testing"
)

func TestSnapshotBeforeStart(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("speed", ParamFloat, 1.5)

	snap := m.Snapshot()
	if snap.CurrentState != "" {
		t.Fatalf("CurrentState = %q before Start", snap.CurrentState)
	}
	if snap.IsTransitioning || snap.TransitionProgress != 0 {
		t.Fatalf("idle snapshot = %+v", snap)
	}
	if got := snap.Parameters["speed"]; got != 1.5 {
		t.Fatalf("speed = %v, want declared default", got)
	}
}

func TestSnapshotTracksLiveParameters(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("speed", ParamFloat, 0.0)
	m.AddParameter("gear", ParamInt, 1)
	m.Start()

	m.SetFloat("speed", 4.5)
	m.SetInt("gear", 3)
	snap := m.Snapshot()
	want := map[string]any{"speed": 4.5, "gear": 3}
	if !reflect.DeepEqual(snap.Parameters, want) {
		t.Fatalf("Parameters = %v, want %v", snap.Parameters, want)
	}

	// The snapshot is a copy; writing to it must not touch the machine.
	snap.Parameters["speed"] = 99.0
	if got := m.Param("speed").Float(); got != 4.5 {
		t.Fatalf("machine speed = %v after mutating snapshot", got)
	}
}

func TestSetEventSinkNilDetaches(t *testing.T) {
	m, _ := machineFixture(t)
	m.AddParameter("go", ParamBool, false)
	tr, _ := m.AddTransition("Idle", "Walk")
	tr.WhenBool("go", true).Duration = 0

	sink := &recordingSink{}
	m.SetEventSink(sink)
	m.Start()
	if len(sink.events) == 0 {
		t.Fatalf("attached sink saw no events")
	}

	seen := len(sink.events)
	m.SetEventSink(nil)
	m.SetBool("go", true)
	m.Update(0.1)
	if len(sink.events) != seen {
		t.Fatalf("detached sink still receiving events: %d -> %d", seen, len(sink.events))
	}
	if got := m.CurrentState(); got != "Walk" {
		t.Fatalf("machine stalled after detach, current = %q", got)
	}
}
