package cadence

// EventType identifies a kind of animation event.
type EventType uint8

const (
	EventStateEntered       EventType = iota // a machine state became active
	EventStateExited                         // a machine state was deactivated
	EventTransitionBegan                     // a blend toward a new state started
	EventTransitionFinished                  // a blend completed; the target state is current
)

// AnimationEvent is the typed payload delivered to an EventSink.
type AnimationEvent struct {
	Type  EventType
	State string // the state entered/exited, or the transition's target
	From  string // the source state, set on transition events
}

// EventSink receives machine events. Attach one with Machine.SetEventSink
// when callbacks alone are not enough, such as ECS worlds or debug overlays.
// Events are delivered synchronously during Update, in occurrence order;
// there is no process-wide sink.
type EventSink interface {
	EmitAnimationEvent(AnimationEvent)
}

// Snapshot is a read-only copy of a machine's externally observable state,
// taken with Machine.Snapshot. Mutating it (including the Parameters map)
// has no effect on the machine.
type Snapshot struct {
	CurrentState       string
	IsTransitioning    bool
	TransitionProgress float64
	Parameters         map[string]any
}

// SetEventSink attaches sink to receive the machine's state and transition
// events. Pass nil to detach.
func (m *Machine) SetEventSink(sink EventSink) {
	m.sink = sink
}

// Snapshot captures the machine's externally observable state: the current
// state name, whether a blend is in flight and its raw progress, and every
// parameter's value. The copy allocates; call it for tooling, not per frame
// on a hot path.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		CurrentState:    m.CurrentState(),
		IsTransitioning: m.fade.Active(),
		Parameters:      make(map[string]any, len(m.paramOrder)),
	}
	if s.IsTransitioning {
		s.TransitionProgress = m.fade.Progress()
	}
	for _, p := range m.paramOrder {
		s.Parameters[p.Name] = p.Value()
	}
	return s
}
