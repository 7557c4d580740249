package energy

import "fmt"

// EventKind is what happened at a timeline minute.
type EventKind int

const (
	EventWake EventKind = iota
	EventCook
	EventSleep
	EventEmpty
	EventSnack
)

var eventKindNames = [...]string{"wake", "cook", "sleep", "empty", "snack"}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(text []byte) error {
	for i, name := range eventKindNames {
		if string(text) == name {
			*k = EventKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", text)
}

// anchors reports whether the event sets energy. Decay is measured from the
// most recent anchor; other events only observe the level.
func (k EventKind) anchors() bool { return k == EventWake || k == EventCook }

// priority orders events scheduled on the same minute, lowest first.
func (k EventKind) priority() int {
	switch k {
	case EventWake:
		return 0
	case EventSleep:
		return 1
	case EventCook:
		return 2
	case EventSnack:
		return 3
	default:
		return 4
	}
}

// Event is one state change on the timeline.
type Event struct {
	Minutes      int       `json:"minutes"`
	Kind         EventKind `json:"kind"`
	EnergyBefore float64   `json:"energyBefore"`
	EnergyAfter  float64   `json:"energyAfter"`
	IsSnacking   bool      `json:"isSnacking"`
	IsInPeriod   bool      `json:"isInPeriod"`
}

// State is the helper's phase between events.
type State int

const (
	StateAwake State = iota
	StateAsleepRecovering
	StateAsleepDraining
	StateAsleepSnacking
)

var stateNames = [...]string{"awake", "asleep-recovering", "asleep-draining", "asleep-snacking"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Asleep reports whether the state is one of the sleeping phases.
func (s State) Asleep() bool { return s != StateAwake }

// transitions lists the legal state changes. Missing entries keep the state.
// A helper that falls asleep (or drains) to zero energy has nothing left to
// drain and waits for the wake recovery, see next.
var transitions = map[State]map[EventKind]State{
	StateAwake: {
		EventSleep: StateAsleepDraining,
	},
	StateAsleepDraining: {
		EventEmpty: StateAsleepRecovering,
		EventSnack: StateAsleepSnacking,
		EventWake:  StateAwake,
	},
	StateAsleepRecovering: {
		EventSnack: StateAsleepSnacking,
		EventWake:  StateAwake,
	},
	StateAsleepSnacking: {
		EventWake: StateAwake,
	},
}

// collected is the state after the player empties a full inventory while
// the helper sleeps.
func collected(s State, energy float64) State {
	if s != StateAsleepSnacking {
		return s
	}
	if energy <= 0 {
		return StateAsleepRecovering
	}
	return StateAsleepDraining
}

func next(s State, kind EventKind, energyAfter float64) State {
	to, ok := transitions[s][kind]
	if !ok {
		to = s
	}
	if to == StateAsleepDraining && energyAfter <= 0 {
		to = StateAsleepRecovering
	}
	return to
}
