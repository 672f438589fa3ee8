package optimistic

import "fmt"

// State is the phase of a single optimistic mutation
type State int

const (
	Idle State = iota
	Predicting
	RemotePending
	Confirmed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Predicting:
		return "predicting"
	case RemotePending:
		return "remote_pending"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event drives a mutation from one state to the next
type Event int

const (
	EventStart Event = iota
	EventPredicted
	EventSucceeded
	EventFailed
	EventSettled
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventPredicted:
		return "predicted"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	case EventSettled:
		return "settled"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Next returns the state reached from s on event e
func Next(s State, e Event) (State, error) {
	switch {
	case s == Idle && e == EventStart:
		return Predicting, nil
	case s == Predicting && e == EventPredicted:
		return RemotePending, nil
	case s == RemotePending && e == EventSucceeded:
		return Confirmed, nil
	case s == RemotePending && e == EventFailed:
		return RolledBack, nil
	case (s == Confirmed || s == RolledBack) && e == EventSettled:
		return Idle, nil
	}
	return s, fmt.Errorf("invalid mutation transition: %s on %s", s, e)
}
