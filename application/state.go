package application

// State is the lifecycle position of an Application. Transitions only move
// forward: Created, Booted, Started, Stopped.
type State int

const (
	StateCreated State = iota
	StateBooted
	StateStarted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateBooted:
		return "booted"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
