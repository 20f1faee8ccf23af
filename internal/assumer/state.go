package assumer

// State is a stage of a run.
type State int

const (
	StateInitializing State = iota
	StateBound
	StateRunning
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateBound:
		return "bound"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Reason says which side of the run finished first.
type Reason int

const (
	// ReasonChildExited is the normal end of a run.
	ReasonChildExited Reason = iota + 1
	// ReasonServerFailed means the credential server stopped accepting
	// connections while the child was still running.
	ReasonServerFailed
)

func (r Reason) String() string {
	switch r {
	case ReasonChildExited:
		return "child_exited"
	case ReasonServerFailed:
		return "server_failed"
	default:
		return "unknown"
	}
}
