package mockserver

// State is the lifecycle state of a Controller.
//
//	Unstarted -> Starting -> Healthy -> Stopped
//	                      -> FailedToStart -> Starting (retry) | Stopped
type State int

const (
	StateUnstarted State = iota
	StateStarting
	StateHealthy
	StateFailedToStart
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateStarting:
		return "starting"
	case StateHealthy:
		return "healthy"
	case StateFailedToStart:
		return "failed-to-start"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
