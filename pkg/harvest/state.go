package harvest

// State is the lifecycle position of a Harvester
type State int

const (
	StateIdle State = iota
	StateAuthenticated
	StateResolved
	StateInitialized
	StateHarvesting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthenticated:
		return "authenticated"
	case StateResolved:
		return "resolved"
	case StateInitialized:
		return "initialized"
	case StateHarvesting:
		return "harvesting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
