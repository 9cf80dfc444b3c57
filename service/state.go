package service

// State is the worker pool state.
type State uint8

const (
	// StateStarting waits for every worker to report ready. Requests queue.
	StateStarting State = iota
	// StateFree has no active job.
	StateFree
	// StateBusy has exactly one active job.
	StateBusy
	// StateClosed is reported once the service has shut down.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateFree:
		return "free"
	case StateBusy:
		return "busy"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SlotStats describes one worker slot.
type SlotStats struct {
	InputCap  int // bytes
	OutputCap int // float32 values
	Ready     bool
}

// Stats is a snapshot of the pool and queue.
type Stats struct {
	State       State
	QueueLength int
	Slots       []SlotStats
}
