package weather

import "time"

// State is the orchestrator's per-action state. It is never persisted.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateStoring
	StateRefreshing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateStoring:
		return "storing"
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Action names a user-visible operation.
type Action string

const (
	ActionAddCity Action = "add_city"
	ActionClear   Action = "clear"
	ActionRefresh Action = "refresh"
	ActionAverage Action = "average"
	ActionChart   Action = "chart"
)

// Event is published to observers on every state transition of an action.
// Views is set once derived views have been recomputed. Err is set in StateFailed and on
// the StateIdle event that closes a failed action. Background events come from refreshes
// nobody asked for and never carry a Status.
type Event struct {
	ActionID string
	Action   Action
	State    State
	City     string
	Inserted int
	Deleted  int64
	Views    *Views
	Err      error
	Status   string
	At       time.Time

	Background bool
}

// Observer receives orchestrator events. Notify is called synchronously while the action
// is in progress, so implementations must not call back into the Service.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }
