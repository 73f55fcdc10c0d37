package fetch

// EventKind is a step in a query's lifecycle
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
	// EventClosed is sent once when the query is closed
	EventClosed EventKind = "closed"
)

// Event describes one lifecycle step
type Event struct {
	Kind EventKind
	Key  string
	// HadData reports whether the query held data when the fetch started
	HadData bool
	// Err is set for EventFailed
	Err error
}

// Listener receives lifecycle events. Events of one query are delivered
// sequentially per fetch but fetches may overlap, so implementations must be
// safe for concurrent use.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) {
	f(e)
}
