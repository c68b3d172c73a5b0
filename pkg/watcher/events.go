package watcher

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventBalancesUpdated     EventType = "balances_updated"
	EventRefreshFailed       EventType = "refresh_failed"
	EventTransactionsUpdated EventType = "transactions_updated"
	EventStateChanged        EventType = "state_changed"
)

// Event represents a monitoring event.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
