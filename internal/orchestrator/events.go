package orchestrator

// Event names published over the lifecycle of the orchestrator.
const (
	EventInitialized     = "initialized"
	EventStartBegin      = "start_begin"
	EventInstanceStarted = "instance_started"
	EventStartFailed     = "start_failed"
	EventInstanceStopped = "instance_stopped"
	EventStopFailed      = "stop_failed"
	EventInstanceReaped  = "instance_reaped"
)

// Event represents an orchestrator lifecycle event.
// Minimal and stable: name + model id and optional fields via key/values.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// EventPublisher receives events from the orchestrator. Implementations should
// be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
