package orchestrator

import "time"

// State is the lifecycle state of a managed instance. Absence from the active
// set is the resting "stopped" state; a stopped instance has no record.
type State string

const (
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateError    State = "error"
)

// Instance is the orchestrator's record of one container backing a model.
// Records are owned by the Orchestrator; public methods hand out value copies.
type Instance struct {
	ModelID     string
	ContainerID string
	// HostPort is the host-side port bound to the container's service port.
	HostPort     int
	State        State
	CreatedAt    time.Time
	StartedAt    time.Time // zero until the instance became ready
	LastActivity time.Time
	ResourceCost int
	ErrorCount   int
	HealthChecks int
}

// Uptime reports how long the instance has been ready as of now.
func (i Instance) Uptime(now time.Time) time.Duration {
	if i.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(i.StartedAt)
}
