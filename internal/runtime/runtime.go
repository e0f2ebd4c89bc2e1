// Package runtime abstracts the container engine behind a small capability
// interface so the orchestrator can be tested without a daemon.
package runtime

import "context"

// ContainerSpec describes the container to create for one model instance.
type ContainerSpec struct {
	ModelID       string
	Image         string
	Port          int
	Env           map[string]string
	RestartPolicy string
	Labels        map[string]string
}

// Status is the subset of inspect output the orchestrator cares about.
type Status struct {
	// State is the engine-reported lifecycle state, e.g. "created", "running",
	// "exited", "dead", "removing".
	State string
	// ExitCode is meaningful when State is "exited".
	ExitCode int
	// Err carries the engine's error string for the container, if any.
	Err string
}

// Handle identifies a started container and how to reach it.
type Handle struct {
	// ID is the engine's container id.
	ID string
	// HostPort is the host-side TCP port bound to the container's service
	// port, 0 when no binding was established.
	HostPort int
}

// Client is the capability set the orchestrator consumes from the container
// engine. All calls honor the passed context's deadline.
type Client interface {
	// Ping verifies the engine is reachable.
	Ping(ctx context.Context) error
	// ImageExists reports whether image is available locally.
	ImageExists(ctx context.Context, image string) (bool, error)
	// PullImage fetches image from its registry.
	PullImage(ctx context.Context, image string) error
	// CreateAndStart creates a container from spec and starts it.
	CreateAndStart(ctx context.Context, spec ContainerSpec) (Handle, error)
	// Inspect reports the current state of a container.
	Inspect(ctx context.Context, id string) (Status, error)
	// StopAndRemove stops and deletes a container. Removing a container that
	// is already gone is not an error.
	StopAndRemove(ctx context.Context, id string) error
	// Close releases resources held by the client.
	Close() error
}
