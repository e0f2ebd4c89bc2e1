package runtime

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
)

// DockerClient implements Client against the Docker Engine API.
type DockerClient struct {
	inner *client.Client
}

var _ Client = (*DockerClient)(nil)

// NewDocker creates a Docker-backed runtime client using environment defaults.
// host overrides DOCKER_HOST when non-empty.
func NewDocker(host string) (*DockerClient, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	inner, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &DockerClient{inner: inner}, nil
}

// Ping validates connectivity to the Docker daemon.
func (c *DockerClient) Ping(ctx context.Context) error {
	if c == nil || c.inner == nil {
		return fmt.Errorf("docker client not initialized")
	}
	ping, err := c.inner.Ping(ctx)
	if err != nil {
		return fmt.Errorf("docker ping: %w", err)
	}
	if ping.APIVersion == "" {
		return fmt.Errorf("docker ping returned empty API version")
	}
	return nil
}

// ImageExists reports whether the image is present locally.
func (c *DockerClient) ImageExists(ctx context.Context, ref string) (bool, error) {
	_, _, err := c.inner.ImageInspectWithRaw(ctx, ref)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("image inspect: %w", err)
	}
	return true, nil
}

// PullImage fetches the image and drains the progress stream.
func (c *DockerClient) PullImage(ctx context.Context, ref string) error {
	rc, err := c.inner.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("image pull %s: %w", ref, err)
	}
	defer rc.Close()
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("image pull %s: read stream: %w", ref, err)
	}
	return nil
}

// CreateAndStart creates a container from spec, starts it, and resolves the
// ephemeral host port bound to the service port.
func (c *DockerClient) CreateAndStart(ctx context.Context, spec ContainerSpec) (Handle, error) {
	if strings.TrimSpace(spec.Image) == "" {
		return Handle{}, fmt.Errorf("image name cannot be empty")
	}
	name := containerName(spec.ModelID)

	cfg := &container.Config{
		Image:  spec.Image,
		Env:    renderEnv(spec.Env),
		Labels: spec.Labels,
	}
	hostCfg := &container.HostConfig{
		RestartPolicy: restartPolicy(spec.RestartPolicy),
	}
	if spec.Port > 0 {
		port, err := nat.NewPort("tcp", strconv.Itoa(spec.Port))
		if err != nil {
			return Handle{}, fmt.Errorf("service port %d: %w", spec.Port, err)
		}
		cfg.ExposedPorts = nat.PortSet{port: struct{}{}}
		// Empty HostPort lets the engine pick a free ephemeral port.
		hostCfg.PortBindings = nat.PortMap{port: {{HostIP: "127.0.0.1"}}}
	}

	created, err := c.inner.ContainerCreate(ctx, cfg, hostCfg, nil, nil, name)
	if err != nil {
		return Handle{}, fmt.Errorf("container create: %w", err)
	}
	if err := c.inner.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		// Leave no half-created container behind.
		_ = c.StopAndRemove(ctx, created.ID)
		return Handle{}, fmt.Errorf("container start: %w", err)
	}

	h := Handle{ID: created.ID}
	if spec.Port > 0 {
		inspect, err := c.inner.ContainerInspect(ctx, created.ID)
		if err == nil {
			h.HostPort = hostPortFor(inspect.NetworkSettings.Ports, spec.Port)
		}
	}
	return h, nil
}

// Inspect reports the engine state of a container.
func (c *DockerClient) Inspect(ctx context.Context, id string) (Status, error) {
	inspect, err := c.inner.ContainerInspect(ctx, id)
	if err != nil {
		return Status{}, fmt.Errorf("container inspect: %w", err)
	}
	st := Status{}
	if inspect.State != nil {
		st.State = inspect.State.Status
		st.ExitCode = inspect.State.ExitCode
		st.Err = inspect.State.Error
	}
	return st, nil
}

// StopAndRemove stops and deletes a container; a missing container is a no-op.
func (c *DockerClient) StopAndRemove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("container id cannot be empty")
	}
	stopTimeout := 10 // seconds
	if err := c.inner.ContainerStop(ctx, id, container.StopOptions{Timeout: &stopTimeout}); err != nil {
		if !client.IsErrNotFound(err) {
			return fmt.Errorf("container stop: %w", err)
		}
	}
	if err := c.inner.ContainerRemove(ctx, id, container.RemoveOptions{Force: true, RemoveVolumes: true}); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("container remove: %w", err)
	}
	return nil
}

// Close releases the underlying docker client.
func (c *DockerClient) Close() error {
	if c.inner == nil {
		return nil
	}
	return c.inner.Close()
}

// containerName builds a unique, recognizable container name for a model.
func containerName(modelID string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, modelID)
	return "asrpro-" + base + "-" + uuid.NewString()[:8]
}

// renderEnv flattens an env map into docker's KEY=VALUE form, stable order not
// required by the engine.
func renderEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}

// restartPolicy maps the catalog's policy string onto the engine's type.
// Unknown or empty values disable restarts: the orchestrator owns restarts.
func restartPolicy(name string) container.RestartPolicy {
	switch name {
	case "on-failure":
		return container.RestartPolicy{Name: container.RestartPolicyOnFailure}
	case "unless-stopped":
		return container.RestartPolicy{Name: container.RestartPolicyUnlessStopped}
	default:
		return container.RestartPolicy{Name: container.RestartPolicyDisabled}
	}
}

// hostPortFor extracts the first host port bound to the container's service
// port, 0 when nothing is bound yet.
func hostPortFor(ports nat.PortMap, servicePort int) int {
	for p, bindings := range ports {
		if p.Int() != servicePort {
			continue
		}
		for _, b := range bindings {
			if strings.TrimSpace(b.HostPort) == "" {
				continue
			}
			if n, err := strconv.Atoi(b.HostPort); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}
