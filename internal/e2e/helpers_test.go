package e2e

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/surajmandalcell/asrpro-sub001/internal/catalog"
	"github.com/surajmandalcell/asrpro-sub001/internal/httpapi"
	"github.com/surajmandalcell/asrpro-sub001/internal/orchestrator"
	"github.com/surajmandalcell/asrpro-sub001/internal/runtime"
	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

// stubRuntime is an in-memory runtime.Client. Containers report running on
// the first inspect, so the readiness probe settles immediately.
type stubRuntime struct {
	mu       sync.Mutex
	seq      int
	running  map[string]bool
	images   map[string]bool
	hostPort int
}

func newStubRuntime() *stubRuntime {
	return &stubRuntime{
		running: map[string]bool{},
		images:  map[string]bool{},
	}
}

func (s *stubRuntime) Ping(ctx context.Context) error { return nil }

func (s *stubRuntime) ImageExists(ctx context.Context, image string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images[image], nil
}

func (s *stubRuntime) PullImage(ctx context.Context, image string) error {
	s.mu.Lock()
	s.images[image] = true
	s.mu.Unlock()
	return nil
}

func (s *stubRuntime) CreateAndStart(ctx context.Context, spec runtime.ContainerSpec) (runtime.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("e2e-container-%d", s.seq)
	s.running[id] = true
	return runtime.Handle{ID: id, HostPort: s.hostPort}, nil
}

func (s *stubRuntime) Inspect(ctx context.Context, containerID string) (runtime.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running[containerID] {
		return runtime.Status{State: "exited", ExitCode: 0}, nil
	}
	return runtime.Status{State: "running"}, nil
}

func (s *stubRuntime) StopAndRemove(ctx context.Context, containerID string) error {
	s.mu.Lock()
	delete(s.running, containerID)
	s.mu.Unlock()
	return nil
}

func (s *stubRuntime) Close() error { return nil }

func entry(id string, cost int) types.ModelEntry {
	return types.ModelEntry{
		ID:           id,
		Image:        "asrpro/" + id + ":latest",
		Port:         9000,
		ResourceCost: cost,
	}
}

type stack struct {
	rt   *stubRuntime
	orch *orchestrator.Orchestrator
	hub  *httpapi.EventHub
	srv  *httptest.Server
}

// newStack boots the full daemon surface on an in-memory runtime: catalog,
// orchestrator, event hub, and the chi mux behind an httptest server.
func newStack(t *testing.T, capacity int, entries ...types.ModelEntry) *stack {
	t.Helper()
	cat, err := catalog.New(entries)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	rt := newStubRuntime()
	hub := httpapi.NewEventHub()
	orch := orchestrator.New(orchestrator.Config{
		Catalog:           cat,
		Runtime:           rt,
		CapacityUnits:     capacity,
		StartupTimeout:    250 * time.Millisecond,
		ProbeInterval:     time.Millisecond,
		InactivityTimeout: 300 * time.Second,
		Publisher:         hub,
		Logger:            zerolog.Nop(),
	})
	srv := httptest.NewServer(httpapi.NewMux(orch, hub))
	t.Cleanup(srv.Close)
	return &stack{rt: rt, orch: orch, hub: hub, srv: srv}
}
