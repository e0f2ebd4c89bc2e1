package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/surajmandalcell/asrpro-sub001/internal/catalog"
	"github.com/surajmandalcell/asrpro-sub001/internal/runtime"
	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

type inspectResult struct {
	st  runtime.Status
	err error
}

// fakeRuntime is an in-memory runtime.Client. Inspect sequences are scripted
// per model id; when a script runs out its last entry repeats, and an
// unscripted model reports "running" immediately.
type fakeRuntime struct {
	mu sync.Mutex

	pingErr        error
	imageExistsErr error
	pullErr        error
	localImages    map[string]bool
	pulls          []string

	createErrs  map[string]error // keyed by model id
	createDelay time.Duration
	createCalls int
	nextID      int
	containers  map[string]string // container id -> model id

	inspectSeq   map[string][]inspectResult // keyed by model id
	inspectCalls map[string]int

	stopErr   error
	stopCalls int
	stopped   []string
}

var _ runtime.Client = (*fakeRuntime)(nil)

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		localImages:  make(map[string]bool),
		createErrs:   make(map[string]error),
		containers:   make(map[string]string),
		inspectSeq:   make(map[string][]inspectResult),
		inspectCalls: make(map[string]int),
	}
}

func (f *fakeRuntime) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeRuntime) ImageExists(_ context.Context, image string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.imageExistsErr != nil {
		return false, f.imageExistsErr
	}
	return f.localImages[image], nil
}

func (f *fakeRuntime) PullImage(_ context.Context, image string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pullErr != nil {
		return f.pullErr
	}
	f.localImages[image] = true
	f.pulls = append(f.pulls, image)
	return nil
}

func (f *fakeRuntime) CreateAndStart(_ context.Context, spec runtime.ContainerSpec) (runtime.Handle, error) {
	f.mu.Lock()
	delay := f.createDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if err := f.createErrs[spec.ModelID]; err != nil {
		return runtime.Handle{}, err
	}
	f.nextID++
	id := fmt.Sprintf("ctr-%d", f.nextID)
	f.containers[id] = spec.ModelID
	return runtime.Handle{ID: id, HostPort: 40000 + f.nextID}, nil
}

func (f *fakeRuntime) Inspect(_ context.Context, id string) (runtime.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	model := f.containers[id]
	idx := f.inspectCalls[model]
	f.inspectCalls[model]++
	seq := f.inspectSeq[model]
	if len(seq) == 0 {
		return runtime.Status{State: "running"}, nil
	}
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	return seq[idx].st, seq[idx].err
}

func (f *fakeRuntime) StopAndRemove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	if f.stopErr != nil {
		return f.stopErr
	}
	f.stopped = append(f.stopped, id)
	delete(f.containers, id)
	return nil
}

func (f *fakeRuntime) Close() error { return nil }

func (f *fakeRuntime) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

func (f *fakeRuntime) StopCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

func (f *fakeRuntime) Pulls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.pulls))
	copy(out, f.pulls)
	return out
}

func (f *fakeRuntime) setStopErr(err error) {
	f.mu.Lock()
	f.stopErr = err
	f.mu.Unlock()
}

func (f *fakeRuntime) script(modelID string, seq ...inspectResult) {
	f.mu.Lock()
	f.inspectSeq[modelID] = seq
	f.mu.Unlock()
}

func testEntries() []types.ModelEntry {
	return []types.ModelEntry{
		{ID: "whisper-tiny", Image: "asrpro/whisper-tiny:latest", Port: 9000, ResourceCost: 1024},
		{ID: "whisper-base", Image: "asrpro/whisper-base:latest", Port: 9000, ResourceCost: 2048},
		{ID: "whisper-base2", Image: "asrpro/whisper-base2:latest", Port: 9000, ResourceCost: 2048},
		{ID: "whisper-small", Image: "asrpro/whisper-small:latest", Port: 9000, ResourceCost: 4096},
		{ID: "broken", Image: "asrpro/broken:latest", Port: 9000, ResourceCost: 512},
		{ID: "free", Image: "asrpro/free:latest", Port: 9000, ResourceCost: 0},
	}
}

func newTestOrchestrator(t *testing.T, rt runtime.Client, capacity int) (*Orchestrator, *MemoryPublisher) {
	t.Helper()
	cat, err := catalog.New(testEntries())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	pub := NewMemoryPublisher()
	o := New(Config{
		Catalog:           cat,
		Runtime:           rt,
		CapacityUnits:     capacity,
		StartupTimeout:    250 * time.Millisecond,
		ProbeInterval:     time.Millisecond,
		InactivityTimeout: 300 * time.Second,
		Publisher:         pub,
		Logger:            zerolog.Nop(),
	})
	return o, pub
}

// rewindActivity moves an instance's last-activity timestamp into the past.
func rewindActivity(t *testing.T, o *Orchestrator, modelID string, by time.Duration) {
	t.Helper()
	o.mu.Lock()
	inst, ok := o.instances[modelID]
	if ok {
		inst.LastActivity = inst.LastActivity.Add(-by)
	}
	o.mu.Unlock()
	if !ok {
		t.Fatalf("no instance for %s", modelID)
	}
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}
