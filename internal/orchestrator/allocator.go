package orchestrator

import (
	"sort"
	"sync"
	"time"

	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

// Allocation is a reservation of abstract memory units tied to an instance's
// lifetime. One allocation exists iff an instance with non-zero cost exists.
type Allocation struct {
	ModelID      string
	Units        int
	AllocatedAt  time.Time
	LastActivity time.Time
}

// Allocator tracks a capacity-bounded pool of memory units. The pool is the
// one mutable resource shared across unrelated models, so it carries its own
// lock independent of the per-model serialization above it.
type Allocator struct {
	mu       sync.Mutex
	capacity int
	allocs   map[string]Allocation
	now      func() time.Time
}

// NewAllocator builds an allocator for the given capacity. A zero or negative
// capacity means nothing can be reserved.
func NewAllocator(capacity int, now func() time.Time) *Allocator {
	if now == nil {
		now = time.Now
	}
	return &Allocator{
		capacity: capacity,
		allocs:   make(map[string]Allocation),
		now:      now,
	}
}

// Reserve atomically checks the pool and records an allocation for modelID.
// The capacity check runs against a consistent snapshot of all allocations.
// Reserving for a model that already holds an allocation is a no-op.
func (a *Allocator) Reserve(modelID string, units int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.allocs[modelID]; ok {
		return nil
	}
	used := a.allocatedLocked()
	if used+units > a.capacity {
		return capacityExceededError{id: modelID, requested: units, available: a.capacity - used}
	}
	now := a.now()
	a.allocs[modelID] = Allocation{ModelID: modelID, Units: units, AllocatedAt: now, LastActivity: now}
	return nil
}

// Release removes the allocation for modelID. Releasing an absent allocation
// is a no-op, not an error.
func (a *Allocator) Release(modelID string) {
	a.mu.Lock()
	delete(a.allocs, modelID)
	a.mu.Unlock()
}

// Touch moves the allocation's last-activity timestamp forward. Timestamps
// never move backward.
func (a *Allocator) Touch(modelID string, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	al, ok := a.allocs[modelID]
	if !ok || at.Before(al.LastActivity) {
		return
	}
	al.LastActivity = at
	a.allocs[modelID] = al
}

// Allocated reports the current sum of reserved units.
func (a *Allocator) Allocated() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocatedLocked()
}

// Capacity reports the configured pool size.
func (a *Allocator) Capacity() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capacity
}

// SetCapacity swaps the configured pool size. Existing allocations are kept
// even if they exceed the new capacity; they drain as instances stop.
func (a *Allocator) SetCapacity(capacity int) {
	a.mu.Lock()
	a.capacity = capacity
	a.mu.Unlock()
}

// Utilization reports a consistent snapshot of the pool with a stable
// per-model breakdown.
func (a *Allocator) Utilization() types.UtilizationStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	used := a.allocatedLocked()
	out := types.UtilizationStatus{
		Capacity:  a.capacity,
		Allocated: used,
		Available: a.capacity - used,
		PerModel:  make([]types.AllocationStatus, 0, len(a.allocs)),
	}
	for _, al := range a.allocs {
		out.PerModel = append(out.PerModel, types.AllocationStatus{
			ModelID:     al.ModelID,
			Units:       al.Units,
			AllocatedAt: al.AllocatedAt.Unix(),
		})
	}
	sort.Slice(out.PerModel, func(i, j int) bool { return out.PerModel[i].ModelID < out.PerModel[j].ModelID })
	return out
}

func (a *Allocator) allocatedLocked() int {
	sum := 0
	for _, al := range a.allocs {
		sum += al.Units
	}
	return sum
}
