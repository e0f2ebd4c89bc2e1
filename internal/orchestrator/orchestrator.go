package orchestrator

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/surajmandalcell/asrpro-sub001/internal/catalog"
	"github.com/surajmandalcell/asrpro-sub001/internal/runtime"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultCapacityUnits     = 8192
	defaultStartupTimeout    = 60 * time.Second
	defaultProbeInterval     = 1 * time.Second
	defaultInactivityTimeout = 300 * time.Second
)

// Config encapsulates all tunables for Orchestrator construction.
type Config struct {
	Catalog *catalog.Catalog
	Runtime runtime.Client
	// CapacityUnits bounds the sum of all instance resource costs.
	CapacityUnits     int
	StartupTimeout    time.Duration
	ProbeInterval     time.Duration
	InactivityTimeout time.Duration
	Publisher         EventPublisher
	Logger            zerolog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Orchestrator owns the active-instance table and drives the start/stop state
// machine against the runtime client and the allocator.
type Orchestrator struct {
	catalog *catalog.Catalog
	rt      runtime.Client
	alloc   *Allocator
	pub     EventPublisher
	log     zerolog.Logger
	now     func() time.Time

	startupTimeout    time.Duration
	probeInterval     time.Duration
	inactivityTimeout time.Duration

	// mu guards instances, locks, and the counters below.
	mu        sync.RWMutex
	instances map[string]*Instance
	locks     map[string]*sync.Mutex

	startsTotal uint64
	stopsTotal  uint64
	reapedTotal uint64

	// flight deduplicates concurrent start attempts per model id.
	flight singleflight.Group

	startTime time.Time
}

// New constructs an Orchestrator from Config and publishes the initialized
// event.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		catalog:           cfg.Catalog,
		rt:                cfg.Runtime,
		pub:               cfg.Publisher,
		log:               cfg.Logger,
		now:               cfg.Now,
		startupTimeout:    cfg.StartupTimeout,
		probeInterval:     cfg.ProbeInterval,
		inactivityTimeout: cfg.InactivityTimeout,
		instances:         make(map[string]*Instance),
		locks:             make(map[string]*sync.Mutex),
	}
	if o.catalog == nil {
		o.catalog = catalog.Default()
	}
	if o.pub == nil {
		o.pub = noopPublisher{}
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.startupTimeout <= 0 {
		o.startupTimeout = defaultStartupTimeout
	}
	if o.probeInterval <= 0 {
		o.probeInterval = defaultProbeInterval
	}
	if o.inactivityTimeout <= 0 {
		o.inactivityTimeout = defaultInactivityTimeout
	}
	capacity := cfg.CapacityUnits
	if capacity <= 0 {
		capacity = defaultCapacityUnits
	}
	o.alloc = NewAllocator(capacity, o.now)
	o.startTime = o.now()
	o.pub.Publish(Event{Name: EventInitialized, Fields: map[string]any{
		"capacity_units": capacity,
		"models":         o.catalog.Len(),
	}})
	return o
}

// Allocator exposes the capacity pool for read-mostly collaborators.
func (o *Orchestrator) Allocator() *Allocator { return o.alloc }

// GetInstance returns a copy of the active instance for modelID, if any. It
// never triggers a start.
func (o *Orchestrator) GetInstance(modelID string) (Instance, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	inst, ok := o.instances[modelID]
	if !ok {
		return Instance{}, false
	}
	return *inst, true
}

// Instances returns copies of all active instances, ordered by model id.
func (o *Orchestrator) Instances() []Instance {
	o.mu.RLock()
	out := make([]Instance, 0, len(o.instances))
	for _, inst := range o.instances {
		out = append(out, *inst)
	}
	o.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out
}

// Touch records activity on the instance and its allocation. Unknown models
// and instances already being torn down are silent no-ops, so a late touch
// can never resurrect a stopped instance.
func (o *Orchestrator) Touch(modelID string) {
	now := o.now()
	o.mu.Lock()
	inst, ok := o.instances[modelID]
	if ok && (inst.State == StateStarting || inst.State == StateRunning) && now.After(inst.LastActivity) {
		inst.LastActivity = now
	} else {
		ok = false
	}
	o.mu.Unlock()
	if ok {
		o.alloc.Touch(modelID, now)
	}
}

// modelLock returns the critical-section mutex for one model id, creating it
// on first use. Locks are never removed; the catalog bounds their number.
func (o *Orchestrator) modelLock(modelID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[modelID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[modelID] = l
	}
	return l
}

func (o *Orchestrator) publish(name, modelID string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	o.pub.Publish(Event{Name: name, ModelID: modelID, Fields: fields})
}
