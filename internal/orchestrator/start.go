package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/surajmandalcell/asrpro-sub001/internal/runtime"
	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

// imagePullGrace extends the start budget to cover a cold image pull, which
// can dwarf the container's own startup time.
const imagePullGrace = 2 * time.Minute

// Start returns a running instance for modelID, starting one if needed.
//
// Start is idempotent for a running model and single-flighted per model id:
// concurrent callers for the same model observe exactly one runtime
// create/start and one reservation, and all receive the same result. A caller
// abandoning its context stops waiting but does not cancel the shared attempt;
// other joined callers still receive the outcome.
func (o *Orchestrator) Start(ctx context.Context, modelID string) (Instance, error) {
	if inst, ok := o.getIfRunning(modelID); ok {
		return inst, nil
	}
	ch := o.flight.DoChan(modelID, func() (any, error) {
		return o.startOne(modelID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Instance{}, res.Err
		}
		return res.Val.(Instance), nil
	case <-ctx.Done():
		return Instance{}, ctx.Err()
	}
}

func (o *Orchestrator) getIfRunning(modelID string) (Instance, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if inst, ok := o.instances[modelID]; ok && inst.State == StateRunning {
		return *inst, true
	}
	return Instance{}, false
}

// startOne drives the full start state machine for one model under its
// per-model critical section. The operation runs on its own budget, detached
// from any single caller's context.
func (o *Orchestrator) startOne(modelID string) (Instance, error) {
	lock := o.modelLock(modelID)
	lock.Lock()
	defer lock.Unlock()

	// Re-check under the lock: a concurrent attempt may have finished between
	// the caller's fast path and here.
	o.mu.RLock()
	existing, exists := o.instances[modelID]
	var existingState State
	if exists {
		existingState = existing.State
	}
	o.mu.RUnlock()
	if exists {
		if existingState == StateRunning {
			inst, _ := o.GetInstance(modelID)
			return inst, nil
		}
		// A failed stop leaves the instance in the error state holding its
		// allocation. It must be stopped explicitly before a fresh start.
		err := ErrRuntimeStartFailed(modelID, errors.New("previous instance in error state; stop it first"))
		o.publish(EventStartFailed, modelID, map[string]any{"error": err.Error()})
		return Instance{}, err
	}

	entry, ok := o.catalog.Lookup(modelID)
	if !ok {
		err := ErrModelNotFound(modelID)
		o.publish(EventStartFailed, modelID, map[string]any{"error": err.Error()})
		return Instance{}, err
	}

	o.log.Info().Str("model", modelID).Str("image", entry.Image).Msg("starting instance")
	o.publish(EventStartBegin, modelID, map[string]any{"image": entry.Image})
	began := o.now()

	if entry.ResourceCost > 0 {
		if err := o.alloc.Reserve(modelID, entry.ResourceCost); err != nil {
			o.log.Warn().Str("model", modelID).Err(err).Msg("reservation rejected")
			o.publish(EventStartFailed, modelID, map[string]any{"error": err.Error()})
			return Instance{}, err
		}
	}

	opCtx, cancel := context.WithTimeout(context.Background(), o.startupTimeout+imagePullGrace)
	defer cancel()

	if err := o.ensureImage(opCtx, entry.Image); err != nil {
		o.alloc.Release(modelID)
		o.publish(EventStartFailed, modelID, map[string]any{"error": err.Error()})
		return Instance{}, err
	}

	handle, err := o.rt.CreateAndStart(opCtx, runtime.ContainerSpec{
		ModelID:       modelID,
		Image:         entry.Image,
		Port:          entry.Port,
		Env:           entry.Env,
		RestartPolicy: entry.RestartPolicy,
		Labels: map[string]string{
			"asrpro.model":      modelID,
			"asrpro.managed-by": "asrprod",
		},
	})
	if err != nil {
		o.alloc.Release(modelID)
		wrapped := ErrRuntimeStartFailed(modelID, err)
		o.log.Error().Str("model", modelID).Err(err).Msg("runtime create/start failed")
		o.publish(EventStartFailed, modelID, map[string]any{"error": wrapped.Error()})
		return Instance{}, wrapped
	}

	now := o.now()
	o.mu.Lock()
	o.instances[modelID] = &Instance{
		ModelID:      modelID,
		ContainerID:  handle.ID,
		HostPort:     handle.HostPort,
		State:        StateStarting,
		CreatedAt:    now,
		LastActivity: now,
		ResourceCost: entry.ResourceCost,
	}
	o.mu.Unlock()

	probeCtx, cancelProbe := context.WithTimeout(context.Background(), o.startupTimeout)
	defer cancelProbe()
	if err := o.waitUntilReady(probeCtx, modelID, handle.ID); err != nil {
		wrapped := readinessTimeoutError{id: modelID, cause: err}
		o.teardownFailedStart(modelID, handle.ID)
		o.publish(EventStartFailed, modelID, map[string]any{"error": wrapped.Error()})
		return Instance{}, wrapped
	}

	ready := o.now()
	o.mu.Lock()
	inst := o.instances[modelID]
	inst.State = StateRunning
	inst.StartedAt = ready
	if ready.After(inst.LastActivity) {
		inst.LastActivity = ready
	}
	o.startsTotal++
	out := *inst
	o.mu.Unlock()

	o.log.Info().Str("model", modelID).Str("container", shortID(handle.ID)).
		Dur("dur", ready.Sub(began)).Msg("instance ready")
	o.publish(EventInstanceStarted, modelID, map[string]any{
		"container": shortID(handle.ID),
		"dur_ms":    int(ready.Sub(began) / time.Millisecond),
	})
	return out, nil
}

// ensureImage makes the image available locally, pulling it if absent. A
// failed existence check falls through to the pull rather than failing the
// start outright.
func (o *Orchestrator) ensureImage(ctx context.Context, image string) error {
	exists, err := o.rt.ImageExists(ctx, image)
	if err == nil && exists {
		return nil
	}
	o.log.Info().Str("image", image).Msg("pulling image")
	if err := o.rt.PullImage(ctx, image); err != nil {
		o.log.Error().Str("image", image).Err(err).Msg("image pull failed")
		return imageUnavailableError{image: image, cause: err}
	}
	return nil
}

// teardownFailedStart rolls back a partially started instance: best-effort
// stop/remove, then release of the reservation. When the runtime refuses the
// teardown the instance stays visible in the error state with its allocation
// intact so operators can see it; there is never a dangling allocation with
// no instance recorded.
func (o *Orchestrator) teardownFailedStart(modelID, containerID string) {
	o.mu.Lock()
	if inst, ok := o.instances[modelID]; ok {
		inst.State = StateStopping
		inst.ErrorCount++
	}
	o.mu.Unlock()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := o.rt.StopAndRemove(stopCtx, containerID); err != nil {
		o.log.Error().Str("model", modelID).Err(err).Msg("teardown after failed start did not complete")
		o.mu.Lock()
		if inst, ok := o.instances[modelID]; ok {
			inst.State = StateError
		}
		o.mu.Unlock()
		o.publish(EventStopFailed, modelID, map[string]any{"error": err.Error()})
		return
	}
	o.mu.Lock()
	delete(o.instances, modelID)
	o.mu.Unlock()
	o.alloc.Release(modelID)
}

// Entry re-exports the catalog entry for a model so HTTP collaborators can
// join catalog and live state without a second catalog dependency.
func (o *Orchestrator) Entry(modelID string) (types.ModelEntry, bool) {
	return o.catalog.Lookup(modelID)
}

// Catalog lists the full catalog in stable order.
func (o *Orchestrator) Catalog() []types.ModelEntry {
	return o.catalog.List()
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
