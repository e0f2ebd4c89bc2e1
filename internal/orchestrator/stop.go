package orchestrator

import (
	"context"
	"time"
)

// stopGrace bounds a stop/remove when the caller's context carries no
// deadline of its own.
const stopGrace = 30 * time.Second

// Stop tears down the active instance for modelID. It reports false when no
// active instance exists, without touching the allocator or the runtime.
//
// When the runtime's stop/remove fails the instance is kept in the error
// state, still holding its allocation, rather than silently disappearing; it
// must be stopped again explicitly or reaped. There is no automatic retry.
func (o *Orchestrator) Stop(ctx context.Context, modelID string) (bool, error) {
	lock := o.modelLock(modelID)
	lock.Lock()
	defer lock.Unlock()

	o.mu.Lock()
	inst, ok := o.instances[modelID]
	if !ok {
		o.mu.Unlock()
		return false, nil
	}
	inst.State = StateStopping
	containerID := inst.ContainerID
	o.mu.Unlock()

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, stopGrace)
		defer cancel()
	}

	if err := o.rt.StopAndRemove(ctx, containerID); err != nil {
		o.mu.Lock()
		inst.State = StateError
		inst.ErrorCount++
		o.mu.Unlock()
		wrapped := stopFailedError{id: modelID, cause: err}
		o.log.Error().Str("model", modelID).Err(err).Msg("stop failed; instance kept in error state")
		o.publish(EventStopFailed, modelID, map[string]any{"error": wrapped.Error()})
		return false, wrapped
	}

	o.mu.Lock()
	delete(o.instances, modelID)
	o.stopsTotal++
	o.mu.Unlock()
	o.alloc.Release(modelID)

	o.log.Info().Str("model", modelID).Str("container", shortID(containerID)).Msg("instance stopped")
	o.publish(EventInstanceStopped, modelID, map[string]any{"container": shortID(containerID)})
	return true, nil
}

// StopAll stops every active instance, continuing past failures. Used on
// daemon shutdown.
func (o *Orchestrator) StopAll(ctx context.Context) {
	for _, inst := range o.Instances() {
		if _, err := o.Stop(ctx, inst.ModelID); err != nil {
			o.log.Warn().Str("model", inst.ModelID).Err(err).Msg("shutdown stop failed")
		}
	}
}
