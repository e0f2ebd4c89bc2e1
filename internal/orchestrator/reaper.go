package orchestrator

import (
	"context"
	"time"
)

// defaultReapInterval is the reaper period. It is independent of the
// inactivity threshold: a short threshold with a long period just means
// coarser reclamation.
const defaultReapInterval = 60 * time.Second

// RunReaper periodically stops instances idle beyond the configured
// inactivity threshold, until ctx is cancelled. Ticks never overlap: a sweep
// still in flight suppresses the next scheduled tick.
func (o *Orchestrator) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultReapInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	o.log.Info().Dur("interval", interval).Dur("inactivity_timeout", o.inactivityTimeout).Msg("reaper started")
	for {
		select {
		case <-ctx.Done():
			o.log.Info().Msg("reaper stopped")
			return
		case <-ticker.C:
			o.reapOnce(ctx)
		}
	}
}

// reapOnce sweeps the active set and stops every instance whose last activity
// is older than the inactivity threshold. Reaping goes through Stop, never
// around the state machine. It returns the number of instances reaped.
func (o *Orchestrator) reapOnce(ctx context.Context) int {
	now := o.now()
	type candidate struct {
		id   string
		idle time.Duration
	}
	var idle []candidate
	o.mu.RLock()
	for id, inst := range o.instances {
		// Instances mid-transition are left to their in-flight operation.
		if inst.State == StateStarting || inst.State == StateStopping {
			continue
		}
		if d := now.Sub(inst.LastActivity); d > o.inactivityTimeout {
			idle = append(idle, candidate{id: id, idle: d})
		}
	}
	o.mu.RUnlock()

	reaped := 0
	for _, c := range idle {
		if ctx.Err() != nil {
			break
		}
		stopped, err := o.Stop(ctx, c.id)
		if err != nil {
			o.log.Warn().Str("model", c.id).Err(err).Msg("reap failed")
			continue
		}
		if !stopped {
			continue
		}
		reaped++
		o.mu.Lock()
		o.reapedTotal++
		o.mu.Unlock()
		o.log.Info().Str("model", c.id).Dur("idle", c.idle).Msg("reaped idle instance")
		o.publish(EventInstanceReaped, c.id, map[string]any{
			"idle_seconds": int(c.idle.Seconds()),
		})
	}
	return reaped
}
