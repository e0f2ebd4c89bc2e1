package orchestrator

import (
	"context"
	"fmt"
	"time"
)

// terminalState reports engine states from which a container can never reach
// "running" on its own.
func terminalState(state string) bool {
	switch state {
	case "exited", "dead", "removing":
		return true
	}
	return false
}

// waitUntilReady polls the runtime's inspect until the container reports
// running, a terminal state is observed, or ctx's deadline elapses. Transient
// inspect errors are tolerated and retried on the next tick.
func (o *Orchestrator) waitUntilReady(ctx context.Context, modelID, containerID string) error {
	for {
		st, err := o.rt.Inspect(ctx, containerID)
		o.recordProbe(modelID)
		if err == nil {
			switch {
			case st.State == "running":
				return nil
			case terminalState(st.State):
				if st.Err != "" {
					return fmt.Errorf("container entered %s state: %s", st.State, st.Err)
				}
				return fmt.Errorf("container entered %s state (exit code %d)", st.State, st.ExitCode)
			}
		} else if ctx.Err() == nil {
			o.log.Debug().Str("model", modelID).Err(err).Msg("readiness inspect failed; will retry")
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("readiness wait: %w", ctx.Err())
		case <-time.After(o.probeInterval):
		}
	}
}

// recordProbe bumps the instance's health-check counter.
func (o *Orchestrator) recordProbe(modelID string) {
	o.mu.Lock()
	if inst, ok := o.instances[modelID]; ok {
		inst.HealthChecks++
	}
	o.mu.Unlock()
}
