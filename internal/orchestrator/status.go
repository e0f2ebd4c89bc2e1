package orchestrator

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/mem"

	"github.com/surajmandalcell/asrpro-sub001/pkg/types"
)

// Snapshot builds a point-in-time status view: runtime availability, pool
// utilization, and per-instance summaries. Read-only; a failed runtime ping
// degrades the report instead of failing it.
func (o *Orchestrator) Snapshot(ctx context.Context) types.StatusResponse {
	now := o.now()
	resp := types.StatusResponse{
		RuntimeAvailable: o.rt.Ping(ctx) == nil,
		Utilization:      o.alloc.Utilization(),
		ServerTimeUnix:   now.Unix(),
		UptimeSeconds:    int64(now.Sub(o.startTime).Seconds()),
	}

	o.mu.RLock()
	resp.StartsTotal = o.startsTotal
	resp.StopsTotal = o.stopsTotal
	resp.ReapedTotal = o.reapedTotal
	o.mu.RUnlock()

	for _, inst := range o.Instances() {
		if inst.State == StateRunning {
			resp.RunningCount++
		}
		resp.Instances = append(resp.Instances, instanceStatus(inst, now))
	}

	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		resp.HostMemUsedMB = vm.Used / (1024 * 1024)
		resp.HostMemTotalMB = vm.Total / (1024 * 1024)
	}
	return resp
}

// Ready reports whether the container runtime answers a ping.
func (o *Orchestrator) Ready(ctx context.Context) bool {
	return o.rt.Ping(ctx) == nil
}

// InstanceStatus renders one instance into its public DTO.
func (o *Orchestrator) InstanceStatus(inst Instance) types.InstanceStatus {
	return instanceStatus(inst, o.now())
}

func instanceStatus(inst Instance, now time.Time) types.InstanceStatus {
	st := types.InstanceStatus{
		ModelID:          inst.ModelID,
		ContainerID:      shortID(inst.ContainerID),
		State:            string(inst.State),
		CreatedAt:        inst.CreatedAt.Unix(),
		LastActivity:     inst.LastActivity.Unix(),
		ResourceCost:     inst.ResourceCost,
		ErrorCount:       inst.ErrorCount,
		HealthCheckCount: inst.HealthChecks,
	}
	if !inst.StartedAt.IsZero() {
		st.StartedAt = inst.StartedAt.Unix()
		st.UptimeSeconds = int64(inst.Uptime(now).Seconds())
	}
	return st
}
