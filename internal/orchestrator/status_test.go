package orchestrator

import (
	"errors"
	"testing"
)

func TestSnapshotReportsRunningInstance(t *testing.T) {
	rt := newFakeRuntime()
	o, _ := newTestOrchestrator(t, rt, 8192)
	ctx := testCtx(t)

	if _, err := o.Start(ctx, "whisper-base"); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := o.Snapshot(ctx)
	if !snap.RuntimeAvailable {
		t.Fatalf("runtime should be available")
	}
	if snap.RunningCount != 1 || len(snap.Instances) != 1 {
		t.Fatalf("unexpected instance counts: %+v", snap)
	}
	inst := snap.Instances[0]
	if inst.ModelID != "whisper-base" || inst.State != string(StateRunning) {
		t.Fatalf("unexpected instance summary: %+v", inst)
	}
	if inst.StartedAt == 0 || inst.ResourceCost != 2048 {
		t.Fatalf("incomplete instance summary: %+v", inst)
	}
	if snap.Utilization.Allocated != 2048 || snap.Utilization.Available != 8192-2048 {
		t.Fatalf("unexpected utilization: %+v", snap.Utilization)
	}
	if snap.StartsTotal != 1 {
		t.Fatalf("starts total = %d, want 1", snap.StartsTotal)
	}
	if snap.ServerTimeUnix == 0 {
		t.Fatalf("server time missing")
	}
}

func TestSnapshotToleratesPingFailure(t *testing.T) {
	rt := newFakeRuntime()
	rt.pingErr = errors.New("daemon down")
	o, _ := newTestOrchestrator(t, rt, 8192)

	snap := o.Snapshot(testCtx(t))
	if snap.RuntimeAvailable {
		t.Fatalf("expected runtime_available=false")
	}
	// the rest of the snapshot is still populated
	if snap.Utilization.Capacity != 8192 {
		t.Fatalf("utilization missing from degraded snapshot: %+v", snap.Utilization)
	}
}

func TestSnapshotIsReadOnly(t *testing.T) {
	rt := newFakeRuntime()
	o, _ := newTestOrchestrator(t, rt, 8192)
	ctx := testCtx(t)

	if _, err := o.Start(ctx, "whisper-base"); err != nil {
		t.Fatalf("start: %v", err)
	}
	before, _ := o.GetInstance("whisper-base")
	_ = o.Snapshot(ctx)
	after, _ := o.GetInstance("whisper-base")
	if before != after {
		t.Fatalf("snapshot mutated instance state: %+v -> %+v", before, after)
	}
	if rt.CreateCalls() != 1 || rt.StopCalls() != 0 {
		t.Fatalf("snapshot performed lifecycle calls")
	}
}

func TestInitializedEventPublished(t *testing.T) {
	rt := newFakeRuntime()
	_, pub := newTestOrchestrator(t, rt, 8192)
	if evs := pub.Named(EventInitialized); len(evs) != 1 {
		t.Fatalf("expected one initialized event, got %d", len(evs))
	}
}
