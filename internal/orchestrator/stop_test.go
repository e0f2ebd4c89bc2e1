package orchestrator

import (
	"errors"
	"testing"
	"time"
)

func TestStopWithoutInstance(t *testing.T) {
	rt := newFakeRuntime()
	o, _ := newTestOrchestrator(t, rt, 8192)

	stopped, err := o.Stop(testCtx(t), "whisper-base")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped {
		t.Fatalf("stop of absent instance reported true")
	}
	if rt.StopCalls() != 0 {
		t.Fatalf("stop of absent instance reached the runtime")
	}
}

func TestStopReturnsPoolToPreStartLevel(t *testing.T) {
	rt := newFakeRuntime()
	o, pub := newTestOrchestrator(t, rt, 8192)
	ctx := testCtx(t)

	before := o.Allocator().Allocated()
	if _, err := o.Start(ctx, "whisper-small"); err != nil {
		t.Fatalf("start: %v", err)
	}
	stopped, err := o.Stop(ctx, "whisper-small")
	if err != nil || !stopped {
		t.Fatalf("stop = (%v, %v), want (true, nil)", stopped, err)
	}
	if got := o.Allocator().Allocated(); got != before {
		t.Fatalf("allocated = %d, want pre-start value %d", got, before)
	}
	if _, ok := o.GetInstance("whisper-small"); ok {
		t.Fatalf("instance still present after stop")
	}
	if evs := pub.Named(EventInstanceStopped); len(evs) != 1 {
		t.Fatalf("expected one instance_stopped event, got %d", len(evs))
	}
}

func TestStopFailureKeepsInstanceVisible(t *testing.T) {
	rt := newFakeRuntime()
	o, _ := newTestOrchestrator(t, rt, 8192)
	ctx := testCtx(t)

	if _, err := o.Start(ctx, "whisper-base"); err != nil {
		t.Fatalf("start: %v", err)
	}
	rt.setStopErr(errors.New("engine stuck"))

	stopped, err := o.Stop(ctx, "whisper-base")
	if stopped || err == nil || !IsRuntimeStopFailed(err) {
		t.Fatalf("stop = (%v, %v), want (false, stop-failed)", stopped, err)
	}
	inst, ok := o.GetInstance("whisper-base")
	if !ok || inst.State != StateError {
		t.Fatalf("instance = (%+v, %v), want visible in error state", inst, ok)
	}
	if inst.ErrorCount != 1 {
		t.Fatalf("error count = %d, want 1", inst.ErrorCount)
	}
	// the allocation is still held so the failure is observable in utilization
	if got := o.Allocator().Allocated(); got != 2048 {
		t.Fatalf("allocated = %d, want 2048 retained", got)
	}

	// a later explicit stop completes the teardown
	rt.setStopErr(nil)
	stopped, err = o.Stop(ctx, "whisper-base")
	if err != nil || !stopped {
		t.Fatalf("retry stop = (%v, %v), want (true, nil)", stopped, err)
	}
	if got := o.Allocator().Allocated(); got != 0 {
		t.Fatalf("allocated = %d after retry, want 0", got)
	}
}

func TestTouchMovesActivityForward(t *testing.T) {
	rt := newFakeRuntime()
	o, _ := newTestOrchestrator(t, rt, 8192)
	ctx := testCtx(t)

	if _, err := o.Start(ctx, "whisper-base"); err != nil {
		t.Fatalf("start: %v", err)
	}
	rewindActivity(t, o, "whisper-base", time.Hour)
	before, _ := o.GetInstance("whisper-base")

	o.Touch("whisper-base")
	after, _ := o.GetInstance("whisper-base")
	if !after.LastActivity.After(before.LastActivity) {
		t.Fatalf("touch did not advance activity: %v -> %v", before.LastActivity, after.LastActivity)
	}
}

func TestTouchAfterStopIsNoOp(t *testing.T) {
	rt := newFakeRuntime()
	o, _ := newTestOrchestrator(t, rt, 8192)
	ctx := testCtx(t)

	if _, err := o.Start(ctx, "whisper-base"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := o.Stop(ctx, "whisper-base"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// a late touch must not resurrect the instance or its allocation
	o.Touch("whisper-base")
	if _, ok := o.GetInstance("whisper-base"); ok {
		t.Fatalf("touch resurrected a stopped instance")
	}
	if got := o.Allocator().Allocated(); got != 0 {
		t.Fatalf("touch recreated an allocation: %d units", got)
	}
}

func TestTouchUnknownModelIsNoOp(t *testing.T) {
	rt := newFakeRuntime()
	o, _ := newTestOrchestrator(t, rt, 8192)
	o.Touch("never-started")
}

func TestStopAll(t *testing.T) {
	rt := newFakeRuntime()
	o, _ := newTestOrchestrator(t, rt, 8192)
	ctx := testCtx(t)

	for _, id := range []string{"whisper-tiny", "whisper-base"} {
		if _, err := o.Start(ctx, id); err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
	}
	o.StopAll(ctx)
	if got := len(o.Instances()); got != 0 {
		t.Fatalf("instances remaining after StopAll: %d", got)
	}
	if got := o.Allocator().Allocated(); got != 0 {
		t.Fatalf("allocations remaining after StopAll: %d", got)
	}
}
