// Package orchestrator manages the lifecycle of model-serving containers: it
// decides which container instance backs a requested model, starts and stops
// instances against the container runtime, enforces a global resource budget,
// and reclaims idle instances. It is structured into small files by concern:
//
//   - orchestrator.go: core Orchestrator type, Config, constructor, Touch.
//   - types.go: instance state machine types.
//   - errors.go: error kinds and Is* helpers for HTTP mapping.
//   - allocator.go: capacity-bounded resource pool shared across models.
//   - start.go: Start lifecycle (single-flighted per model).
//   - stop.go: Stop and StopAll.
//   - probe.go: readiness polling against the runtime's inspect.
//   - reaper.go: periodic reclamation of idle instances.
//   - status.go: point-in-time status snapshot.
//   - events.go: outbound lifecycle event publishing.
//
// The orchestrator has no transport dependency; HTTP and websocket layers sit
// on top and consume public methods plus the EventPublisher hook. All start
// and stop work for one model is serialized through a per-model critical
// section; the capacity pool carries its own lock so reservations across
// unrelated models observe a consistent allocation sum.
package orchestrator
