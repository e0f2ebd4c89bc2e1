package orchestrator

import "fmt"

// modelNotFoundError signals a registry miss. Not retryable.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound returns an error for a model id absent from the catalog.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// capacityExceededError signals the reservation did not fit the pool. No
// allocation was made; the caller may retry later or pick a smaller model.
type capacityExceededError struct {
	id        string
	requested int
	available int
}

func (e capacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded for %s: requested %d units, %d available", e.id, e.requested, e.available)
}

// ErrCapacityExceeded returns an error for a reservation that did not fit.
func ErrCapacityExceeded(id string, requested, available int) error {
	return capacityExceededError{id: id, requested: requested, available: available}
}

// IsCapacityExceeded reports whether err indicates an exhausted capacity pool
// (return 503).
func IsCapacityExceeded(err error) bool {
	_, ok := err.(capacityExceededError)
	return ok
}

// imageUnavailableError signals the declared image could not be made available
// locally. Retryable.
type imageUnavailableError struct {
	image string
	cause error
}

func (e imageUnavailableError) Error() string {
	return fmt.Sprintf("image unavailable: %s: %v", e.image, e.cause)
}

func (e imageUnavailableError) Unwrap() error { return e.cause }

// ErrImageUnavailable returns an error for an image that could not be pulled.
func ErrImageUnavailable(image string, cause error) error {
	return imageUnavailableError{image: image, cause: cause}
}

// IsImageUnavailable reports whether err indicates a failed image pull.
func IsImageUnavailable(err error) bool {
	_, ok := err.(imageUnavailableError)
	return ok
}

// startFailedError signals the runtime rejected create/start.
type startFailedError struct {
	id    string
	cause error
}

func (e startFailedError) Error() string {
	return fmt.Sprintf("runtime start failed for %s: %v", e.id, e.cause)
}

func (e startFailedError) Unwrap() error { return e.cause }

// ErrRuntimeStartFailed constructs a startFailedError.
func ErrRuntimeStartFailed(id string, cause error) error {
	return startFailedError{id: id, cause: cause}
}

// IsRuntimeStartFailed reports whether err indicates a rejected create/start.
func IsRuntimeStartFailed(err error) bool {
	_, ok := err.(startFailedError)
	return ok
}

// readinessTimeoutError signals a container that started but never became
// healthy within the startup budget.
type readinessTimeoutError struct {
	id    string
	cause error
}

func (e readinessTimeoutError) Error() string {
	return fmt.Sprintf("instance %s never became ready: %v", e.id, e.cause)
}

func (e readinessTimeoutError) Unwrap() error { return e.cause }

// ErrReadinessTimeout returns an error for an instance that never became ready.
func ErrReadinessTimeout(id string, cause error) error {
	return readinessTimeoutError{id: id, cause: cause}
}

// IsReadinessTimeout reports whether err indicates a failed readiness wait.
func IsReadinessTimeout(err error) bool {
	_, ok := err.(readinessTimeoutError)
	return ok
}

// stopFailedError signals a failed stop/remove. The instance stays visible in
// the error state, still holding its allocation, until stopped again.
type stopFailedError struct {
	id    string
	cause error
}

func (e stopFailedError) Error() string {
	return fmt.Sprintf("runtime stop failed for %s: %v", e.id, e.cause)
}

func (e stopFailedError) Unwrap() error { return e.cause }

// ErrRuntimeStopFailed constructs a stopFailedError.
func ErrRuntimeStopFailed(id string, cause error) error {
	return stopFailedError{id: id, cause: cause}
}

// IsRuntimeStopFailed reports whether err indicates a failed stop/remove.
func IsRuntimeStopFailed(err error) bool {
	_, ok := err.(stopFailedError)
	return ok
}
