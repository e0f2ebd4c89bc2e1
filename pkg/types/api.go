package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: whisper-huge
	Error string `json:"error" example:"model not found: whisper-huge"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []ModelSummary `json:"models"`
}

// ModelSummary joins a catalog entry with its live instance, if any.
type ModelSummary struct {
	ModelEntry
	// Live instance backing this model, or null when stopped.
	Instance *InstanceStatus `json:"instance,omitempty"`
}

// InstanceStatus summarizes one managed container instance for /status.
type InstanceStatus struct {
	// ID of the model this instance serves.
	// example: whisper-base
	ModelID string `json:"model_id" example:"whisper-base"`
	// Opaque container handle from the runtime.
	// example: 6e5c9b1a0f3d
	ContainerID string `json:"container_id" example:"6e5c9b1a0f3d"`
	// Current lifecycle state (starting, running, stopping, error).
	// example: running
	State string `json:"state" example:"running"`
	// Creation time (unix seconds).
	// example: 1700000000
	CreatedAt int64 `json:"created_at_unix" example:"1700000000"`
	// Time the instance became ready (unix seconds, 0 while starting).
	// example: 1700000012
	StartedAt int64 `json:"started_at_unix,omitempty" example:"1700000012"`
	// Last recorded activity (unix seconds).
	// example: 1700000450
	LastActivity int64 `json:"last_activity_unix" example:"1700000450"`
	// Seconds since the instance became ready.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Declared resource cost in memory units.
	// example: 2048
	ResourceCost int `json:"resource_cost" example:"2048"`
	// Number of errors observed on this instance.
	// example: 0
	ErrorCount int `json:"error_count" example:"0"`
	// Number of readiness/health probes performed.
	// example: 4
	HealthCheckCount int `json:"health_check_count" example:"4"`
}

// AllocationStatus is one row of the per-model utilization breakdown.
type AllocationStatus struct {
	// example: whisper-base
	ModelID string `json:"model_id" example:"whisper-base"`
	// example: 2048
	Units int `json:"units" example:"2048"`
	// example: 1700000000
	AllocatedAt int64 `json:"allocated_at_unix" example:"1700000000"`
}

// UtilizationStatus reports the shared capacity pool.
type UtilizationStatus struct {
	// Total configured capacity in memory units.
	// example: 8192
	Capacity int `json:"capacity_units" example:"8192"`
	// Currently reserved units across all models.
	// example: 7168
	Allocated int `json:"allocated_units" example:"7168"`
	// Remaining headroom.
	// example: 1024
	Available int `json:"available_units" example:"1024"`
	// Per-model breakdown, stable order by model id.
	PerModel []AllocationStatus `json:"per_model"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Whether the container runtime answered a ping.
	// example: true
	RuntimeAvailable bool `json:"runtime_available" example:"true"`
	// Capacity pool utilization.
	Utilization UtilizationStatus `json:"utilization"`
	// Managed instances.
	Instances []InstanceStatus `json:"instances"`
	// Number of instances currently running.
	// example: 2
	RunningCount int `json:"running_count" example:"2"`
	// Total successful starts since boot.
	// example: 12
	StartsTotal uint64 `json:"starts_total" example:"12"`
	// Total stops since boot (explicit and reaped).
	// example: 10
	StopsTotal uint64 `json:"stops_total" example:"10"`
	// Stops initiated by the inactivity reaper.
	// example: 3
	ReapedTotal uint64 `json:"reaped_total" example:"3"`
	// Host memory in use, in MB (0 when unavailable).
	// example: 11264
	HostMemUsedMB uint64 `json:"host_mem_used_mb,omitempty" example:"11264"`
	// Host memory total, in MB (0 when unavailable).
	// example: 32768
	HostMemTotalMB uint64 `json:"host_mem_total_mb,omitempty" example:"32768"`
	// Uptime of the daemon in seconds.
	// example: 86400
	UptimeSeconds int64 `json:"uptime_seconds" example:"86400"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// StopResponse is returned by POST /models/{id}/stop.
type StopResponse struct {
	// Whether an active instance existed and was stopped.
	// example: true
	Stopped bool `json:"stopped" example:"true"`
}

// TranscribeResponse is returned by POST /transcribe.
type TranscribeResponse struct {
	// Model that served the request.
	// example: whisper-base
	Model string `json:"model" example:"whisper-base"`
	// Detected audio container format of the upload.
	// example: wav
	Format string `json:"format" example:"wav"`
	// Transcription payload relayed from the serving container.
	Result map[string]any `json:"result"`
}
