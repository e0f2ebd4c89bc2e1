package types

// ModelEntry describes one servable model in the catalog.
type ModelEntry struct {
	// Stable identifier for the model.
	// example: whisper-base
	ID string `json:"id" yaml:"id" example:"whisper-base"`
	// Human-friendly name.
	// example: Whisper Base
	Name string `json:"name" yaml:"name" example:"Whisper Base"`
	// Container image serving this model.
	// example: asrpro/whisper-base:latest
	Image string `json:"image" yaml:"image" example:"asrpro/whisper-base:latest"`
	// TCP port the serving process listens on inside the container.
	// example: 9000
	Port int `json:"port" yaml:"port" example:"9000"`
	// Declared resource cost in abstract memory units (roughly MB of GPU memory).
	// example: 2048
	ResourceCost int `json:"resource_cost" yaml:"resource_cost" example:"2048"`
	// Extra environment passed to the container.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	// Container restart policy (no, on-failure, unless-stopped).
	// example: no
	RestartPolicy string `json:"restart_policy,omitempty" yaml:"restart_policy,omitempty" example:"no"`
}
