package catalog

import "github.com/surajmandalcell/asrpro-sub001/pkg/types"

// defaultEntries lists the whisper images shipped with the daemon. Costs are
// memory units (~MB of GPU memory) matching the published model footprints.
func defaultEntries() []types.ModelEntry {
	return []types.ModelEntry{
		{
			ID:           "whisper-tiny",
			Name:         "Whisper Tiny",
			Image:        "asrpro/whisper-tiny:latest",
			Port:         9000,
			ResourceCost: 1024,
			Env:          map[string]string{"ASR_MODEL": "tiny"},
		},
		{
			ID:           "whisper-base",
			Name:         "Whisper Base",
			Image:        "asrpro/whisper-base:latest",
			Port:         9000,
			ResourceCost: 2048,
			Env:          map[string]string{"ASR_MODEL": "base"},
		},
		{
			ID:           "whisper-small",
			Name:         "Whisper Small",
			Image:        "asrpro/whisper-small:latest",
			Port:         9000,
			ResourceCost: 4096,
			Env:          map[string]string{"ASR_MODEL": "small"},
		},
		{
			ID:           "whisper-medium",
			Name:         "Whisper Medium",
			Image:        "asrpro/whisper-medium:latest",
			Port:         9000,
			ResourceCost: 8192,
			Env:          map[string]string{"ASR_MODEL": "medium"},
		},
	}
}
