package httpapi

import (
	"github.com/rs/zerolog"
)

// zlog is the structured logger used by the HTTP layer. Silent until installed.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }
