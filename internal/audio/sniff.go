// Package audio detects the container format of uploaded audio by magic
// bytes, so invalid uploads are rejected before a model instance is started.
package audio

import (
	"bytes"
	"fmt"
)

// Format is a detected audio container format.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatOGG     Format = "ogg"
	FormatM4A     Format = "m4a"
	FormatWebM    Format = "webm"
	FormatUnknown Format = ""
)

// SniffLen is how many leading bytes Detect needs at most.
const SniffLen = 16

// Detect inspects the leading bytes of an upload and reports its container
// format. Unknown data yields FormatUnknown.
func Detect(head []byte) Format {
	switch {
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return FormatWAV
	case len(head) >= 4 && bytes.Equal(head[:4], []byte("fLaC")):
		return FormatFLAC
	case len(head) >= 4 && bytes.Equal(head[:4], []byte("OggS")):
		return FormatOGG
	case len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp")):
		// ISO base media: m4a/mp4 audio
		return FormatM4A
	case len(head) >= 4 && bytes.Equal(head[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return FormatWebM
	case len(head) >= 3 && bytes.Equal(head[:3], []byte("ID3")):
		return FormatMP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		// raw MPEG audio frame sync
		return FormatMP3
	}
	return FormatUnknown
}

// Accepted lists the formats Detect recognizes, for error messages.
func Accepted() []Format {
	return []Format{FormatWAV, FormatMP3, FormatFLAC, FormatOGG, FormatM4A, FormatWebM}
}

// Validate returns the detected format or an error naming the accepted set.
func Validate(head []byte) (Format, error) {
	f := Detect(head)
	if f == FormatUnknown {
		return FormatUnknown, fmt.Errorf("unrecognized audio format; accepted: %v", Accepted())
	}
	return f, nil
}
