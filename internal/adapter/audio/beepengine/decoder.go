package beepengine

import (
	"io"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/molebeat/molebeat/internal/domain"
)

// SupportedFormats returns the file extensions the engine can decode.
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac", ".ogg"}
}

// IsSupported reports whether the extension names a decodable format.
func IsSupported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// decode selects a decoder by file extension.
func decode(src io.ReadSeekCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".mp3":
		return mp3.Decode(src)
	case ".wav":
		return wav.Decode(src)
	case ".flac":
		return flac.Decode(src)
	case ".ogg":
		return vorbis.Decode(src)
	default:
		return nil, beep.Format{}, domain.ErrUnsupportedFormat
	}
}

// readSeekNopCloser adapts a ReadSeeker for decoders that take ownership
// of a closer. Used by Probe, which must not close the caller's source.
type readSeekNopCloser struct {
	io.ReadSeeker
}

func (readSeekNopCloser) Close() error { return nil }
