// Package metadata extracts tag metadata from audio streams.
package metadata

import (
	"io"
	"log/slog"

	"github.com/dhowden/tag"

	"github.com/molebeat/molebeat/internal/ports"
)

// Extractor reads ID3/MP4/Vorbis/FLAC tags from audio streams.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a new tag extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract reads tag fields from src. Untagged or unreadable streams yield a
// zero TagInfo; the caller substitutes filename-derived defaults.
func (e *Extractor) Extract(src io.ReadSeeker) ports.TagInfo {
	meta, err := tag.ReadFrom(src)
	if err != nil {
		e.logger.Debug("no readable tags in stream", slog.String("error", err.Error()))
		return ports.TagInfo{}
	}

	info := ports.TagInfo{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
	}
	if pic := meta.Picture(); pic != nil {
		info.Picture = pic.Data
	}
	return info
}

// Verify that Extractor implements the port
var _ ports.MetadataExtractor = (*Extractor)(nil)
