// Package ports defines the metadata extraction interface.
package ports

import (
	"io"
)

// TagInfo holds best-effort tag fields extracted from an audio file.
// Any field may be empty; callers supply their own defaults.
type TagInfo struct {
	Title   string
	Artist  string
	Album   string
	Picture []byte // raw embedded cover image, nil if none
}

// MetadataExtractor reads tag metadata from a raw audio stream.
//
// Extract never fails: on unreadable or untagged input it returns a zero
// TagInfo, and the caller substitutes filename-derived defaults.
type MetadataExtractor interface {
	Extract(src io.ReadSeeker) TagInfo
}
