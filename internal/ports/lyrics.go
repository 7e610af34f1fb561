// Package ports defines the lyrics provider interface.
package ports

import (
	"context"
)

// LyricsProvider fetches lyrics text for a track from a remote service.
//
// Fetch attempts an exact lookup first and falls back to a free-text search,
// choosing the first result whose duration is within five seconds of the
// requested one. It returns a synchronized (LRC) blob when available, a
// plain-text blob otherwise, or "" when nothing matches. Network and parse
// failures resolve to ("", nil); the caller treats empty as "no lyrics".
type LyricsProvider interface {
	Fetch(ctx context.Context, artist, title string, durationSec int) (string, error)
}
