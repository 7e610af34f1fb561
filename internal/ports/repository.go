// Package ports defines repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"io"

	"github.com/molebeat/molebeat/internal/domain"
)

// TrackRepository persists track records together with their raw audio and
// cover-image binaries, so sources can be regenerated at load time without
// network access.
//
// Thread-safety: Implementations must be thread-safe.
type TrackRepository interface {
	// Save inserts or replaces a track record with its binaries.
	// audio and image may be nil for records without stored media.
	//
	// Returns an error if saving fails.
	Save(track *domain.Track, audio, image []byte) error

	// UpdateMetadata rewrites a track's metadata fields while preserving
	// the stored audio and image binaries. Missing records are a no-op.
	//
	// Returns an error if the update fails.
	UpdateMetadata(track *domain.Track) error

	// LoadAll retrieves all stored tracks, newest import first, without
	// materializing their audio binaries.
	//
	// Returns a slice of tracks (empty if none exist), or an error.
	LoadAll() ([]domain.Track, error)

	// AudioReader opens the stored audio binary for a track and reports its
	// format extension.
	// Returns domain.ErrAudioUnavailable when the track has no stored audio
	// and domain.ErrTrackNotFound when the record does not exist.
	AudioReader(id int64) (io.ReadSeekCloser, string, error)

	// Delete removes a track record by id. Missing records are a no-op.
	Delete(id int64) error

	// Clear removes all track records.
	Clear() error
}

// PlaylistRepository persists playlists with their ordered track memberships.
//
// Thread-safety: Implementations must be thread-safe.
type PlaylistRepository interface {
	// Save inserts or replaces a playlist, including its ordered TrackIDs.
	Save(playlist *domain.Playlist) error

	// LoadAll retrieves all saved playlists in creation order.
	LoadAll() ([]domain.Playlist, error)

	// Delete removes a playlist by id. Missing playlists are a no-op.
	Delete(id string) error
}

// PreferencesRepository persists scalar user preferences, outside the
// track/playlist collections.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveFavorites persists the favorite-track-id list.
	SaveFavorites(ids []int64) error

	// LoadFavorites retrieves the favorite-track-id list.
	// If nothing was saved, returns an empty slice (not an error).
	LoadFavorites() ([]int64, error)

	// SaveTheme persists the accent theme color.
	SaveTheme(color string) error

	// LoadTheme retrieves the saved accent color, or "" when unset.
	LoadTheme() (string, error)

	// Clear removes all saved preferences.
	Clear() error
}
