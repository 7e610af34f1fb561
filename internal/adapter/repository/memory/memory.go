// Package memory provides in-memory implementations of the repository
// ports for tests and for running without a database file.
package memory

import (
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

// TrackRepository implements ports.TrackRepository in memory.
//
// Thread-safe: All operations protected by sync.RWMutex.
type TrackRepository struct {
	mu     sync.RWMutex
	tracks map[int64]*trackRecord
}

type trackRecord struct {
	track domain.Track
	audio []byte
	image []byte
}

// NewTrackRepository creates a new in-memory track repository.
func NewTrackRepository() *TrackRepository {
	return &TrackRepository{tracks: make(map[int64]*trackRecord)}
}

// Save inserts or replaces a track record with its binaries.
func (r *TrackRepository) Save(track *domain.Track, audio, image []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := &trackRecord{track: *track}
	record.audio = append([]byte(nil), audio...)
	record.image = append([]byte(nil), image...)
	r.tracks[track.ID] = record
	return nil
}

// UpdateMetadata rewrites a track's metadata, preserving stored binaries.
func (r *TrackRepository) UpdateMetadata(track *domain.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.tracks[track.ID]
	if !ok {
		return nil
	}
	updated := *track
	record.track = updated
	return nil
}

// LoadAll retrieves all stored tracks, newest import first.
func (r *TrackRepository) LoadAll() ([]domain.Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracks := make([]domain.Track, 0, len(r.tracks))
	for _, record := range r.tracks {
		track := record.track
		track.HasAudio = len(record.audio) > 0
		tracks = append(tracks, track)
	}
	sort.Slice(tracks, func(i, j int) bool {
		if !tracks[i].AddedAt.Equal(tracks[j].AddedAt) {
			return tracks[i].AddedAt.After(tracks[j].AddedAt)
		}
		return tracks[i].ID > tracks[j].ID
	})
	return tracks, nil
}

// AudioReader opens the stored audio bytes for a track.
func (r *TrackRepository) AudioReader(id int64) (io.ReadSeekCloser, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.tracks[id]
	if !ok {
		return nil, "", domain.ErrTrackNotFound
	}
	if len(record.audio) == 0 {
		return nil, "", domain.ErrAudioUnavailable
	}
	return nopSeekCloser{bytes.NewReader(record.audio)}, record.track.Format, nil
}

// Delete removes a track record by id.
func (r *TrackRepository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tracks, id)
	return nil
}

// Clear removes all track records.
func (r *TrackRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracks = make(map[int64]*trackRecord)
	return nil
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

// PlaylistRepository implements ports.PlaylistRepository in memory.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PlaylistRepository struct {
	mu        sync.RWMutex
	playlists map[string]domain.Playlist
	order     []string
}

// NewPlaylistRepository creates a new in-memory playlist repository.
func NewPlaylistRepository() *PlaylistRepository {
	return &PlaylistRepository{playlists: make(map[string]domain.Playlist)}
}

// Save inserts or replaces a playlist.
func (r *PlaylistRepository) Save(playlist *domain.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *playlist
	stored.TrackIDs = append([]int64(nil), playlist.TrackIDs...)
	if _, ok := r.playlists[playlist.ID]; !ok {
		r.order = append(r.order, playlist.ID)
	}
	r.playlists[playlist.ID] = stored
	return nil
}

// LoadAll retrieves all saved playlists in creation order.
func (r *PlaylistRepository) LoadAll() ([]domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	playlists := make([]domain.Playlist, 0, len(r.order))
	for _, id := range r.order {
		playlist := r.playlists[id]
		playlist.TrackIDs = append([]int64(nil), playlist.TrackIDs...)
		playlists = append(playlists, playlist)
	}
	return playlists, nil
}

// Delete removes a playlist by id.
func (r *PlaylistRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.playlists[id]; !ok {
		return nil
	}
	delete(r.playlists, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// PreferencesRepository implements ports.PreferencesRepository in memory.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	mu        sync.RWMutex
	favorites []int64
	theme     string
}

// NewPreferencesRepository creates a new in-memory preferences repository.
func NewPreferencesRepository() *PreferencesRepository {
	return &PreferencesRepository{}
}

// SaveFavorites persists the favorite-track-id list.
func (r *PreferencesRepository) SaveFavorites(ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.favorites = append([]int64(nil), ids...)
	return nil
}

// LoadFavorites retrieves the favorite-track-id list.
func (r *PreferencesRepository) LoadFavorites() ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]int64(nil), r.favorites...), nil
}

// SaveTheme persists the accent theme color.
func (r *PreferencesRepository) SaveTheme(color string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.theme = color
	return nil
}

// LoadTheme retrieves the saved accent color, or "" when unset.
func (r *PreferencesRepository) LoadTheme() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.theme, nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.favorites = nil
	r.theme = ""
	return nil
}

// Verify interface implementation
var (
	_ ports.TrackRepository       = (*TrackRepository)(nil)
	_ ports.PlaylistRepository    = (*PlaylistRepository)(nil)
	_ ports.PreferencesRepository = (*PreferencesRepository)(nil)
)
