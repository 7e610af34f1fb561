package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
	"github.com/molebeat/molebeat/internal/worker"
)

// PlaylistService manages user playlists and the favorites set. Both are
// hydrated from the store at startup and persisted through the serialized
// writer on every change.
//
// Playlist memberships are not cascaded when tracks leave the library;
// dangling ids are tolerated and skipped by readers. Favorites, in
// contrast, always stay a subset of the library.
type PlaylistService struct {
	// Dependencies (injected)
	logger *slog.Logger
	bus    ports.EventBus
	repo   ports.PlaylistRepository
	prefs  ports.PreferencesRepository
	writer *worker.Writer

	// State
	playlists []domain.Playlist
	favorites []int64

	mu    sync.RWMutex
	subID domain.SubscriptionID
}

// NewPlaylistService creates a playlist service and hydrates playlists and
// favorites from the store.
func NewPlaylistService(
	logger *slog.Logger,
	bus ports.EventBus,
	repo ports.PlaylistRepository,
	prefs ports.PreferencesRepository,
	writer *worker.Writer,
) (*PlaylistService, error) {
	playlists, err := repo.LoadAll()
	if err != nil {
		return nil, domain.NewServiceError("PlaylistService", "hydrate", "failed to load playlists", err)
	}

	favorites, err := prefs.LoadFavorites()
	if err != nil {
		return nil, domain.NewServiceError("PlaylistService", "hydrate", "failed to load favorites", err)
	}

	service := &PlaylistService{
		logger:    logger,
		bus:       bus,
		repo:      repo,
		prefs:     prefs,
		writer:    writer,
		playlists: playlists,
		favorites: favorites,
	}

	// favorites stay a subset of the library
	service.subID = bus.Subscribe(domain.EventLibraryUpdated, func(event domain.Event) {
		updated, ok := event.(domain.LibraryUpdatedEvent)
		if !ok {
			return
		}
		service.pruneFavorites(updated.Tracks)
	})

	logger.Debug("playlist service initialized",
		slog.Int("playlists", len(playlists)),
		slog.Int("favorites", len(favorites)))
	return service, nil
}

// Playlists returns a copy of all playlists in creation order.
func (s *PlaylistService) Playlists() []domain.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	playlists := make([]domain.Playlist, len(s.playlists))
	for i, playlist := range s.playlists {
		playlists[i] = playlist
		playlists[i].TrackIDs = append([]int64(nil), playlist.TrackIDs...)
	}
	return playlists
}

// Get retrieves a playlist by id.
func (s *PlaylistService) Get(id string) (domain.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, playlist := range s.playlists {
		if playlist.ID == id {
			copied := playlist
			copied.TrackIDs = append([]int64(nil), playlist.TrackIDs...)
			return copied, nil
		}
	}
	return domain.Playlist{}, domain.ErrPlaylistNotFound
}

// Create makes a new empty playlist with a generated id.
func (s *PlaylistService) Create(name string) domain.Playlist {
	playlist := domain.Playlist{
		ID:       uuid.NewString(),
		Name:     name,
		Created:  time.Now(),
		TrackIDs: []int64{},
	}

	s.mu.Lock()
	s.playlists = append(s.playlists, playlist)
	s.mu.Unlock()

	s.writer.SavePlaylist(playlist)
	s.publishPlaylistsUpdated()

	s.logger.Info("playlist created",
		slog.String("playlist_id", playlist.ID),
		slog.String("name", name))
	return playlist
}

// Rename changes a playlist's name.
func (s *PlaylistService) Rename(id, name string) error {
	s.mu.Lock()
	index := s.indexLocked(id)
	if index < 0 {
		s.mu.Unlock()
		return domain.ErrPlaylistNotFound
	}
	s.playlists[index].Name = name
	updated := s.playlists[index]
	s.mu.Unlock()

	s.writer.SavePlaylist(updated)
	s.publishPlaylistsUpdated()
	return nil
}

// Delete removes a playlist.
func (s *PlaylistService) Delete(id string) error {
	s.mu.Lock()
	index := s.indexLocked(id)
	if index < 0 {
		s.mu.Unlock()
		return domain.ErrPlaylistNotFound
	}
	s.playlists = append(s.playlists[:index], s.playlists[index+1:]...)
	s.mu.Unlock()

	s.writer.DeletePlaylist(id)
	s.publishPlaylistsUpdated()
	return nil
}

// AddTrack appends a track to a playlist. Each track can appear at most
// once per playlist.
func (s *PlaylistService) AddTrack(playlistID string, trackID int64) error {
	s.mu.Lock()
	index := s.indexLocked(playlistID)
	if index < 0 {
		s.mu.Unlock()
		return domain.ErrPlaylistNotFound
	}
	if s.playlists[index].Contains(trackID) {
		s.mu.Unlock()
		return domain.ErrDuplicatePlaylistEntry
	}
	s.playlists[index].TrackIDs = append(s.playlists[index].TrackIDs, trackID)
	updated := s.playlists[index]
	s.mu.Unlock()

	s.writer.SavePlaylist(updated)
	s.publishPlaylistsUpdated()
	return nil
}

// RemoveTrack removes a track from a playlist. Missing memberships are a
// no-op.
func (s *PlaylistService) RemoveTrack(playlistID string, trackID int64) error {
	s.mu.Lock()
	index := s.indexLocked(playlistID)
	if index < 0 {
		s.mu.Unlock()
		return domain.ErrPlaylistNotFound
	}

	ids := s.playlists[index].TrackIDs
	for i, id := range ids {
		if id == trackID {
			s.playlists[index].TrackIDs = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	updated := s.playlists[index]
	s.mu.Unlock()

	s.writer.SavePlaylist(updated)
	s.publishPlaylistsUpdated()
	return nil
}

// Favorites returns a copy of the favorite track ids.
func (s *PlaylistService) Favorites() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]int64(nil), s.favorites...)
}

// IsFavorite reports whether a track is in the favorites set.
func (s *PlaylistService) IsFavorite(trackID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.favorites {
		if id == trackID {
			return true
		}
	}
	return false
}

// ToggleFavorite adds a track to the favorites set or removes it. Toggling
// twice restores the original set.
func (s *PlaylistService) ToggleFavorite(trackID int64) bool {
	s.mu.Lock()

	found := false
	for i, id := range s.favorites {
		if id == trackID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.favorites = append(s.favorites, trackID)
	}
	favorites := append([]int64(nil), s.favorites...)
	s.mu.Unlock()

	s.writer.SaveFavorites(favorites)
	s.bus.Publish(domain.NewFavoritesChangedEvent(favorites))
	return !found
}

// pruneFavorites drops favorites that no longer exist in the library.
func (s *PlaylistService) pruneFavorites(tracks []domain.Track) {
	existing := make(map[int64]struct{}, len(tracks))
	for _, track := range tracks {
		existing[track.ID] = struct{}{}
	}

	s.mu.Lock()
	kept := s.favorites[:0]
	for _, id := range s.favorites {
		if _, ok := existing[id]; ok {
			kept = append(kept, id)
		}
	}
	changed := len(kept) != len(s.favorites)
	s.favorites = kept
	favorites := append([]int64(nil), s.favorites...)
	s.mu.Unlock()

	if !changed {
		return
	}
	s.writer.SaveFavorites(favorites)
	s.bus.Publish(domain.NewFavoritesChangedEvent(favorites))
}

// Shutdown detaches the service from the event bus.
func (s *PlaylistService) Shutdown() {
	s.bus.Unsubscribe(s.subID)
}

// indexLocked locates a playlist by id. Caller holds mu.
func (s *PlaylistService) indexLocked(id string) int {
	for i, playlist := range s.playlists {
		if playlist.ID == id {
			return i
		}
	}
	return -1
}

func (s *PlaylistService) publishPlaylistsUpdated() {
	s.bus.Publish(domain.NewPlaylistsUpdatedEvent(s.Playlists()))
}
