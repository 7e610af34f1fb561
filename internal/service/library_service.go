package service

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
	"github.com/molebeat/molebeat/internal/worker"
)

// Tag defaults for files without usable metadata.
const (
	defaultArtist = "Local File"
	defaultAlbum  = "Unknown Album"
)

// LibraryService owns the in-session track collection. It hydrates the
// collection from the store at startup (seeding it on first launch),
// imports local files, and keeps play statistics. All persistence goes
// through the serialized writer, so the session copy is authoritative and
// the store follows.
type LibraryService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	bus       ports.EventBus
	repo      ports.TrackRepository
	writer    *worker.Writer
	extractor ports.MetadataExtractor
	prober    ports.AudioEngine
	playback  *PlaybackService

	// State
	tracks []domain.Track

	mu    sync.RWMutex
	subID domain.SubscriptionID
}

// NewLibraryService creates a library service and hydrates the session
// collection from the store. An empty store is seeded with the starter
// tracks so the library is never empty on first launch.
func NewLibraryService(
	logger *slog.Logger,
	bus ports.EventBus,
	repo ports.TrackRepository,
	writer *worker.Writer,
	extractor ports.MetadataExtractor,
	prober ports.AudioEngine,
	playback *PlaybackService,
) (*LibraryService, error) {
	service := &LibraryService{
		logger:    logger,
		bus:       bus,
		repo:      repo,
		writer:    writer,
		extractor: extractor,
		prober:    prober,
		playback:  playback,
	}

	if err := service.hydrate(); err != nil {
		return nil, err
	}

	// play statistics follow play-start events
	service.subID = bus.Subscribe(domain.EventTrackStarted, func(event domain.Event) {
		started, ok := event.(domain.TrackStartedEvent)
		if !ok {
			return
		}
		service.recordPlay(started.Track)
	})

	logger.Debug("library service initialized", slog.Int("tracks", len(service.tracks)))
	return service, nil
}

// hydrate loads the stored collection, seeding the store when it is empty.
func (s *LibraryService) hydrate() error {
	stored, err := s.repo.LoadAll()
	if err != nil {
		return domain.NewServiceError("LibraryService", "hydrate", "failed to load library", err)
	}

	if len(stored) == 0 {
		seeds := domain.SeedTracks()
		now := time.Now()
		for i := range seeds {
			// preserve the seed ordering under the newest-first sort
			seeds[i].AddedAt = now.Add(-time.Duration(i) * time.Second)
			s.writer.SaveTrack(seeds[i], nil, nil)
		}
		s.tracks = seeds
		return nil
	}

	s.tracks = stored
	return nil
}

// Tracks returns a copy of the session collection, newest import first.
func (s *LibraryService) Tracks() []domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Track(nil), s.tracks...)
}

// Get retrieves a session track by id.
func (s *LibraryService) Get(id int64) (domain.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, track := range s.tracks {
		if track.ID == id {
			return track, nil
		}
	}
	return domain.Track{}, domain.ErrTrackNotFound
}

// ImportFiles imports local audio files into the library. Files that fail
// to import are skipped with a warning; the successfully imported tracks
// are returned newest first.
func (s *LibraryService) ImportFiles(paths []string) ([]domain.Track, error) {
	imported := make([]domain.Track, 0, len(paths))
	for _, path := range paths {
		track, err := s.importFile(path)
		if err != nil {
			s.logger.Warn("failed to import file",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		imported = append(imported, track)
	}

	if len(imported) == 0 && len(paths) > 0 {
		return nil, domain.NewServiceError("LibraryService", "ImportFiles", "no file could be imported", nil)
	}

	s.publishLibraryUpdated()
	return imported, nil
}

// importFile reads, tags, probes and stores one audio file.
func (s *LibraryService) importFile(path string) (domain.Track, error) {
	ext := strings.ToLower(filepath.Ext(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Track{}, domain.NewServiceError("LibraryService", "importFile", "failed to read file", err)
	}

	info := s.extractor.Extract(bytes.NewReader(data))

	duration, err := s.prober.Probe(bytes.NewReader(data), ext)
	if err != nil {
		return domain.Track{}, err
	}

	track := domain.Track{
		ID:       s.newTrackID(),
		Title:    info.Title,
		Artist:   info.Artist,
		Album:    info.Album,
		Duration: domain.FormatDuration(duration),
		ImageURL: domain.DefaultImageURL,
		Format:   ext,
		HasAudio: true,
		AddedAt:  time.Now(),
	}
	if track.Title == "" {
		track.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if track.Artist == "" {
		track.Artist = defaultArtist
	}
	if track.Album == "" {
		track.Album = defaultAlbum
	}
	if len(info.Picture) > 0 {
		track.ImageURL = fmt.Sprintf("app://tracks/%d/image", track.ID)
	}

	s.mu.Lock()
	s.tracks = append([]domain.Track{track}, s.tracks...)
	s.mu.Unlock()

	s.writer.SaveTrack(track, data, info.Picture)

	s.logger.Info("imported track",
		slog.Int64("track_id", track.ID),
		slog.String("title", track.Title),
		slog.String("format", track.Format))
	return track, nil
}

// newTrackID generates a unique id from a timestamp+random composite, so
// files imported in the same batch never collide.
func (s *LibraryService) newTrackID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := time.Now().UnixMilli()*1000 + rand.Int63n(1000)
		if !s.containsLocked(id) {
			return id
		}
	}
}

// containsLocked reports whether an id is taken. Caller holds mu.
func (s *LibraryService) containsLocked(id int64) bool {
	for _, track := range s.tracks {
		if track.ID == id {
			return true
		}
	}
	return false
}

// UpdateMetadata rewrites a track's editable tag fields. The stored audio
// is untouched, and a playing track keeps playing.
func (s *LibraryService) UpdateMetadata(id int64, title, artist, album string) (domain.Track, error) {
	s.mu.Lock()

	index := -1
	for i, track := range s.tracks {
		if track.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return domain.Track{}, domain.ErrTrackNotFound
	}

	if title != "" {
		s.tracks[index].Title = title
	}
	s.tracks[index].Artist = artist
	s.tracks[index].Album = album
	updated := s.tracks[index]
	s.mu.Unlock()

	s.playback.RefreshTrack(updated)
	s.writer.UpdateTrackMetadata(updated)
	s.publishLibraryUpdated()
	return updated, nil
}

// Remove deletes a track from the library. If it is the current track the
// playback session stops. The deletion tombstones the id so no queued
// write can bring the record back.
func (s *LibraryService) Remove(id int64) error {
	s.mu.Lock()

	index := -1
	for i, track := range s.tracks {
		if track.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return domain.ErrTrackNotFound
	}

	s.tracks = append(s.tracks[:index], s.tracks[index+1:]...)
	s.mu.Unlock()

	s.playback.ClearIfCurrent(id)
	s.writer.DeleteTrack(id)
	s.publishLibraryUpdated()
	return nil
}

// Clear empties the library and stops playback. The starter tracks return
// on the next launch, when hydration finds the store empty.
func (s *LibraryService) Clear() error {
	s.mu.Lock()
	removed := make([]int64, len(s.tracks))
	for i, track := range s.tracks {
		removed[i] = track.ID
	}
	s.tracks = nil
	s.mu.Unlock()

	if err := s.playback.Stop(); err != nil {
		s.logger.Warn("failed to stop playback on clear", slog.Any("error", err))
	}
	s.writer.ClearTracks(removed)
	s.publishLibraryUpdated()
	return nil
}

// recordPlay updates play statistics when a track starts.
func (s *LibraryService) recordPlay(played domain.Track) {
	s.mu.Lock()

	index := -1
	for i, track := range s.tracks {
		if track.ID == played.ID {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return
	}

	if played.PlayCount <= s.tracks[index].PlayCount && !played.LastPlayed.After(s.tracks[index].LastPlayed) {
		// resume events repeat the counters of the original start
		s.mu.Unlock()
		return
	}

	s.tracks[index].PlayCount = played.PlayCount
	s.tracks[index].LastPlayed = played.LastPlayed
	updated := s.tracks[index]
	s.mu.Unlock()

	s.writer.UpdateTrackMetadata(updated)
}

// Shutdown detaches the service from the event bus.
func (s *LibraryService) Shutdown() {
	s.bus.Unsubscribe(s.subID)
}

func (s *LibraryService) publishLibraryUpdated() {
	s.bus.Publish(domain.NewLibraryUpdatedEvent(s.Tracks()))
}
