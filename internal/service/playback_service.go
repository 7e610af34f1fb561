// Package service provides business logic for the MoleBeat application.
package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

// PlaybackService owns the playback session: the current track, playback
// status, volume, rate, shuffle and repeat flags. It is the single writer
// of that state; everything else observes it through events or State().
// All operations are thread-safe via sync.RWMutex.
type PlaybackService struct {
	// Dependencies (injected)
	logger *slog.Logger
	engine ports.AudioEngine
	bus    ports.EventBus
	tracks ports.TrackRepository

	// State
	currentTrack   *domain.Track
	volume         float64
	rate           float64
	shuffling      bool
	repeat         domain.RepeatMode
	updateInterval time.Duration

	// Concurrency control
	mu            sync.RWMutex
	stopUpdate    chan struct{}
	updateRunning bool
	updateWg      sync.WaitGroup
	manualStop    bool // True if the user explicitly stopped playback
	hasPlayed     bool // True if the current track has been played
}

// NewPlaybackService creates a new playback service.
func NewPlaybackService(
	logger *slog.Logger,
	engine ports.AudioEngine,
	bus ports.EventBus,
	tracks ports.TrackRepository,
) *PlaybackService {
	service := &PlaybackService{
		logger:         logger,
		engine:         engine,
		bus:            bus,
		tracks:         tracks,
		volume:         1.0,
		rate:           1.0,
		repeat:         domain.RepeatOff,
		updateInterval: 333 * time.Millisecond, // 3 times per second
		stopUpdate:     make(chan struct{}),
	}

	logger.Debug("playback service initialized")

	service.startUpdateRoutine()

	return service
}

// Play starts playback of a track. Playing the track that is already
// current toggles between pause and resume instead of restarting it.
//
// The audio device is activated lazily here, on the first user playback
// command. Tracks without stored audio fail with ErrAudioUnavailable; the
// session keeps its previous state on any failure.
func (s *PlaybackService) Play(track domain.Track) error {
	s.mu.Lock()

	if s.currentTrack != nil && s.currentTrack.ID == track.ID {
		s.mu.Unlock()
		return s.TogglePlay()
	}

	s.logger.Debug("playing track",
		slog.Int64("track_id", track.ID),
		slog.String("title", track.Title))

	if err := s.engine.Activate(); err != nil {
		s.mu.Unlock()
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return err
	}

	if err := s.loadAndStartLocked(track); err != nil {
		s.mu.Unlock()
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return err
	}

	track.PlayCount++
	track.LastPlayed = time.Now()
	s.currentTrack = &track
	s.manualStop = false
	s.hasPlayed = true
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackStartedEvent(track))
	return nil
}

// loadAndStartLocked opens the stored audio, loads it into the engine and
// starts playback, applying the session volume and rate. Caller holds mu.
func (s *PlaybackService) loadAndStartLocked(track domain.Track) error {
	reader, format, err := s.tracks.AudioReader(track.ID)
	if err != nil {
		return err
	}

	if err := s.engine.Load(reader, format); err != nil {
		return err
	}

	if err := s.engine.SetVolume(s.volume); err != nil {
		s.logger.Warn("failed to apply volume", slog.Any("error", err))
	}
	if err := s.engine.SetRate(s.rate); err != nil {
		s.logger.Warn("failed to apply playback rate", slog.Any("error", err))
	}

	if err := s.engine.Play(); err != nil {
		if stopErr := s.engine.Stop(); stopErr != nil {
			s.logger.Warn("failed to unload after play error", slog.Any("error", stopErr))
		}
		return err
	}

	return nil
}

// TogglePlay pauses a playing session or resumes a paused one.
func (s *PlaybackService) TogglePlay() error {
	s.mu.Lock()

	if s.currentTrack == nil {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	track := *s.currentTrack

	switch s.engine.Status() {
	case domain.StatusPlaying:
		position := s.engine.Position()
		if err := s.engine.Pause(); err != nil {
			s.mu.Unlock()
			return err
		}
		s.mu.Unlock()
		s.bus.Publish(domain.NewTrackPausedEvent(track, position))
		return nil

	default:
		if err := s.engine.Play(); err != nil {
			s.mu.Unlock()
			return err
		}
		s.manualStop = false
		s.hasPlayed = true
		s.mu.Unlock()
		s.bus.Publish(domain.NewTrackStartedEvent(track))
		return nil
	}
}

// Restart rewinds the current track to the beginning and ensures it is
// playing. Used when navigation lands on the track that is already current.
func (s *PlaybackService) Restart() error {
	s.mu.Lock()

	if s.currentTrack == nil {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	track := *s.currentTrack

	if err := s.engine.Seek(0); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.engine.Play(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.manualStop = false
	s.hasPlayed = true
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackStartedEvent(track))
	return nil
}

// Pause suspends playback of the current track.
func (s *PlaybackService) Pause() error {
	s.mu.Lock()

	if s.currentTrack == nil {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	track := *s.currentTrack
	position := s.engine.Position()

	if err := s.engine.Pause(); err != nil {
		s.mu.Unlock()
		return err
	}

	s.mu.Unlock()
	s.bus.Publish(domain.NewTrackPausedEvent(track, position))
	return nil
}

// Stop halts playback and clears the current track.
func (s *PlaybackService) Stop() error {
	s.mu.Lock()
	track, err := s.stopLocked()
	s.mu.Unlock()

	if track != nil {
		s.bus.Publish(domain.NewTrackStoppedEvent(*track))
	}
	return err
}

// stopLocked stops the engine and clears the session. Caller holds mu.
// Returns the track that was current, for event publication.
func (s *PlaybackService) stopLocked() (*domain.Track, error) {
	if s.currentTrack == nil {
		return nil, nil
	}

	s.manualStop = true
	s.hasPlayed = false
	track := s.currentTrack
	s.currentTrack = nil

	if err := s.engine.Stop(); err != nil {
		return track, err
	}
	return track, nil
}

// ClearIfCurrent stops playback when the given track is the current one.
// Used when a track is removed from the library mid-session.
func (s *PlaybackService) ClearIfCurrent(trackID int64) {
	s.mu.Lock()
	if s.currentTrack == nil || s.currentTrack.ID != trackID {
		s.mu.Unlock()
		return
	}
	track, err := s.stopLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("failed to stop removed track", slog.Any("error", err))
	}
	if track != nil {
		s.bus.Publish(domain.NewTrackStoppedEvent(*track))
	}
}

// RefreshTrack updates the session copy of the current track after a
// metadata edit. Play statistics are kept from the session copy, which is
// ahead of the library's by the in-flight play.
func (s *PlaybackService) RefreshTrack(track domain.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentTrack == nil || s.currentTrack.ID != track.ID {
		return
	}
	track.PlayCount = s.currentTrack.PlayCount
	track.LastPlayed = s.currentTrack.LastPlayed
	s.currentTrack = &track
}

// Seek sets the playback position within the current track.
func (s *PlaybackService) Seek(position time.Duration) error {
	s.mu.Lock()

	if s.currentTrack == nil {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	if err := s.engine.Seek(position); err != nil {
		s.mu.Unlock()
		return err
	}
	duration := s.engine.Duration()
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackProgressEvent(position, duration))
	return nil
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (s *PlaybackService) SetVolume(volume float64) error {
	s.mu.Lock()

	if volume < 0.0 || volume > 1.0 {
		s.mu.Unlock()
		return domain.ErrInvalidVolume
	}

	s.volume = volume
	if err := s.engine.SetVolume(volume); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// Volume returns the current volume (0.0 to 1.0).
func (s *PlaybackService) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.volume
}

// SetRate sets the playback-rate multiplier (1.0 = normal speed).
func (s *PlaybackService) SetRate(rate float64) error {
	s.mu.Lock()

	if rate <= 0 {
		s.mu.Unlock()
		return domain.ErrInvalidRate
	}

	s.rate = rate
	if err := s.engine.SetRate(rate); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.bus.Publish(domain.NewRateChangedEvent(rate))
	return nil
}

// Rate returns the playback-rate multiplier.
func (s *PlaybackService) Rate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.rate
}

// ToggleShuffle flips random track selection on or off.
func (s *PlaybackService) ToggleShuffle() {
	s.mu.Lock()
	s.shuffling = !s.shuffling
	enabled := s.shuffling
	s.mu.Unlock()

	s.bus.Publish(domain.NewShuffleToggledEvent(enabled))
}

// Shuffling reports whether random track selection is enabled.
func (s *PlaybackService) Shuffling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shuffling
}

// SetRepeat sets the queue boundary policy.
func (s *PlaybackService) SetRepeat(mode domain.RepeatMode) {
	s.mu.Lock()
	if s.repeat == mode {
		s.mu.Unlock()
		return
	}
	s.repeat = mode
	s.mu.Unlock()

	s.bus.Publish(domain.NewRepeatModeChangedEvent(mode))
}

// Repeat returns the queue boundary policy.
func (s *PlaybackService) Repeat() domain.RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.repeat
}

// State returns a snapshot of the playback session.
func (s *PlaybackService) State() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := domain.PlaybackState{
		Volume:    s.volume,
		Rate:      s.rate,
		Shuffling: s.shuffling,
		Repeat:    s.repeat,
		Status:    domain.StatusStopped,
	}

	if s.currentTrack != nil {
		track := *s.currentTrack
		state.CurrentTrack = &track
		state.Status = s.engine.Status()
		state.Position = s.engine.Position()
		state.Duration = s.engine.Duration()
	}

	return state
}

// Shutdown stops playback and cleans up resources.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()

	if s.updateRunning {
		close(s.stopUpdate)
		s.updateRunning = false
	}

	// Release lock before waiting for goroutine to exit (to avoid deadlock)
	s.mu.Unlock()

	s.updateWg.Wait()

	s.mu.Lock()
	_, err := s.stopLocked()
	s.mu.Unlock()
	return err
}

// startUpdateRoutine starts a goroutine that periodically publishes progress
// events and detects natural track completion.
func (s *PlaybackService) startUpdateRoutine() {
	s.mu.Lock()
	if s.updateRunning {
		s.mu.Unlock()
		return
	}
	s.updateRunning = true
	s.updateWg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.updateWg.Done()
		ticker := time.NewTicker(s.updateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopUpdate:
				return

			case <-ticker.C:
				s.publishProgressUpdate()
			}
		}
	}()
}

// publishProgressUpdate publishes a progress event if a track is loaded and
// dispatches completion handling when the stream has drained.
func (s *PlaybackService) publishProgressUpdate() {
	s.mu.RLock()

	if s.currentTrack == nil {
		s.mu.RUnlock()
		return
	}

	status := s.engine.Status()
	position := s.engine.Position()
	duration := s.engine.Duration()
	shouldFinish := status == domain.StatusStopped && !s.manualStop && s.hasPlayed

	s.mu.RUnlock()

	if status == domain.StatusPlaying {
		s.bus.Publish(domain.NewTrackProgressEvent(position, duration))
	}

	if shouldFinish {
		s.handleTrackFinished()
	}
}

// handleTrackFinished runs when a track finishes playing naturally. With
// repeat-one the same track restarts from zero; otherwise the successor
// decision is delegated through an auto-next event.
func (s *PlaybackService) handleTrackFinished() {
	s.mu.Lock()

	if s.currentTrack == nil || !s.hasPlayed {
		s.mu.Unlock()
		return
	}

	track := *s.currentTrack
	repeatOne := s.repeat == domain.RepeatOne
	s.hasPlayed = false
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackCompletedEvent(track))

	if !repeatOne {
		s.bus.Publish(domain.NewAutoNextEvent(track))
		return
	}

	s.mu.Lock()
	if err := s.engine.Seek(0); err != nil {
		s.logger.Warn("failed to rewind for repeat", slog.Any("error", err))
	}
	if err := s.engine.Play(); err != nil {
		s.mu.Unlock()
		s.logger.Warn("failed to restart track for repeat", slog.Any("error", err))
		s.bus.Publish(domain.NewTrackErrorEvent(track, err))
		return
	}
	s.hasPlayed = true
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackStartedEvent(track))
}
