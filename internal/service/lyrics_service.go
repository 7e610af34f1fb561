package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/lyrics"
	"github.com/molebeat/molebeat/internal/ports"
)

// LyricsService keeps synchronized lyrics aligned with the playback
// session. A play-start clears the previous lines and kicks off a
// cancellable background fetch; progress events move the active line.
//
// Lyrics are best effort: a track without lyrics simply has none, and
// fetch failures never surface as errors.
type LyricsService struct {
	// Dependencies (injected)
	logger   *slog.Logger
	bus      ports.EventBus
	provider ports.LyricsProvider
	timeout  time.Duration

	// State
	trackID     int64
	lines       []domain.LyricLine
	activeIndex int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	subs   []domain.SubscriptionID
}

// NewLyricsService creates a lyrics service and wires it to playback events.
func NewLyricsService(
	logger *slog.Logger,
	bus ports.EventBus,
	provider ports.LyricsProvider,
	timeout time.Duration,
) *LyricsService {
	service := &LyricsService{
		logger:      logger,
		bus:         bus,
		provider:    provider,
		timeout:     timeout,
		activeIndex: -1,
	}

	service.subs = append(service.subs,
		bus.Subscribe(domain.EventTrackStarted, func(event domain.Event) {
			started, ok := event.(domain.TrackStartedEvent)
			if !ok {
				return
			}
			service.onTrackStarted(started.Track)
		}),
		bus.Subscribe(domain.EventTrackStopped, func(event domain.Event) {
			service.clear()
		}),
		bus.Subscribe(domain.EventTrackProgress, func(event domain.Event) {
			progress, ok := event.(domain.TrackProgressEvent)
			if !ok {
				return
			}
			service.onProgress(progress.Position)
		}),
	)

	logger.Debug("lyrics service initialized")
	return service
}

// Lines returns the lyric lines of the current track, nil when none.
func (s *LyricsService) Lines() []domain.LyricLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.LyricLine(nil), s.lines...)
}

// ActiveIndex returns the index of the line being sung, -1 before the
// first line or when no lyrics are loaded.
func (s *LyricsService) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeIndex
}

// onTrackStarted resets lyric state and fetches lines for a new track.
// Resumes and restarts of the same track keep what is already loaded.
func (s *LyricsService) onTrackStarted(track domain.Track) {
	s.mu.Lock()
	if s.trackID == track.ID {
		s.mu.Unlock()
		return
	}

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.cancel = cancel
	s.trackID = track.ID
	s.lines = nil
	s.activeIndex = -1
	s.wg.Add(1)
	s.mu.Unlock()

	s.bus.Publish(domain.NewLyricsLoadedEvent(track.ID, nil))

	go func() {
		defer s.wg.Done()
		defer cancel()

		raw, err := s.provider.Fetch(ctx, track.Artist, track.Title, track.DurationSeconds())
		if err != nil {
			s.logger.Debug("lyrics fetch cancelled",
				slog.Int64("track_id", track.ID),
				slog.String("error", err.Error()))
			return
		}

		lines := lyrics.ParseLRC(raw)

		s.mu.Lock()
		if s.trackID != track.ID {
			// another track started while we were fetching
			s.mu.Unlock()
			return
		}
		s.lines = lines
		s.activeIndex = -1
		s.mu.Unlock()

		s.bus.Publish(domain.NewLyricsLoadedEvent(track.ID, lines))
	}()
}

// onProgress recomputes the active line for a playback position.
func (s *LyricsService) onProgress(position time.Duration) {
	s.mu.Lock()
	if len(s.lines) == 0 {
		s.mu.Unlock()
		return
	}

	index := lyrics.ActiveLineIndex(s.lines, position.Seconds(), s.activeIndex)
	if index == s.activeIndex {
		s.mu.Unlock()
		return
	}
	s.activeIndex = index
	s.mu.Unlock()

	s.bus.Publish(domain.NewLyricLineChangedEvent(index))
}

// clear drops lyric state when the session ends.
func (s *LyricsService) clear() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.trackID = 0
	s.lines = nil
	s.activeIndex = -1
	s.mu.Unlock()
}

// Shutdown cancels any in-flight fetch and detaches from the event bus.
func (s *LyricsService) Shutdown() {
	for _, id := range s.subs {
		s.bus.Unsubscribe(id)
	}
	s.clear()
	s.wg.Wait()
}
