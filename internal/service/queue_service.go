package service

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

// restartThreshold is how far into a track Previous restarts it instead of
// moving to the predecessor.
const restartThreshold = 3 * time.Second

// TrackSource supplies the ordered track list navigation runs over.
type TrackSource interface {
	Tracks() []domain.Track
}

// QueueService decides which track plays next. The playable sequence is
// the library order; shuffle draws a uniformly random index (immediate
// repeats allowed), and the repeat mode decides what happens at the ends.
//
// The service also subscribes to auto-next events, so natural track
// completion advances the queue without a user command.
type QueueService struct {
	logger   *slog.Logger
	bus      ports.EventBus
	playback *PlaybackService
	source   TrackSource

	mu    sync.Mutex
	subID domain.SubscriptionID
	randn func(n int) int
}

// NewQueueService creates a new queue service and wires it to auto-next
// events.
func NewQueueService(
	logger *slog.Logger,
	bus ports.EventBus,
	playback *PlaybackService,
	source TrackSource,
) *QueueService {
	service := &QueueService{
		logger:   logger,
		bus:      bus,
		playback: playback,
		source:   source,
		randn:    rand.Intn,
	}

	service.subID = bus.Subscribe(domain.EventAutoNext, func(event domain.Event) {
		if err := service.advance(true); err != nil {
			logger.Debug("auto-next did not advance", slog.Any("error", err))
		}
	})

	logger.Debug("queue service initialized")
	return service
}

// Next moves playback to the successor track. Without a current track it
// does nothing.
//
// With repeat off, calling Next on the last track stops playback and keeps
// the current track loaded.
func (s *QueueService) Next() error {
	return s.advance(false)
}

// advance implements Next for both user commands and auto-next. They differ
// only at the repeat-off library end: a user command pauses the session,
// while after natural completion there is nothing left to pause.
func (s *QueueService) advance(auto bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracks := s.source.Tracks()
	if len(tracks) == 0 {
		return domain.ErrLibraryEmpty
	}

	state := s.playback.State()

	// navigation is relative to the current track; without one there is
	// nothing to advance from
	if state.CurrentTrack == nil {
		return nil
	}

	if s.playback.Shuffling() {
		return s.playIndex(tracks, s.randn(len(tracks)), state)
	}

	index := currentIndex(tracks, state.CurrentTrack)
	if index < 0 {
		return s.playIndex(tracks, 0, state)
	}

	atEnd := index == len(tracks)-1
	if atEnd && s.playback.Repeat() != domain.RepeatAll {
		if auto {
			return nil
		}
		if err := s.playback.Pause(); err != nil {
			s.logger.Debug("nothing to pause at library end", slog.Any("error", err))
		}
		return nil
	}

	return s.playIndex(tracks, (index+1)%len(tracks), state)
}

// Previous moves playback to the predecessor track, or restarts the current
// track when more than a few seconds have already played. Without a current
// track it does nothing.
func (s *QueueService) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracks := s.source.Tracks()
	if len(tracks) == 0 {
		return domain.ErrLibraryEmpty
	}

	state := s.playback.State()

	if state.CurrentTrack == nil {
		return nil
	}

	if state.Position > restartThreshold {
		return s.playback.Restart()
	}

	if s.playback.Shuffling() {
		return s.playIndex(tracks, s.randn(len(tracks)), state)
	}

	index := currentIndex(tracks, state.CurrentTrack)
	if index < 0 {
		return s.playIndex(tracks, 0, state)
	}

	if index == 0 && s.playback.Repeat() != domain.RepeatAll {
		return s.playIndex(tracks, 0, state)
	}

	return s.playIndex(tracks, (index-1+len(tracks))%len(tracks), state)
}

// playIndex starts the track at index, restarting in place when it is
// already the current one.
func (s *QueueService) playIndex(tracks []domain.Track, index int, state domain.PlaybackState) error {
	track := tracks[index]
	if state.CurrentTrack != nil && state.CurrentTrack.ID == track.ID {
		return s.playback.Restart()
	}
	return s.playback.Play(track)
}

// Shutdown detaches the service from the event bus.
func (s *QueueService) Shutdown() {
	s.bus.Unsubscribe(s.subID)
}

// currentIndex locates the current track in the sequence, -1 when absent.
func currentIndex(tracks []domain.Track, current *domain.Track) int {
	if current == nil {
		return -1
	}
	for i, track := range tracks {
		if track.ID == current.ID {
			return i
		}
	}
	return -1
}
