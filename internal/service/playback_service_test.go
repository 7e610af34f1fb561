package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molebeat/molebeat/internal/adapter/audio/mock"
	"github.com/molebeat/molebeat/internal/adapter/eventbus"
	"github.com/molebeat/molebeat/internal/adapter/repository/memory"
	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/logger"
	"github.com/molebeat/molebeat/internal/testutil"
)

// Helper to create a test playback service over an in-memory library.
func newTestPlaybackService(t *testing.T) (*PlaybackService, *mock.Engine, *eventbus.SyncEventBus, *memory.TrackRepository) {
	t.Helper()

	engine := mock.NewEngine()
	bus := eventbus.NewSyncEventBus()
	repo := memory.NewTrackRepository()

	service := NewPlaybackService(logger.NewTestLogger(), engine, bus, repo)
	t.Cleanup(func() {
		require.NoError(t, service.Shutdown())
		bus.Close()
	})

	return service, engine, bus, repo
}

// Helper to create and store a playable test track.
func storeTestTrack(t *testing.T, repo *memory.TrackRepository, id int64, title string) domain.Track {
	t.Helper()

	track := domain.Track{
		ID:       id,
		Title:    title,
		Artist:   "Test Artist",
		Album:    "Test Album",
		Duration: "3:00",
		Format:   ".mp3",
		HasAudio: true,
		AddedAt:  time.Now(),
	}
	require.NoError(t, repo.Save(&track, []byte("audio"), nil))
	return track
}

func TestPlaybackService_Play(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, engine, bus, repo := newTestPlaybackService(t)
	track := storeTestTrack(t, repo, 1, "Test Song")

	var started domain.TrackStartedEvent
	bus.Subscribe(domain.EventTrackStarted, func(e domain.Event) {
		started = e.(domain.TrackStartedEvent)
	})

	require.NoError(t, service.Play(track))

	// the audio device is activated by the first play command
	assert.True(t, engine.IsActive())

	state := service.State()
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, track.ID, state.CurrentTrack.ID)
	assert.Equal(t, domain.StatusPlaying, state.Status)

	// play statistics advance on start
	assert.Equal(t, 1, state.CurrentTrack.PlayCount)
	assert.False(t, state.CurrentTrack.LastPlayed.IsZero())

	assert.Equal(t, track.ID, started.Track.ID)
}

func TestPlaybackService_PlayWithoutAudioFailsExplicitly(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, _, bus, repo := newTestPlaybackService(t)

	silent := domain.Track{ID: 1, Title: "Seed", Format: ".mp3", AddedAt: time.Now()}
	require.NoError(t, repo.Save(&silent, nil, nil))

	var errorEvent domain.TrackErrorEvent
	bus.Subscribe(domain.EventTrackError, func(e domain.Event) {
		errorEvent = e.(domain.TrackErrorEvent)
	})

	err := service.Play(silent)
	assert.ErrorIs(t, err, domain.ErrAudioUnavailable)
	assert.ErrorIs(t, errorEvent.Error, domain.ErrAudioUnavailable)

	// the session keeps its previous state on failure
	state := service.State()
	assert.Nil(t, state.CurrentTrack)
	assert.Equal(t, domain.StatusStopped, state.Status)
}

func TestPlaybackService_PlayFailureKeepsPreviousTrack(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, engine, _, repo := newTestPlaybackService(t)
	playing := storeTestTrack(t, repo, 1, "Playing")
	broken := storeTestTrack(t, repo, 2, "Broken")

	require.NoError(t, service.Play(playing))

	engine.SetLoadError(domain.ErrPlaybackFailed)
	err := service.Play(broken)
	assert.ErrorIs(t, err, domain.ErrPlaybackFailed)

	state := service.State()
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, playing.ID, state.CurrentTrack.ID)
}

func TestPlaybackService_PlaySameTrackToggles(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, _, bus, repo := newTestPlaybackService(t)
	track := storeTestTrack(t, repo, 1, "Test Song")

	var paused, started int
	bus.Subscribe(domain.EventTrackPaused, func(domain.Event) { paused++ })
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { started++ })

	require.NoError(t, service.Play(track))
	assert.Equal(t, domain.StatusPlaying, service.State().Status)

	// same track pauses instead of restarting
	require.NoError(t, service.Play(track))
	assert.Equal(t, domain.StatusPaused, service.State().Status)
	assert.Equal(t, 1, paused)

	// and resumes on the next toggle
	require.NoError(t, service.Play(track))
	assert.Equal(t, domain.StatusPlaying, service.State().Status)
	assert.Equal(t, 2, started)
}

func TestPlaybackService_Stop(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, engine, bus, repo := newTestPlaybackService(t)
	track := storeTestTrack(t, repo, 1, "Test Song")

	var stopped domain.TrackStoppedEvent
	bus.Subscribe(domain.EventTrackStopped, func(e domain.Event) {
		stopped = e.(domain.TrackStoppedEvent)
	})

	require.NoError(t, service.Play(track))
	require.NoError(t, service.Stop())

	state := service.State()
	assert.Nil(t, state.CurrentTrack)
	assert.Equal(t, domain.StatusStopped, state.Status)
	assert.False(t, engine.HasStream())
	assert.Equal(t, track.ID, stopped.Track.ID)
}

func TestPlaybackService_SetVolume(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, engine, bus, _ := newTestPlaybackService(t)

	var event domain.VolumeChangedEvent
	bus.Subscribe(domain.EventVolumeChanged, func(e domain.Event) {
		event = e.(domain.VolumeChangedEvent)
	})

	require.NoError(t, service.SetVolume(0.4))
	assert.Equal(t, 0.4, service.Volume())
	assert.Equal(t, 0.4, engine.Volume())
	assert.Equal(t, 0.4, event.Volume)

	assert.ErrorIs(t, service.SetVolume(1.5), domain.ErrInvalidVolume)
	assert.ErrorIs(t, service.SetVolume(-0.1), domain.ErrInvalidVolume)
	assert.Equal(t, 0.4, service.Volume())
}

func TestPlaybackService_SetRate(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, engine, _, repo := newTestPlaybackService(t)
	track := storeTestTrack(t, repo, 1, "Test Song")

	require.NoError(t, service.SetRate(1.5))
	assert.Equal(t, 1.5, service.Rate())

	assert.ErrorIs(t, service.SetRate(0), domain.ErrInvalidRate)
	assert.ErrorIs(t, service.SetRate(-1), domain.ErrInvalidRate)

	// the rate survives into the next loaded stream
	require.NoError(t, service.Play(track))
	assert.Equal(t, 1.5, engine.Rate())
}

func TestPlaybackService_Seek(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, _, _, repo := newTestPlaybackService(t)
	track := storeTestTrack(t, repo, 1, "Test Song")

	assert.ErrorIs(t, service.Seek(10*time.Second), domain.ErrNoTrackLoaded)

	require.NoError(t, service.Play(track))
	require.NoError(t, service.Seek(30*time.Second))
	assert.Equal(t, 30*time.Second, service.State().Position)

	assert.ErrorIs(t, service.Seek(-time.Second), domain.ErrInvalidPosition)
	assert.ErrorIs(t, service.Seek(time.Hour), domain.ErrInvalidPosition)
}

func TestPlaybackService_ShuffleAndRepeat(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, _, bus, _ := newTestPlaybackService(t)

	var shuffle domain.ShuffleToggledEvent
	var repeat domain.RepeatModeChangedEvent
	bus.Subscribe(domain.EventShuffleToggled, func(e domain.Event) {
		shuffle = e.(domain.ShuffleToggledEvent)
	})
	bus.Subscribe(domain.EventRepeatModeChanged, func(e domain.Event) {
		repeat = e.(domain.RepeatModeChangedEvent)
	})

	service.ToggleShuffle()
	assert.True(t, service.Shuffling())
	assert.True(t, shuffle.Enabled)

	service.SetRepeat(domain.RepeatAll)
	assert.Equal(t, domain.RepeatAll, service.Repeat())
	assert.Equal(t, domain.RepeatAll, repeat.Mode)
}

func TestPlaybackService_CompletionPublishesAutoNext(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, engine, bus, repo := newTestPlaybackService(t)
	track := storeTestTrack(t, repo, 1, "Test Song")

	autoNext := make(chan domain.AutoNextEvent, 1)
	bus.Subscribe(domain.EventAutoNext, func(e domain.Event) {
		select {
		case autoNext <- e.(domain.AutoNextEvent):
		default:
		}
	})

	require.NoError(t, service.Play(track))
	engine.SimulateCompletion()

	select {
	case event := <-autoNext:
		assert.Equal(t, track.ID, event.Track.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("auto-next event not published after track completion")
	}
}

func TestPlaybackService_CompletionWithRepeatOneRestarts(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, engine, bus, repo := newTestPlaybackService(t)
	track := storeTestTrack(t, repo, 1, "Test Song")

	var autoNextSeen bool
	bus.Subscribe(domain.EventAutoNext, func(domain.Event) { autoNextSeen = true })

	service.SetRepeat(domain.RepeatOne)
	require.NoError(t, service.Play(track))
	engine.SimulateCompletion()

	require.Eventually(t, func() bool {
		return service.State().Status == domain.StatusPlaying
	}, 3*time.Second, 50*time.Millisecond, "track did not restart with repeat-one")

	assert.Equal(t, time.Duration(0), engine.Position())
	assert.False(t, autoNextSeen)
}

func TestPlaybackService_ClearIfCurrent(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, _, _, repo := newTestPlaybackService(t)
	track := storeTestTrack(t, repo, 1, "Test Song")
	other := storeTestTrack(t, repo, 2, "Other Song")

	require.NoError(t, service.Play(track))

	// deleting an unrelated track leaves the session alone
	service.ClearIfCurrent(other.ID)
	assert.NotNil(t, service.State().CurrentTrack)

	service.ClearIfCurrent(track.ID)
	state := service.State()
	assert.Nil(t, state.CurrentTrack)
	assert.Equal(t, domain.StatusStopped, state.Status)
}
