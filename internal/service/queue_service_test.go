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

// sliceSource is a fixed track sequence for navigation tests.
type sliceSource struct {
	tracks []domain.Track
}

func (s *sliceSource) Tracks() []domain.Track {
	return append([]domain.Track(nil), s.tracks...)
}

func newTestQueue(t *testing.T, trackCount int) (*QueueService, *PlaybackService, *mock.Engine, *sliceSource) {
	t.Helper()

	engine := mock.NewEngine()
	bus := eventbus.NewSyncEventBus()
	repo := memory.NewTrackRepository()

	source := &sliceSource{}
	for i := 0; i < trackCount; i++ {
		source.tracks = append(source.tracks, storeTestTrack(t, repo, int64(i+1), "Track"))
	}

	playback := NewPlaybackService(logger.NewTestLogger(), engine, bus, repo)
	queue := NewQueueService(logger.NewTestLogger(), bus, playback, source)
	t.Cleanup(func() {
		queue.Shutdown()
		require.NoError(t, playback.Shutdown())
		bus.Close()
	})

	return queue, playback, engine, source
}

func currentID(t *testing.T, playback *PlaybackService) int64 {
	t.Helper()

	state := playback.State()
	require.NotNil(t, state.CurrentTrack)
	return state.CurrentTrack.ID
}

func TestQueueService_NextAdvancesInOrder(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, _, source := newTestQueue(t, 3)

	require.NoError(t, playback.Play(source.tracks[0]))
	require.NoError(t, queue.Next())
	assert.Equal(t, int64(2), currentID(t, playback))

	require.NoError(t, queue.Next())
	assert.Equal(t, int64(3), currentID(t, playback))
}

func TestQueueService_NextWithoutCurrentIsNoOp(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, engine, _ := newTestQueue(t, 1)

	require.NoError(t, queue.Next())

	// nothing started, nothing loaded
	assert.Nil(t, playback.State().CurrentTrack)
	assert.False(t, engine.HasStream())
	assert.Equal(t, domain.StatusStopped, playback.State().Status)
}

func TestQueueService_PreviousWithoutCurrentIsNoOp(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, _, _ := newTestQueue(t, 3)

	require.NoError(t, queue.Previous())
	assert.Nil(t, playback.State().CurrentTrack)
}

func TestQueueService_ShuffledNextWithoutCurrentIsNoOp(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, _, _ := newTestQueue(t, 3)
	playback.ToggleShuffle()
	queue.randn = func(int) int {
		t.Fatal("no random draw expected without a current track")
		return 0
	}

	require.NoError(t, queue.Next())
	assert.Nil(t, playback.State().CurrentTrack)
}

func TestQueueService_NextOnEmptyLibrary(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, _, _, _ := newTestQueue(t, 0)

	assert.ErrorIs(t, queue.Next(), domain.ErrLibraryEmpty)
	assert.ErrorIs(t, queue.Previous(), domain.ErrLibraryEmpty)
}

func TestQueueService_RepeatAllWrapsAround(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, _, source := newTestQueue(t, 3)
	playback.SetRepeat(domain.RepeatAll)

	require.NoError(t, playback.Play(source.tracks[0]))

	// a full cycle visits every track once and returns to the start
	seen := []int64{currentID(t, playback)}
	for i := 0; i < 3; i++ {
		require.NoError(t, queue.Next())
		seen = append(seen, currentID(t, playback))
	}
	assert.Equal(t, []int64{1, 2, 3, 1}, seen)
}

func TestQueueService_RepeatOffStopsAtEnd(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, _, source := newTestQueue(t, 3)

	require.NoError(t, playback.Play(source.tracks[2]))
	require.NoError(t, queue.Next())

	// the current track stays loaded and playback is no longer running
	state := playback.State()
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, int64(3), state.CurrentTrack.ID)
	assert.NotEqual(t, domain.StatusPlaying, state.Status)
}

func TestQueueService_PreviousMovesBack(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, _, source := newTestQueue(t, 3)

	require.NoError(t, playback.Play(source.tracks[1]))
	require.NoError(t, queue.Previous())
	assert.Equal(t, int64(1), currentID(t, playback))
}

func TestQueueService_PreviousRestartsAfterThreshold(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, engine, source := newTestQueue(t, 3)

	require.NoError(t, playback.Play(source.tracks[1]))
	engine.SetPosition(10 * time.Second)

	// deep into the track, previous restarts it instead of moving back
	require.NoError(t, queue.Previous())
	assert.Equal(t, int64(2), currentID(t, playback))
	assert.Equal(t, time.Duration(0), engine.Position())
	assert.Equal(t, domain.StatusPlaying, playback.State().Status)
}

func TestQueueService_PreviousAtFirstRestartsWithRepeatOff(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, engine, source := newTestQueue(t, 3)

	require.NoError(t, playback.Play(source.tracks[0]))
	engine.SetPosition(time.Second)

	require.NoError(t, queue.Previous())
	assert.Equal(t, int64(1), currentID(t, playback))
	assert.Equal(t, time.Duration(0), engine.Position())
}

func TestQueueService_PreviousAtFirstWrapsWithRepeatAll(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, engine, source := newTestQueue(t, 3)
	playback.SetRepeat(domain.RepeatAll)

	require.NoError(t, playback.Play(source.tracks[0]))
	engine.SetPosition(time.Second)

	require.NoError(t, queue.Previous())
	assert.Equal(t, int64(3), currentID(t, playback))
}

func TestQueueService_ShuffleDrawsRandomIndex(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	queue, playback, _, source := newTestQueue(t, 5)
	playback.ToggleShuffle()

	queue.randn = func(n int) int {
		require.Equal(t, 5, n)
		return 3
	}

	require.NoError(t, playback.Play(source.tracks[0]))
	require.NoError(t, queue.Next())
	assert.Equal(t, int64(4), currentID(t, playback))

	// shuffle may land on the current track; it restarts in place
	queue.randn = func(int) int { return 3 }
	require.NoError(t, queue.Next())
	assert.Equal(t, int64(4), currentID(t, playback))
	assert.Equal(t, domain.StatusPlaying, playback.State().Status)
}

func TestQueueService_AutoNextAdvances(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	_, playback, engine, source := newTestQueue(t, 3)

	require.NoError(t, playback.Play(source.tracks[0]))
	engine.SimulateCompletion()

	require.Eventually(t, func() bool {
		state := playback.State()
		return state.CurrentTrack != nil && state.CurrentTrack.ID == 2 &&
			state.Status == domain.StatusPlaying
	}, 3*time.Second, 50*time.Millisecond, "queue did not advance after completion")
}

func TestQueueService_AutoNextAtEndWithRepeatOffStops(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	_, playback, engine, source := newTestQueue(t, 2)

	require.NoError(t, playback.Play(source.tracks[1]))
	engine.SimulateCompletion()

	// give the update routine time to run completion handling
	time.Sleep(time.Second)

	state := playback.State()
	require.NotNil(t, state.CurrentTrack)
	assert.Equal(t, int64(2), state.CurrentTrack.ID)
	assert.NotEqual(t, domain.StatusPlaying, state.Status)
}
