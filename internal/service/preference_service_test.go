package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molebeat/molebeat/internal/adapter/eventbus"
	"github.com/molebeat/molebeat/internal/adapter/repository/memory"
	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/logger"
	"github.com/molebeat/molebeat/internal/testutil"
	"github.com/molebeat/molebeat/internal/worker"
)

// spyShell records mini-player requests.
type spyShell struct {
	mu    sync.Mutex
	calls []bool
}

func (s *spyShell) SetMiniPlayer(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, enabled)
}

func (s *spyShell) NotifyUpdateStatus(string) {}

func (s *spyShell) miniPlayerCalls() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.calls...)
}

func newTestPreferences(t *testing.T) (*PreferenceService, *memory.PreferencesRepository, *worker.Writer, *spyShell, *eventbus.SyncEventBus) {
	t.Helper()

	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	prefs := memory.NewPreferencesRepository()
	shell := &spyShell{}

	writer := worker.NewWriter(memory.NewTrackRepository(), memory.NewPlaylistRepository(), prefs, log)
	writer.Start()

	service, err := NewPreferenceService(log, bus, prefs, writer, shell)
	require.NoError(t, err)

	t.Cleanup(func() {
		writer.Stop()
		bus.Close()
	})

	return service, prefs, writer, shell, bus
}

func TestPreferenceService_DefaultTheme(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, _, _, _, _ := newTestPreferences(t)

	assert.Equal(t, DefaultThemeColor, service.Theme())
}

func TestPreferenceService_SetThemePersists(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, prefs, writer, _, bus := newTestPreferences(t)

	var changed domain.ThemeChangedEvent
	bus.Subscribe(domain.EventThemeChanged, func(e domain.Event) {
		changed = e.(domain.ThemeChangedEvent)
	})

	service.SetTheme("#22c55e")
	assert.Equal(t, "#22c55e", service.Theme())
	assert.Equal(t, "#22c55e", changed.Color)

	writer.Flush()
	stored, err := prefs.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, "#22c55e", stored)
}

func TestPreferenceService_SetSameThemeIsNoOp(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, _, _, _, bus := newTestPreferences(t)

	events := 0
	bus.Subscribe(domain.EventThemeChanged, func(domain.Event) { events++ })

	service.SetTheme(DefaultThemeColor)
	assert.Zero(t, events)
}

func TestPreferenceService_HydratesStoredTheme(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	log := logger.NewTestLogger()
	bus := eventbus.NewSyncEventBus()
	prefs := memory.NewPreferencesRepository()
	require.NoError(t, prefs.SaveTheme("#f97316"))

	writer := worker.NewWriter(memory.NewTrackRepository(), memory.NewPlaylistRepository(), prefs, log)
	writer.Start()

	service, err := NewPreferenceService(log, bus, prefs, writer, &spyShell{})
	require.NoError(t, err)
	t.Cleanup(func() {
		writer.Stop()
		bus.Close()
	})

	assert.Equal(t, "#f97316", service.Theme())
}

func TestPreferenceService_ToggleMiniPlayer(t *testing.T) {
	testutil.VerifyNoLeaksOnCleanup(t)

	service, _, _, shell, bus := newTestPreferences(t)

	var toggled domain.MiniPlayerToggledEvent
	bus.Subscribe(domain.EventMiniPlayerToggled, func(e domain.Event) {
		toggled = e.(domain.MiniPlayerToggledEvent)
	})

	assert.True(t, service.ToggleMiniPlayer())
	assert.True(t, service.MiniPlayer())
	assert.True(t, toggled.Enabled)

	assert.False(t, service.ToggleMiniPlayer())
	assert.False(t, service.MiniPlayer())

	assert.Equal(t, []bool{true, false}, shell.miniPlayerCalls())
}
