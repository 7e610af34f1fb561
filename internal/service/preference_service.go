package service

import (
	"log/slog"
	"sync"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
	"github.com/molebeat/molebeat/internal/worker"
)

// DefaultThemeColor is the accent color used before the user picks one.
const DefaultThemeColor = "#a855f7"

// PreferenceService owns presentation preferences: the accent theme color
// and the mini-player window mode. The theme persists across launches; the
// window mode only notifies the host shell.
type PreferenceService struct {
	// Dependencies (injected)
	logger *slog.Logger
	bus    ports.EventBus
	prefs  ports.PreferencesRepository
	writer *worker.Writer
	shell  ports.Shell

	// State
	theme      string
	miniPlayer bool

	mu sync.RWMutex
}

// NewPreferenceService creates a preference service, hydrating the theme
// from the store.
func NewPreferenceService(
	logger *slog.Logger,
	bus ports.EventBus,
	prefs ports.PreferencesRepository,
	writer *worker.Writer,
	shell ports.Shell,
) (*PreferenceService, error) {
	theme, err := prefs.LoadTheme()
	if err != nil {
		return nil, domain.NewServiceError("PreferenceService", "hydrate", "failed to load theme", err)
	}
	if theme == "" {
		theme = DefaultThemeColor
	}

	service := &PreferenceService{
		logger: logger,
		bus:    bus,
		prefs:  prefs,
		writer: writer,
		shell:  shell,
		theme:  theme,
	}

	logger.Debug("preference service initialized", slog.String("theme", theme))
	return service, nil
}

// Theme returns the accent theme color.
func (s *PreferenceService) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.theme
}

// SetTheme changes and persists the accent theme color.
func (s *PreferenceService) SetTheme(color string) {
	s.mu.Lock()
	if s.theme == color {
		s.mu.Unlock()
		return
	}
	s.theme = color
	s.mu.Unlock()

	s.writer.SaveTheme(color)
	s.bus.Publish(domain.NewThemeChangedEvent(color))
}

// MiniPlayer reports whether the compact window mode is active.
func (s *PreferenceService) MiniPlayer() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.miniPlayer
}

// ToggleMiniPlayer flips the compact window mode and notifies the shell.
func (s *PreferenceService) ToggleMiniPlayer() bool {
	s.mu.Lock()
	s.miniPlayer = !s.miniPlayer
	enabled := s.miniPlayer
	s.mu.Unlock()

	s.shell.SetMiniPlayer(enabled)
	s.bus.Publish(domain.NewMiniPlayerToggledEvent(enabled))
	return enabled
}
