package service

import (
	"log/slog"
	"sync"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

// EqualizerService owns the canonical equalizer settings. Band gains are
// pushed to the engine's filter chain and survive track changes; the
// spectrum analyser readout is exposed for visualization.
type EqualizerService struct {
	// Dependencies (injected)
	logger *slog.Logger
	engine ports.AudioEngine
	bus    ports.EventBus

	// State
	gains  [domain.BandCount]float64
	preset string

	mu sync.RWMutex
}

// NewEqualizerService creates a new equalizer service with flat gains.
func NewEqualizerService(logger *slog.Logger, engine ports.AudioEngine, bus ports.EventBus) *EqualizerService {
	service := &EqualizerService{
		logger: logger,
		engine: engine,
		bus:    bus,
		preset: "flat",
	}

	logger.Debug("equalizer service initialized")
	return service
}

// SetBand sets one band's gain in decibels. Out-of-range indexes are a
// no-op; gains clamp to the nominal range. Any manual change leaves the
// named-preset state.
func (s *EqualizerService) SetBand(index int, gainDB float64) error {
	if index < 0 || index >= domain.BandCount {
		return nil
	}
	if gainDB < domain.MinBandGain {
		gainDB = domain.MinBandGain
	}
	if gainDB > domain.MaxBandGain {
		gainDB = domain.MaxBandGain
	}

	s.mu.Lock()
	if err := s.engine.SetBandGain(index, gainDB); err != nil {
		s.mu.Unlock()
		return err
	}
	s.gains[index] = gainDB
	s.preset = ""
	gains := s.gains
	s.mu.Unlock()

	s.bus.Publish(domain.NewEqualizerChangedEvent(gains))
	return nil
}

// SetPreset applies a named preset across all bands at once.
func (s *EqualizerService) SetPreset(name string) error {
	gains, ok := domain.EqualizerPresets[name]
	if !ok {
		return domain.NewServiceError("EqualizerService", "SetPreset", "unknown preset "+name, nil)
	}

	s.mu.Lock()
	for i, gain := range gains {
		if err := s.engine.SetBandGain(i, gain); err != nil {
			s.mu.Unlock()
			return err
		}
		s.gains[i] = gain
	}
	s.preset = name
	applied := s.gains
	s.mu.Unlock()

	s.logger.Debug("equalizer preset applied", slog.String("preset", name))
	s.bus.Publish(domain.NewEqualizerChangedEvent(applied))
	return nil
}

// Reset restores flat gains.
func (s *EqualizerService) Reset() error {
	return s.SetPreset("flat")
}

// Bands returns the current band gains, index-aligned with Frequencies.
func (s *EqualizerService) Bands() [domain.BandCount]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.gains
}

// Preset returns the active preset name, "" after manual band edits.
func (s *EqualizerService) Preset() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.preset
}

// Frequencies returns the fixed band center frequencies in Hz.
func (s *EqualizerService) Frequencies() [domain.BandCount]float64 {
	return domain.EqualizerFrequencies
}

// Spectrum returns the analyser's frequency-bin magnitudes, nil when
// nothing is playing.
func (s *EqualizerService) Spectrum() []float64 {
	return s.engine.Spectrum()
}
