// Package mock provides a mock implementation of the AudioEngine interface
// for testing and development without an audio device.
package mock

import (
	"io"
	"sync"
	"time"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

// Engine is a mock audio engine that simulates the playback graph without
// producing sound. It honors the same activation and single-stream contract
// as the real engine so services can be tested against it.
type Engine struct {
	mu sync.RWMutex

	active   bool
	status   domain.PlaybackStatus
	src      io.ReadSeekCloser
	format   string
	position time.Duration
	duration time.Duration
	volume   float64
	rate     float64
	gains    [domain.BandCount]float64

	// failure injection for tests
	activateErr error
	loadErr     error
	playErr     error

	// probeDuration is returned by Probe and used as the duration of
	// loaded streams.
	probeDuration time.Duration
}

// NewEngine creates a new mock audio engine.
func NewEngine() *Engine {
	return &Engine{
		status:        domain.StatusStopped,
		volume:        1.0,
		rate:          1.0,
		probeDuration: 3 * time.Minute,
	}
}

// Activate initializes the mock audio graph.
func (e *Engine) Activate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return nil
	}
	if e.activateErr != nil {
		return e.activateErr
	}
	e.active = true
	return nil
}

// IsActive reports whether Activate has succeeded.
func (e *Engine) IsActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Shutdown stops playback and releases the loaded stream.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closeSourceLocked()
	e.status = domain.StatusStopped
	e.active = false
	return nil
}

// Load makes src the current stream, replacing any previous one.
func (e *Engine) Load(src io.ReadSeekCloser, format string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loadErr != nil {
		return e.loadErr
	}
	if !supportedFormat(format) {
		return domain.ErrUnsupportedFormat
	}

	e.closeSourceLocked()
	e.src = src
	e.format = format
	e.position = 0
	e.duration = e.probeDuration
	e.status = domain.StatusStopped
	return nil
}

// Play starts or resumes playback of the loaded stream.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return domain.ErrNotActivated
	}
	if e.src == nil {
		return domain.ErrNoTrackLoaded
	}
	if e.playErr != nil {
		return e.playErr
	}
	e.status = domain.StatusPlaying
	return nil
}

// Pause suspends playback.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == domain.StatusPlaying {
		e.status = domain.StatusPaused
	}
	return nil
}

// Stop halts playback and discards the loaded stream.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closeSourceLocked()
	e.status = domain.StatusStopped
	e.position = 0
	e.duration = 0
	return nil
}

// Status returns the current playback status.
func (e *Engine) Status() domain.PlaybackStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Position returns the simulated playback position.
func (e *Engine) Position() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position
}

// Duration returns the duration of the loaded stream.
func (e *Engine) Duration() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.duration
}

// Seek sets the simulated playback position.
func (e *Engine) Seek(position time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.src == nil {
		return domain.ErrNoTrackLoaded
	}
	if position < 0 || position > e.duration {
		return domain.ErrInvalidPosition
	}
	e.position = position
	return nil
}

// SetVolume sets the mock output volume.
func (e *Engine) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = volume
	return nil
}

// Volume returns the last volume set, for test assertions.
func (e *Engine) Volume() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.volume
}

// SetRate sets the mock playback-rate multiplier.
func (e *Engine) SetRate(rate float64) error {
	if rate <= 0 {
		return domain.ErrInvalidRate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rate = rate
	return nil
}

// Rate returns the last rate set, for test assertions.
func (e *Engine) Rate() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rate
}

// SetBandGain records one equalizer band gain.
func (e *Engine) SetBandGain(index int, gainDB float64) error {
	if index < 0 || index >= domain.BandCount {
		return nil
	}
	if gainDB < domain.MinBandGain {
		gainDB = domain.MinBandGain
	}
	if gainDB > domain.MaxBandGain {
		gainDB = domain.MaxBandGain
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gains[index] = gainDB
	return nil
}

// BandGains returns the recorded equalizer gains.
func (e *Engine) BandGains() [domain.BandCount]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gains
}

// Spectrum returns a flat synthetic spectrum while playing, nil otherwise.
func (e *Engine) Spectrum() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.status != domain.StatusPlaying {
		return nil
	}
	spectrum := make([]float64, 32)
	for i := range spectrum {
		spectrum[i] = 0.5
	}
	return spectrum
}

// Probe returns the configured probe duration for any supported format.
func (e *Engine) Probe(src io.ReadSeeker, format string) (time.Duration, error) {
	if !supportedFormat(format) {
		return 0, domain.ErrUnsupportedFormat
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.probeDuration, nil
}

// SetProbeDuration configures the duration reported for streams.
func (e *Engine) SetProbeDuration(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.probeDuration = d
}

// SetActivateError makes the next Activate call fail with err.
func (e *Engine) SetActivateError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activateErr = err
}

// SetLoadError makes Load calls fail with err.
func (e *Engine) SetLoadError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadErr = err
}

// SetPlayError makes Play calls fail with err.
func (e *Engine) SetPlayError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playErr = err
}

// SetPosition advances the simulated position, for driving progress in tests.
func (e *Engine) SetPosition(position time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = position
}

// SimulateCompletion moves the position to the end of the stream and marks
// the stream finished, as the real engine does when the decoder drains.
func (e *Engine) SimulateCompletion() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = e.duration
	e.status = domain.StatusStopped
}

// HasStream reports whether a stream is currently loaded.
func (e *Engine) HasStream() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.src != nil
}

func (e *Engine) closeSourceLocked() {
	if e.src != nil {
		e.src.Close()
		e.src = nil
		e.format = ""
	}
}

func supportedFormat(format string) bool {
	switch format {
	case ".mp3", ".wav", ".flac", ".ogg":
		return true
	}
	return false
}

// Verify that Engine implements the AudioEngine interface
var _ ports.AudioEngine = (*Engine)(nil)
