// Package ports defines interfaces for dependency inversion.
// These interfaces keep the core business logic independent of the audio,
// storage and network adapters.
package ports

import (
	"io"
	"time"

	"github.com/molebeat/molebeat/internal/domain"
)

// AudioEngine is the interface for the playback engine.
//
// The engine owns exactly one audio stream and one processing graph
// (equalizer chain + spectrum analyser); loading a new source replaces the
// previous one. The graph is constructed with the engine but stays inactive
// until Activate is called by the first user playback command; it is never
// torn down afterwards.
//
// Implementations must be thread-safe as they may be called from multiple
// goroutines.
type AudioEngine interface {
	// Activate performs the one-time audio-output initialization.
	// It is idempotent: calling it on an active engine is a no-op.
	//
	// Returns an error if the audio device cannot be opened.
	Activate() error

	// IsActive reports whether the audio graph has been activated.
	IsActive() bool

	// Shutdown stops playback and releases engine resources.
	Shutdown() error

	// Load decodes src and makes it the engine's current stream, replacing
	// any previous one. format is the file extension (".mp3", ".flac", ...).
	// The engine takes ownership of src and closes it on the next Load,
	// Stop or Shutdown.
	//
	// Returns domain.ErrUnsupportedFormat for unknown formats.
	Load(src io.ReadSeekCloser, format string) error

	// Play starts or resumes playback of the loaded stream.
	//
	// Returns domain.ErrNoTrackLoaded if no stream is loaded and
	// domain.ErrNotActivated if the graph is inactive.
	Play() error

	// Pause suspends playback, preserving the position.
	Pause() error

	// Stop halts playback and discards the loaded stream.
	Stop() error

	// Status returns the current playback status.
	Status() domain.PlaybackStatus

	// Position returns the playback position within the loaded stream.
	Position() time.Duration

	// Duration returns the total duration of the loaded stream (0 if none).
	Duration() time.Duration

	// Seek sets the playback position. Positions outside [0, Duration]
	// return domain.ErrInvalidPosition.
	Seek(position time.Duration) error

	// SetVolume sets the output volume (0.0 silent to 1.0 full).
	SetVolume(volume float64) error

	// SetRate sets the playback-rate multiplier (must be positive).
	SetRate(rate float64) error

	// SetBandGain sets one equalizer band's gain in decibels.
	// The band index maps to domain.EqualizerFrequencies; out-of-range
	// indexes are a no-op. Gains are clamped to the nominal dB range.
	SetBandGain(index int, gainDB float64) error

	// BandGains returns the gains currently applied to the filter chain.
	BandGains() [domain.BandCount]float64

	// Spectrum returns frequency-bin magnitudes (0..1) from the analyser
	// tap for visualization. The analyser never affects the audio path.
	// Returns nil when nothing is playing.
	Spectrum() []float64

	// Probe decodes just enough of src to report its duration, without
	// touching the loaded stream. Used at import time.
	Probe(src io.ReadSeeker, format string) (time.Duration, error)
}
