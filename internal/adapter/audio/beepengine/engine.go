// Package beepengine implements the playback engine on the beep audio
// library, with a peaking-filter equalizer chain and a spectrum analyser
// tap between the decoder and the speaker.
package beepengine

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

// resampleQuality trades CPU for interpolation accuracy in beep's resampler.
const resampleQuality = 4

// Engine is the real audio engine. It owns a single decoded stream and a
// single processing graph:
//
//	decoder -> equalizer chain -> analyser tap -> resampler -> ctrl -> volume -> speaker
//
// The graph is rebuilt for each loaded stream, carrying over the current
// equalizer gains, volume and playback rate. The speaker itself is opened
// once by Activate and kept until Shutdown.
type Engine struct {
	logger *slog.Logger

	// outRate is the speaker's fixed sample rate; streams at other rates
	// go through the resampler.
	outRate beep.SampleRate

	mu       sync.Mutex
	active   bool
	status   domain.PlaybackStatus
	streamer beep.StreamSeekCloser
	fileRate beep.SampleRate

	eq        *equalizerChain
	tap       *analyser
	resampler *beep.Resampler
	baseRatio float64
	ctrl      *beep.Ctrl
	vol       *effects.Volume

	gains  [domain.BandCount]float64
	volume float64
	rate   float64

	// finished is set from the speaker goroutine when the decoder drains.
	// It must stay lock-free: the speaker holds its own lock during the
	// callback, and engine methods clear the speaker while holding mu.
	finished atomic.Bool
}

// NewEngine creates an engine that will open the audio device at sampleRate
// on first activation.
func NewEngine(logger *slog.Logger, sampleRate int) *Engine {
	return &Engine{
		logger:  logger,
		outRate: beep.SampleRate(sampleRate),
		status:  domain.StatusStopped,
		volume:  1.0,
		rate:    1.0,
	}
}

// Activate opens the audio device. Idempotent.
func (e *Engine) Activate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return nil
	}

	if err := speaker.Init(e.outRate, e.outRate.N(time.Second/10)); err != nil {
		return domain.NewAudioEngineError("activate", "", "failed to open audio device", err)
	}

	e.active = true
	e.logger.Info("audio device opened", slog.Int("sample_rate", int(e.outRate)))
	return nil
}

// IsActive reports whether the audio device has been opened.
func (e *Engine) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Shutdown stops playback and releases the loaded stream.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		speaker.Clear()
	}
	e.discardStreamLocked()
	e.active = false
	return nil
}

// Load decodes src and rebuilds the processing graph around it, replacing
// any previous stream. The current equalizer gains, volume and rate carry
// over to the new graph.
func (e *Engine) Load(src io.ReadSeekCloser, format string) error {
	streamer, fileFormat, err := decode(src, format)
	if err != nil {
		if err == domain.ErrUnsupportedFormat {
			return err
		}
		return domain.NewAudioEngineError("load", format, "failed to decode stream", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		speaker.Clear()
	}
	e.discardStreamLocked()

	e.streamer = streamer
	e.fileRate = fileFormat.SampleRate

	e.eq = newEqualizerChain(streamer, float64(fileFormat.SampleRate), e.gains)
	e.tap = newAnalyser(e.eq.Output())
	e.resampler = beep.Resample(resampleQuality, fileFormat.SampleRate, e.outRate, e.tap)
	e.baseRatio = float64(fileFormat.SampleRate) / float64(e.outRate)
	e.resampler.SetRatio(e.baseRatio * e.rate)
	e.ctrl = &beep.Ctrl{Streamer: e.resampler, Paused: true}
	e.vol = &effects.Volume{
		Streamer: e.ctrl,
		Base:     2,
		Volume:   volumeToGain(e.volume),
		Silent:   e.volume == 0,
	}

	e.status = domain.StatusStopped
	e.finished.Store(false)
	return nil
}

// Play starts or resumes playback of the loaded stream.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return domain.ErrNotActivated
	}
	if e.streamer == nil {
		return domain.ErrNoTrackLoaded
	}

	// a drained stream is no longer queued on the speaker and must be
	// resubmitted; callers seek back before replaying
	if e.finished.Load() {
		e.finished.Store(false)
		e.ctrl.Paused = false
		e.submitLocked()
		e.status = domain.StatusPlaying
		return nil
	}

	switch e.status {
	case domain.StatusPlaying:
		return nil
	case domain.StatusPaused:
		speaker.Lock()
		e.ctrl.Paused = false
		speaker.Unlock()
	default:
		e.ctrl.Paused = false
		e.submitLocked()
	}

	e.status = domain.StatusPlaying
	return nil
}

// submitLocked queues the graph's output on the speaker. Caller holds mu.
func (e *Engine) submitLocked() {
	speaker.Play(beep.Seq(e.vol, beep.Callback(func() {
		e.finished.Store(true)
	})))
}

// Pause suspends playback, preserving the position.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != domain.StatusPlaying {
		return nil
	}

	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	e.status = domain.StatusPaused
	return nil
}

// Stop halts playback and discards the loaded stream.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		speaker.Clear()
	}
	e.discardStreamLocked()
	return nil
}

// Status returns the current playback status.
func (e *Engine) Status() domain.PlaybackStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == domain.StatusPlaying && e.finished.Load() {
		return domain.StatusStopped
	}
	return e.status
}

// Position returns the playback position within the loaded stream.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := e.streamer.Position()
	speaker.Unlock()
	return e.fileRate.D(pos)
}

// Duration returns the total duration of the loaded stream.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return 0
	}
	return e.fileRate.D(e.streamer.Len())
}

// Seek sets the playback position.
func (e *Engine) Seek(position time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return domain.ErrNoTrackLoaded
	}
	if position < 0 || position > e.fileRate.D(e.streamer.Len()) {
		return domain.ErrInvalidPosition
	}

	speaker.Lock()
	err := e.streamer.Seek(e.fileRate.N(position))
	speaker.Unlock()
	if err != nil {
		return domain.NewAudioEngineError("seek", "", "failed to seek stream", err)
	}

	// the analyser window still holds pre-seek audio
	e.tap.Reset()
	return nil
}

// SetVolume sets the output volume (0.0 to 1.0).
func (e *Engine) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = volume
	if e.vol != nil {
		speaker.Lock()
		e.vol.Volume = volumeToGain(volume)
		e.vol.Silent = volume == 0
		speaker.Unlock()
	}
	return nil
}

// SetRate sets the playback-rate multiplier.
func (e *Engine) SetRate(rate float64) error {
	if rate <= 0 {
		return domain.ErrInvalidRate
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.rate = rate
	if e.resampler != nil {
		speaker.Lock()
		e.resampler.SetRatio(e.baseRatio * rate)
		speaker.Unlock()
	}
	return nil
}

// SetBandGain sets one equalizer band's gain in decibels.
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
	if e.eq != nil {
		speaker.Lock()
		e.eq.SetGain(index, gainDB)
		speaker.Unlock()
	}
	return nil
}

// BandGains returns the gains currently applied to the filter chain.
func (e *Engine) BandGains() [domain.BandCount]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gains
}

// Spectrum returns frequency-bin magnitudes from the analyser tap.
func (e *Engine) Spectrum() []float64 {
	e.mu.Lock()
	tap := e.tap
	playing := e.status == domain.StatusPlaying && !e.finished.Load()
	e.mu.Unlock()

	if tap == nil || !playing {
		return nil
	}
	return tap.Spectrum()
}

// Probe decodes src just enough to report its duration. The caller keeps
// ownership of src.
func (e *Engine) Probe(src io.ReadSeeker, format string) (time.Duration, error) {
	streamer, fileFormat, err := decode(readSeekNopCloser{src}, format)
	if err != nil {
		if err == domain.ErrUnsupportedFormat {
			return 0, err
		}
		return 0, domain.NewAudioEngineError("probe", format, "failed to decode stream", err)
	}
	defer streamer.Close()

	return fileFormat.SampleRate.D(streamer.Len()), nil
}

// discardStreamLocked closes and clears the loaded stream. Caller holds mu.
func (e *Engine) discardStreamLocked() {
	if e.streamer != nil {
		if err := e.streamer.Close(); err != nil {
			e.logger.Warn("failed to close audio stream", slog.String("error", err.Error()))
		}
		e.streamer = nil
	}
	e.eq = nil
	e.tap = nil
	e.resampler = nil
	e.ctrl = nil
	e.vol = nil
	e.status = domain.StatusStopped
	e.finished.Store(false)
}

// volumeToGain maps the 0..1 volume scale onto the exponential gain the
// volume effect expects with base 2.
func volumeToGain(volume float64) float64 {
	return volume*2 - 1
}

// Verify that Engine implements the AudioEngine interface
var _ ports.AudioEngine = (*Engine)(nil)
