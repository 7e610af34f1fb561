package beepengine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molebeat/molebeat/internal/domain"
)

// sineStreamer produces a mono sine tone on both channels.
type sineStreamer struct {
	freq       float64
	sampleRate float64
	phase      float64
}

func (s *sineStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * s.freq * s.phase / s.sampleRate)
		samples[i][0] = v
		samples[i][1] = v
		s.phase++
	}
	return len(samples), true
}

func (s *sineStreamer) Err() error { return nil }

// rms measures signal power over n samples after discarding a warmup
// window for filter state to settle.
func rms(streamer interface {
	Stream([][2]float64) (int, bool)
}, n int) float64 {
	buf := make([][2]float64, 512)
	for i := 0; i < 4; i++ {
		streamer.Stream(buf)
	}

	var sum float64
	var count int
	for count < n {
		streamer.Stream(buf)
		for _, s := range buf {
			sum += s[0] * s[0]
		}
		count += len(buf)
	}
	return math.Sqrt(sum / float64(count))
}

func TestPeakingFilter_ZeroGainIsTransparent(t *testing.T) {
	src := &sineStreamer{freq: 1000, sampleRate: 44100}
	filter := newPeakingFilter(src, 1000, 44100, 0)

	reference := math.Sqrt(2) / 2 // RMS of a unit sine
	level := rms(filter, 8192)

	assert.InDelta(t, reference, level, 0.01)
}

func TestPeakingFilter_BoostsCenterFrequency(t *testing.T) {
	src := &sineStreamer{freq: 1000, sampleRate: 44100}
	filter := newPeakingFilter(src, 1000, 44100, 6)

	reference := math.Sqrt(2) / 2
	level := rms(filter, 8192)
	gainDB := 20 * math.Log10(level/reference)

	assert.InDelta(t, 6.0, gainDB, 0.5)
}

func TestPeakingFilter_CutsCenterFrequency(t *testing.T) {
	src := &sineStreamer{freq: 310, sampleRate: 44100}
	filter := newPeakingFilter(src, 310, 44100, -12)

	reference := math.Sqrt(2) / 2
	level := rms(filter, 8192)
	gainDB := 20 * math.Log10(level/reference)

	assert.InDelta(t, -12.0, gainDB, 0.5)
}

func TestPeakingFilter_LeavesDistantFrequenciesAlone(t *testing.T) {
	src := &sineStreamer{freq: 10000, sampleRate: 44100}
	filter := newPeakingFilter(src, 60, 44100, 12)

	reference := math.Sqrt(2) / 2
	level := rms(filter, 8192)
	gainDB := 20 * math.Log10(level/reference)

	assert.InDelta(t, 0.0, gainDB, 0.5)
}

func TestPeakingFilter_ClampsGain(t *testing.T) {
	src := &sineStreamer{freq: 1000, sampleRate: 44100}
	filter := newPeakingFilter(src, 1000, 44100, 40)
	assert.Equal(t, domain.MaxBandGain, filter.Gain())

	filter.SetGain(-40)
	assert.Equal(t, domain.MinBandGain, filter.Gain())
}

func TestEqualizerChain_GainReadback(t *testing.T) {
	src := &sineStreamer{freq: 1000, sampleRate: 44100}

	var seed [domain.BandCount]float64
	seed[0] = 5
	seed[1] = 4
	seed[2] = 3
	seed[3] = 2
	chain := newEqualizerChain(src, 44100, seed)

	assert.Equal(t, seed, chain.Gains())

	chain.SetGain(9, -6)
	seed[9] = -6
	assert.Equal(t, seed, chain.Gains())

	// out-of-range indexes are ignored
	chain.SetGain(-1, 3)
	chain.SetGain(domain.BandCount, 3)
	assert.Equal(t, seed, chain.Gains())
}

func TestFFT_LocatesSineBin(t *testing.T) {
	const n = fftSize
	const bin = 37

	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(math.Sin(2*math.Pi*bin*float64(i)/n), 0)
	}
	fft(x)

	peak := 0
	var peakMag float64
	for i := 0; i < n/2; i++ {
		if m := math.Hypot(real(x[i]), imag(x[i])); m > peakMag {
			peakMag = m
			peak = i
		}
	}
	assert.Equal(t, bin, peak)
}

func TestAnalyser_RequiresFullWindow(t *testing.T) {
	src := &sineStreamer{freq: 440, sampleRate: 44100}
	tap := newAnalyser(src)

	assert.Nil(t, tap.Spectrum())

	buf := make([][2]float64, fftSize)
	tap.Stream(buf)

	spectrum := tap.Spectrum()
	require.Len(t, spectrum, fftSize/2)
	for _, m := range spectrum {
		assert.GreaterOrEqual(t, m, 0.0)
		assert.LessOrEqual(t, m, 1.0)
	}

	tap.Reset()
	assert.Nil(t, tap.Spectrum())
}

func TestAnalyser_PeaksAtToneFrequency(t *testing.T) {
	const sampleRate = 44100.0
	const tone = 1000.0

	src := &sineStreamer{freq: tone, sampleRate: sampleRate}
	tap := newAnalyser(src)

	buf := make([][2]float64, fftSize)
	tap.Stream(buf)

	spectrum := tap.Spectrum()
	require.NotNil(t, spectrum)

	peak := 0
	for i, m := range spectrum {
		if m > spectrum[peak] {
			peak = i
		}
	}

	ratio := tone / sampleRate
	expected := int(ratio * fftSize)
	assert.InDelta(t, expected, peak, 2)
}
