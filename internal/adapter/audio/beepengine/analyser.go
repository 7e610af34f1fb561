package beepengine

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/faiface/beep"
)

// fftSize is the analysis window length in samples. Must be a power of two.
const fftSize = 1024

// analyser is a pass-through tap that records the most recent samples
// flowing to the speaker. Spectrum computes frequency-bin magnitudes from
// that window; the audio path itself is never modified.
type analyser struct {
	streamer beep.Streamer

	mu   sync.Mutex
	ring [fftSize]float64
	pos  int
	seen int
}

// newAnalyser wraps streamer with a recording tap.
func newAnalyser(streamer beep.Streamer) *analyser {
	return &analyser{streamer: streamer}
}

// Stream passes samples through unchanged while capturing a mono mix.
func (a *analyser) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = a.streamer.Stream(samples)

	a.mu.Lock()
	for i := 0; i < n; i++ {
		a.ring[a.pos] = (samples[i][0] + samples[i][1]) / 2
		a.pos = (a.pos + 1) % fftSize
	}
	a.seen += n
	a.mu.Unlock()

	return n, ok
}

// Err returns the upstream error, if any.
func (a *analyser) Err() error {
	return a.streamer.Err()
}

// Spectrum returns fftSize/2 magnitudes normalized to 0..1, oldest-window
// Hann weighted. Returns nil until a full window has been captured.
func (a *analyser) Spectrum() []float64 {
	a.mu.Lock()
	if a.seen < fftSize {
		a.mu.Unlock()
		return nil
	}

	window := make([]complex128, fftSize)
	for i := 0; i < fftSize; i++ {
		sample := a.ring[(a.pos+i)%fftSize]
		hann := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
		window[i] = complex(sample*hann, 0)
	}
	a.mu.Unlock()

	fft(window)

	magnitudes := make([]float64, fftSize/2)
	for i := range magnitudes {
		// scale by window length so a full-scale sine lands near 1.0
		m := cmplx.Abs(window[i]) * 4 / fftSize
		if m > 1 {
			m = 1
		}
		magnitudes[i] = m
	}
	return magnitudes
}

// Reset clears the captured window, used when the playback position jumps.
func (a *analyser) Reset() {
	a.mu.Lock()
	a.ring = [fftSize]float64{}
	a.pos = 0
	a.seen = 0
	a.mu.Unlock()
}

// fft computes an in-place radix-2 Cooley-Tukey transform.
// len(x) must be a power of two.
func fft(x []complex128) {
	n := len(x)
	if n <= 1 {
		return
	}

	// bit-reversal permutation
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wl := cmplx.Rect(1, angle)
		for start := 0; start < n; start += length {
			w := complex(1, 0)
			for k := 0; k < length/2; k++ {
				u := x[start+k]
				v := x[start+k+length/2] * w
				x[start+k] = u + v
				x[start+k+length/2] = u - v
				w *= wl
			}
		}
	}
}
