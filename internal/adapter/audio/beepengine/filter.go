package beepengine

import (
	"math"

	"github.com/faiface/beep"

	"github.com/molebeat/molebeat/internal/domain"
)

// peakingFilter is a second-order peaking equalizer stage (RBJ Audio EQ
// Cookbook). One stage boosts or cuts a band around its center frequency
// and passes everything else through unchanged at 0 dB gain.
//
// Coefficient updates are not synchronized internally; the engine mutates
// gains under the speaker lock.
type peakingFilter struct {
	streamer beep.Streamer

	freq       float64
	sampleRate float64
	gainDB     float64

	b0, b1, b2 float64
	a1, a2     float64

	// direct form II transposed state, per channel
	z1, z2 [2]float64
}

// newPeakingFilter creates a filter stage centered at freq Hz.
func newPeakingFilter(streamer beep.Streamer, freq, sampleRate, gainDB float64) *peakingFilter {
	f := &peakingFilter{
		streamer:   streamer,
		freq:       freq,
		sampleRate: sampleRate,
	}
	f.SetGain(gainDB)
	return f
}

// SetGain updates the stage gain in decibels and recomputes coefficients.
// Filter state is preserved so audible playback does not glitch.
func (f *peakingFilter) SetGain(gainDB float64) {
	if gainDB < domain.MinBandGain {
		gainDB = domain.MinBandGain
	}
	if gainDB > domain.MaxBandGain {
		gainDB = domain.MaxBandGain
	}
	f.gainDB = gainDB

	// unit quality factor, matching the bandwidths of the fixed band layout
	const q = 1.0

	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * f.freq / f.sampleRate
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)

	b0 := 1 + alpha*a
	b1 := -2 * cosw0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosw0
	a2 := 1 - alpha/a

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

// Gain returns the stage gain in decibels.
func (f *peakingFilter) Gain() float64 {
	return f.gainDB
}

// Stream pulls samples from the upstream streamer and filters them in place.
func (f *peakingFilter) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		for ch := 0; ch < 2; ch++ {
			in := samples[i][ch]
			out := f.b0*in + f.z1[ch]
			f.z1[ch] = f.b1*in - f.a1*out + f.z2[ch]
			f.z2[ch] = f.b2*in - f.a2*out
			samples[i][ch] = out
		}
	}
	return n, ok
}

// Err returns the upstream error, if any.
func (f *peakingFilter) Err() error {
	return f.streamer.Err()
}

// equalizerChain is the fixed series of peaking stages, one per band.
type equalizerChain struct {
	stages [domain.BandCount]*peakingFilter
}

// newEqualizerChain builds the stage series over streamer at the given
// sample rate, seeding each stage with the supplied gains.
func newEqualizerChain(streamer beep.Streamer, sampleRate float64, gains [domain.BandCount]float64) *equalizerChain {
	chain := &equalizerChain{}
	upstream := streamer
	for i, freq := range domain.EqualizerFrequencies {
		chain.stages[i] = newPeakingFilter(upstream, freq, sampleRate, gains[i])
		upstream = chain.stages[i]
	}
	return chain
}

// Output returns the last stage, the end of the filter series.
func (c *equalizerChain) Output() beep.Streamer {
	return c.stages[domain.BandCount-1]
}

// SetGain updates one stage's gain. Out-of-range indexes are ignored.
func (c *equalizerChain) SetGain(index int, gainDB float64) {
	if index < 0 || index >= domain.BandCount {
		return
	}
	c.stages[index].SetGain(gainDB)
}

// Gains returns the gains applied across the chain.
func (c *equalizerChain) Gains() [domain.BandCount]float64 {
	var gains [domain.BandCount]float64
	for i, stage := range c.stages {
		gains[i] = stage.Gain()
	}
	return gains
}
