package domain

// BandCount is the fixed number of equalizer bands.
const BandCount = 10

// EqualizerFrequencies is the fixed center-frequency table (Hz), index-aligned
// with every 10-element gain array in the system. The mapping never changes
// for the process lifetime.
var EqualizerFrequencies = [BandCount]float64{60, 170, 310, 600, 1000, 3000, 6000, 12000, 14000, 16000}

// Equalizer gain limits in decibels. Values outside this range are clamped
// by the audio engine, not rejected.
const (
	MinBandGain = -12.0
	MaxBandGain = 12.0
)

// EqualizerPresets maps preset names to fixed 10-tuples of band gains (dB).
var EqualizerPresets = map[string][BandCount]float64{
	"flat":       {0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	"bass-boost": {8, 6, 4, 2, 0, 0, 0, 0, 0, 0},
	"rock":       {5, 4, 3, 1, -1, -1, 1, 3, 4, 5},
	"pop":        {-1, 1, 3, 4, 3, 0, -1, -1, 1, 2},
	"jazz":       {3, 2, 1, 2, -1, -1, 0, 1, 2, 3},
	"classical":  {4, 3, 2, 0, 0, 0, -1, -2, -2, -3},
}

// PresetNames returns the preset names in a stable order for display.
func PresetNames() []string {
	return []string{"flat", "bass-boost", "rock", "pop", "jazz", "classical"}
}
