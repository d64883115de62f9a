package eq

import "github.com/knobula/knobula/pkg/dsp"

// NumBands is the number of EQ bands per channel.
const NumBands = 4

// Band indices
const (
	BandLF = iota
	BandLMF
	BandHMF
	BandHF
)

// shelfSplitHz decides which shelf a Shelf-curve band becomes.
const shelfSplitHz = 2000.0

type bandDefaults struct {
	name             string
	minFreq, maxFreq float64
	defaultFreq      float64
	q                float64
	shelvable        bool
}

var bandTable = [NumBands]bandDefaults{
	{name: "LF", minFreq: 20, maxFreq: 300, defaultFreq: 80, q: 0.6, shelvable: true},
	{name: "LMF", minFreq: 100, maxFreq: 1500, defaultFreq: 400, q: 0.8},
	{name: "HMF", minFreq: 500, maxFreq: 8000, defaultFreq: 2500, q: 0.9},
	{name: "HF", minFreq: 2000, maxFreq: 20000, defaultFreq: 8000, q: 0.7, shelvable: true},
}

func validBand(band int) bool {
	return band >= 0 && band < NumBands
}

// BandName returns the short label of a band ("LF", "LMF", ...).
func BandName(band int) string {
	if !validBand(band) {
		return ""
	}
	return bandTable[band].name
}

// DefaultFrequency returns the band's factory center frequency in Hz.
func DefaultFrequency(band int) float64 {
	if !validBand(band) {
		return 1000
	}
	return bandTable[band].defaultFreq
}

// FrequencyRange returns the band's selectable frequency range.
func FrequencyRange(band int) (min, max float64) {
	if !validBand(band) {
		return dsp.MinFrequency, dsp.MaxFrequency
	}
	return bandTable[band].minFreq, bandTable[band].maxFreq
}

// BandQ returns the fixed Q of a band.
func BandQ(band int) float64 {
	if !validBand(band) {
		return 0.707
	}
	return bandTable[band].q
}

// SupportsShelf reports whether the band exposes the Bell/Shelf switch.
// Only the outer bands do; the inner bands are always bells.
func SupportsShelf(band int) bool {
	return validBand(band) && bandTable[band].shelvable
}
