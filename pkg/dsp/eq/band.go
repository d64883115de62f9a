package eq

import (
	"fmt"
	"strings"

	"github.com/knobula/knobula/pkg/dsp"
	"github.com/knobula/knobula/pkg/dsp/filter"
	"github.com/knobula/knobula/pkg/framework/param"
)

// CurveType selects the band response.
type CurveType int

const (
	// Bell is a peaking filter around the band frequency
	Bell CurveType = iota
	// Shelf is a low shelf at or below 2 kHz and a high shelf above it
	Shelf
)

// String returns the curve name
func (c CurveType) String() string {
	switch c {
	case Bell:
		return "Bell"
	case Shelf:
		return "Shelf"
	default:
		return "Unknown"
	}
}

// ParseCurveType parses "bell" or "shelf", case-insensitive.
func ParseCurveType(s string) (CurveType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bell", "peak", "peaking":
		return Bell, nil
	case "shelf":
		return Shelf, nil
	}
	return Bell, fmt.Errorf("unknown curve type: %s", s)
}

// EQBand is one smoothed biquad section of a single channel.
type EQBand struct {
	coeffs filter.Coefficients
	state  filter.State

	sampleRate float64
	frequency  float64
	gainDB     float64
	q          float64
	curve      CurveType
	enabled    bool

	smoothedFreq *param.Smoother
	smoothedGain *param.Smoother
	needsUpdate  bool
}

// NewEQBand creates an enabled, flat bell band.
func NewEQBand(frequency, q float64) *EQBand {
	b := &EQBand{
		coeffs:     filter.Unity(),
		sampleRate: dsp.SampleRate48k,
		frequency:  frequency,
		q:          q,
		curve:      Bell,
		enabled:    true,
	}
	b.smoothedFreq = param.NewRampSmoother(b.sampleRate, dsp.EQSmoothing, frequency)
	b.smoothedGain = param.NewRampSmoother(b.sampleRate, dsp.EQSmoothing, 0)
	b.needsUpdate = true
	return b
}

// Prepare sets the processing rate, snaps the smoothers to their targets
// and clears the delay line.
func (b *EQBand) Prepare(sampleRate float64) {
	b.sampleRate = sampleRate
	b.smoothedFreq.SetRampTime(sampleRate, dsp.EQSmoothing)
	b.smoothedGain.SetRampTime(sampleRate, dsp.EQSmoothing)
	b.smoothedFreq.Reset(b.frequency)
	b.smoothedGain.Reset(b.gainDB)
	b.state.Reset()
	b.needsUpdate = true
	b.UpdateCoefficients()
}

// Reset clears the delay line only.
func (b *EQBand) Reset() {
	b.state.Reset()
}

// SetParameters updates the band targets. Frequency and gain glide; Q and
// curve changes are applied at the next coefficient update.
func (b *EQBand) SetParameters(frequency, gainDB, q float64, curve CurveType, enabled bool) {
	b.enabled = enabled

	if frequency != b.frequency {
		b.frequency = frequency
		b.smoothedFreq.SetTarget(frequency)
		b.needsUpdate = true
	}
	if gainDB != b.gainDB {
		b.gainDB = gainDB
		b.smoothedGain.SetTarget(gainDB)
		b.needsUpdate = true
	}
	if q != b.q || curve != b.curve {
		b.q = q
		b.curve = curve
		b.needsUpdate = true
	}
}

// UpdateCoefficients recomputes the design when dirty or still gliding.
// Each call advances both smoothers by one sample.
func (b *EQBand) UpdateCoefficients() {
	if !b.needsUpdate && !b.IsSmoothing() {
		return
	}

	freq := b.smoothedFreq.Next()
	gainDB := b.smoothedGain.Next()
	b.coeffs = b.design(freq, gainDB)

	b.needsUpdate = b.IsSmoothing()
}

func (b *EQBand) design(freq, gainDB float64) filter.Coefficients {
	if b.curve == Shelf {
		if freq > shelfSplitHz {
			return filter.HighShelf(b.sampleRate, freq, gainDB)
		}
		return filter.LowShelf(b.sampleRate, freq, gainDB)
	}
	return filter.PeakingEQ(b.sampleRate, freq, b.q, gainDB)
}

// ProcessSample filters one sample. A disabled band returns x unchanged.
func (b *EQBand) ProcessSample(x float32) float32 {
	if !b.enabled {
		return x
	}
	b.UpdateCoefficients()
	return float32(b.state.Process(&b.coeffs, float64(x)))
}

// IsSmoothing reports whether frequency or gain is still gliding.
func (b *EQBand) IsSmoothing() bool {
	return b.smoothedFreq.IsSmoothing() || b.smoothedGain.IsSmoothing()
}

// Enabled reports whether the band is active.
func (b *EQBand) Enabled() bool { return b.enabled }

// Frequency returns the target frequency in Hz.
func (b *EQBand) Frequency() float64 { return b.frequency }

// GainDB returns the target gain in dB.
func (b *EQBand) GainDB() float64 { return b.gainDB }

// Q returns the band Q.
func (b *EQBand) Q() float64 { return b.q }

// Curve returns the selected curve.
func (b *EQBand) Curve() CurveType { return b.curve }

// Coefficients returns the design currently in use.
func (b *EQBand) Coefficients() filter.Coefficients { return b.coeffs }

// ResponseDB evaluates the band's target response at frequency, for curve display.
func (b *EQBand) ResponseDB(frequency float64) float64 {
	if !b.enabled {
		return 0
	}
	return b.design(b.frequency, b.gainDB).MagnitudeDB(b.sampleRate, frequency)
}
