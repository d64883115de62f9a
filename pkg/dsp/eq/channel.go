package eq

import (
	"math"

	"github.com/knobula/knobula/pkg/dsp"
)

// ChannelEQ runs four bands in series on one channel (L, R, M or S) and
// tracks a per-band energy envelope for visualization.
type ChannelEQ struct {
	bands  [NumBands]*EQBand
	solo   [NumBands]bool
	mute   [NumBands]bool
	energy [NumBands]dsp.AtomicFloat32
}

// NewChannelEQ creates a channel with every band at its factory frequency and Q.
func NewChannelEQ() *ChannelEQ {
	c := &ChannelEQ{}
	for i := range c.bands {
		c.bands[i] = NewEQBand(DefaultFrequency(i), BandQ(i))
	}
	return c
}

// Prepare readies every band for sampleRate.
func (c *ChannelEQ) Prepare(sampleRate float64) {
	for _, b := range c.bands {
		b.Prepare(sampleRate)
	}
}

// Reset clears band state and energy envelopes; targets are kept.
func (c *ChannelEQ) Reset() {
	for i, b := range c.bands {
		b.Reset()
		c.energy[i].Store(0)
	}
}

// SetBandParameters applies frequency, gain plus fine trim, curve and enable
// to a band. Q comes from the band table; inner bands ignore the curve.
func (c *ChannelEQ) SetBandParameters(band int, frequency, gainDB, trimDB float64, curve CurveType, enabled bool) {
	if !validBand(band) {
		return
	}
	if !SupportsShelf(band) {
		curve = Bell
	}
	c.bands[band].SetParameters(frequency, gainDB+trimDB, BandQ(band), curve, enabled)
}

// SetBandSolo sets the solo flag of a band.
func (c *ChannelEQ) SetBandSolo(band int, solo bool) {
	if validBand(band) {
		c.solo[band] = solo
	}
}

// SetBandMute sets the mute flag of a band.
func (c *ChannelEQ) SetBandMute(band int, mute bool) {
	if validBand(band) {
		c.mute[band] = mute
	}
}

// IsBandSoloed reports a band's solo flag.
func (c *ChannelEQ) IsBandSoloed(band int) bool {
	return validBand(band) && c.solo[band]
}

// IsBandMuted reports a band's mute flag.
func (c *ChannelEQ) IsBandMuted(band int) bool {
	return validBand(band) && c.mute[band]
}

// HasAnySolo reports whether any band is soloed.
func (c *ChannelEQ) HasAnySolo() bool {
	for _, s := range c.solo {
		if s {
			return true
		}
	}
	return false
}

// Band returns a band for inspection.
func (c *ChannelEQ) Band(band int) *EQBand {
	if !validBand(band) {
		return nil
	}
	return c.bands[band]
}

// bandActive applies the solo/mute gating: with any solo, only soloed bands
// run; otherwise muted bands are skipped.
func (c *ChannelEQ) bandActive(band int, anySolo bool) bool {
	if anySolo {
		return c.solo[band]
	}
	return !c.mute[band]
}

// ProcessSample runs the bands in series on one sample. Disabled bands
// pass the sample through but still track energy; gated bands do neither.
func (c *ChannelEQ) ProcessSample(x float32) float32 {
	anySolo := c.HasAnySolo()

	for i, b := range c.bands {
		if !c.bandActive(i, anySolo) {
			continue
		}

		in := x
		x = b.ProcessSample(x)

		e := c.energy[i].Load()
		level := math.Abs(float64(x))*0.5 + math.Abs(float64(x-in))*0.5
		c.energy[i].Store(e*0.99 + float32(level)*0.01)
	}

	return x
}

// ProcessBlock processes a channel buffer in place.
func (c *ChannelEQ) ProcessBlock(buffer []float32) {
	for i := range buffer {
		buffer[i] = c.ProcessSample(buffer[i])
	}
}

// GetBandEnergy returns the visualization envelope of a band.
func (c *ChannelEQ) GetBandEnergy(band int) float32 {
	if !validBand(band) {
		return 0
	}
	return c.energy[band].Load()
}

// ResponseDB sums the band responses at frequency for curve display,
// honoring the current solo/mute gating.
func (c *ChannelEQ) ResponseDB(frequency float64) float64 {
	anySolo := c.HasAnySolo()
	total := 0.0
	for i, b := range c.bands {
		if c.bandActive(i, anySolo) {
			total += b.ResponseDB(frequency)
		}
	}
	return total
}
