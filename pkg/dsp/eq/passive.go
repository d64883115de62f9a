package eq

import (
	"github.com/knobula/knobula/pkg/dsp"
	"github.com/knobula/knobula/pkg/dsp/gain"
	"github.com/knobula/knobula/pkg/dsp/mix"
	"github.com/knobula/knobula/pkg/framework/param"
)

// PassiveEQ is the dual-channel EQ: input gain, optional mid/side
// encoding, two ChannelEQs, output trim and block-rate level envelopes.
type PassiveEQ struct {
	channels [dsp.Stereo]*ChannelEQ

	inputGain  *param.Smoother // linear
	outputTrim *param.Smoother // linear

	midSide bool
	linked  bool

	inputLevels  [dsp.Stereo]dsp.AtomicFloat32
	outputLevels [dsp.Stereo]dsp.AtomicFloat32
}

// NewPassiveEQ creates a flat, linked, L/R EQ at unity gain.
func NewPassiveEQ() *PassiveEQ {
	p := &PassiveEQ{
		inputGain:  param.NewRampSmoother(dsp.SampleRate48k, dsp.StageSmoothing, 1),
		outputTrim: param.NewRampSmoother(dsp.SampleRate48k, dsp.StageSmoothing, 1),
		linked:     true,
	}
	for ch := range p.channels {
		p.channels[ch] = NewChannelEQ()
	}
	return p
}

// Prepare readies both channels and the gain stages for sampleRate.
func (p *PassiveEQ) Prepare(sampleRate float64) {
	for _, c := range p.channels {
		c.Prepare(sampleRate)
	}
	p.inputGain.SetRampTime(sampleRate, dsp.StageSmoothing)
	p.outputTrim.SetRampTime(sampleRate, dsp.StageSmoothing)
	p.inputGain.Reset(p.inputGain.Target())
	p.outputTrim.Reset(p.outputTrim.Target())
}

// Reset clears filter state and level envelopes.
func (p *PassiveEQ) Reset() {
	for ch, c := range p.channels {
		c.Reset()
		p.inputLevels[ch].Store(0)
		p.outputLevels[ch].Store(0)
	}
}

// SetInputGain sets the input gain target in dB.
func (p *PassiveEQ) SetInputGain(db float64) {
	p.inputGain.SetTarget(gain.DbToLinear(db))
}

// SetOutputTrim sets the output trim target in dB.
func (p *PassiveEQ) SetOutputTrim(db float64) {
	p.outputTrim.SetTarget(gain.DbToLinear(db))
}

// SetMidSide switches between L/R and M/S processing.
func (p *PassiveEQ) SetMidSide(enabled bool) { p.midSide = enabled }

// IsMidSide reports whether the channels carry mid and side.
func (p *PassiveEQ) IsMidSide() bool { return p.midSide }

// SetChannelLink enables mirroring of channel 0 writes onto channel 1.
func (p *PassiveEQ) SetChannelLink(linked bool) { p.linked = linked }

// IsChannelLinked reports whether channel link is on.
func (p *PassiveEQ) IsChannelLinked() bool { return p.linked }

func validChannel(ch int) bool {
	return ch >= 0 && ch < dsp.Stereo
}

// mirrors reports whether a write to ch must be copied onto channel 1.
func (p *PassiveEQ) mirrors(ch int) bool {
	return p.linked && ch == 0
}

// SetBandParameters configures a band of one channel. With link on, writes
// to channel 0 are mirrored onto channel 1.
func (p *PassiveEQ) SetBandParameters(ch, band int, frequency, gainDB, trimDB float64, curve CurveType, enabled bool) {
	if !validChannel(ch) {
		return
	}
	p.channels[ch].SetBandParameters(band, frequency, gainDB, trimDB, curve, enabled)
	if p.mirrors(ch) {
		p.channels[1].SetBandParameters(band, frequency, gainDB, trimDB, curve, enabled)
	}
}

// SetBandSolo solos a band, following channel link.
func (p *PassiveEQ) SetBandSolo(ch, band int, solo bool) {
	if !validChannel(ch) {
		return
	}
	p.channels[ch].SetBandSolo(band, solo)
	if p.mirrors(ch) {
		p.channels[1].SetBandSolo(band, solo)
	}
}

// SetBandMute mutes a band, following channel link.
func (p *PassiveEQ) SetBandMute(ch, band int, mute bool) {
	if !validChannel(ch) {
		return
	}
	p.channels[ch].SetBandMute(band, mute)
	if p.mirrors(ch) {
		p.channels[1].SetBandMute(band, mute)
	}
}

// Channel returns one ChannelEQ.
func (p *PassiveEQ) Channel(ch int) *ChannelEQ {
	if !validChannel(ch) {
		return nil
	}
	return p.channels[ch]
}

// ProcessBlock processes a buffer set in place. Fewer than two channels
// is left untouched.
func (p *PassiveEQ) ProcessBlock(buffers [][]float32) {
	if len(buffers) < dsp.Stereo {
		return
	}
	p.ProcessStereo(buffers[0], buffers[1])
}

// ProcessStereo processes a stereo block in place.
func (p *PassiveEQ) ProcessStereo(left, right []float32) {
	n := min(len(left), len(right))
	left, right = left[:n], right[:n]

	for i := 0; i < n; i++ {
		g := float32(p.inputGain.Next())
		left[i] *= g
		right[i] *= g
	}
	p.updateLevels(&p.inputLevels, left, right)

	if p.midSide {
		mix.EncodeMidSideBuffer(left, right)
	}

	p.channels[0].ProcessBlock(left)
	p.channels[1].ProcessBlock(right)

	if p.midSide {
		mix.DecodeMidSideBuffer(left, right)
	}

	for i := 0; i < n; i++ {
		g := float32(p.outputTrim.Next())
		left[i] *= g
		right[i] *= g
	}
	p.updateLevels(&p.outputLevels, left, right)
}

func (p *PassiveEQ) updateLevels(levels *[dsp.Stereo]dsp.AtomicFloat32, left, right []float32) {
	for ch, buf := range [dsp.Stereo][]float32{left, right} {
		level := levels[ch].Load()
		levels[ch].Store(level*0.95 + dsp.Peak(buf)*0.05)
	}
}

// GetInputLevel returns the post-gain input envelope of a channel.
func (p *PassiveEQ) GetInputLevel(ch int) float32 {
	if !validChannel(ch) {
		return 0
	}
	return p.inputLevels[ch].Load()
}

// GetOutputLevel returns the post-trim output envelope of a channel.
func (p *PassiveEQ) GetOutputLevel(ch int) float32 {
	if !validChannel(ch) {
		return 0
	}
	return p.outputLevels[ch].Load()
}

// GetBandEnergy returns a band's visualization envelope.
func (p *PassiveEQ) GetBandEnergy(ch, band int) float32 {
	if !validChannel(ch) {
		return 0
	}
	return p.channels[ch].GetBandEnergy(band)
}
