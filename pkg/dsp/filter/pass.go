package filter

import (
	"github.com/knobula/knobula/pkg/dsp"
	"github.com/knobula/knobula/pkg/framework/param"
)

type passKind int

const (
	highPass passKind = iota
	lowPass
)

// passFilter is a switchable 12 dB/oct Butterworth stage with a smoothed
// cutoff. Coefficients are shared by both channels.
type passFilter struct {
	kind        passKind
	enabled     bool
	sampleRate  float64
	frequency   float64
	smoothed    *param.Smoother
	needsUpdate bool
	biquad      *Biquad
}

func newPassFilter(kind passKind, frequency float64) passFilter {
	return passFilter{
		kind:        kind,
		sampleRate:  dsp.SampleRate48k,
		frequency:   frequency,
		smoothed:    param.NewRampSmoother(dsp.SampleRate48k, dsp.StageSmoothing, frequency),
		needsUpdate: true,
		biquad:      NewBiquad(dsp.Stereo),
	}
}

// Prepare sets the processing rate and snaps the cutoff
func (f *passFilter) Prepare(sampleRate float64) {
	f.sampleRate = sampleRate
	f.smoothed.SetRampTime(sampleRate, dsp.StageSmoothing)
	f.smoothed.Reset(f.frequency)
	f.biquad.Reset()
	f.needsUpdate = true
	f.updateCoefficients()
}

// SetFrequency sets the cutoff target in Hz
func (f *passFilter) SetFrequency(hz float64) {
	if hz == f.frequency {
		return
	}
	f.frequency = hz
	f.smoothed.SetTarget(hz)
	f.needsUpdate = true
}

// updateCoefficients advances the cutoff smoother by one sample and
// redesigns only while something is moving.
func (f *passFilter) updateCoefficients() {
	if !f.needsUpdate && !f.smoothed.IsSmoothing() {
		return
	}

	cutoff := f.smoothed.Next()
	if f.kind == highPass {
		f.biquad.SetHighpass(f.sampleRate, cutoff, dsp.ButterworthQ)
	} else {
		f.biquad.SetLowpass(f.sampleRate, cutoff, dsp.ButterworthQ)
	}
	f.needsUpdate = f.smoothed.IsSmoothing()
}

// ProcessSample filters one sample; disabled stages return x untouched
func (f *passFilter) ProcessSample(x float32, channel int) float32 {
	if !f.enabled {
		return x
	}
	f.updateCoefficients()
	return float32(f.biquad.ProcessSample(float64(x), channel))
}

// ProcessStereo filters both channels in place. The smoother advances once
// per frame so the ramp time holds regardless of channel count.
func (f *passFilter) ProcessStereo(left, right []float32) {
	if !f.enabled {
		return
	}

	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		f.updateCoefficients()
		left[i] = float32(f.biquad.ProcessSample(float64(left[i]), 0))
		right[i] = float32(f.biquad.ProcessSample(float64(right[i]), 1))
	}
}

// HighPassFilter removes content below the cutoff
type HighPassFilter struct {
	passFilter
}

// NewHighPassFilter creates a disabled highpass at 30 Hz
func NewHighPassFilter() *HighPassFilter {
	return &HighPassFilter{passFilter: newPassFilter(highPass, 30)}
}

// LowPassFilter removes content above the cutoff
type LowPassFilter struct {
	passFilter
}

// NewLowPassFilter creates a disabled lowpass at 18 kHz
func NewLowPassFilter() *LowPassFilter {
	return &LowPassFilter{passFilter: newPassFilter(lowPass, 18000)}
}

// Reset clears the delay lines
func (f *passFilter) Reset() { f.biquad.Reset() }

// SetEnabled switches the stage in or out
func (f *passFilter) SetEnabled(enabled bool) { f.enabled = enabled }

// IsEnabled reports whether the stage is active
func (f *passFilter) IsEnabled() bool { return f.enabled }

// Frequency returns the cutoff target in Hz
func (f *passFilter) Frequency() float64 { return f.frequency }

// Coefficients returns the current design
func (f *passFilter) Coefficients() Coefficients { return f.biquad.Coefficients() }

// FilterSection runs the highpass then the lowpass
type FilterSection struct {
	hpf *HighPassFilter
	lpf *LowPassFilter
}

// NewFilterSection creates both stages disabled
func NewFilterSection() *FilterSection {
	return &FilterSection{
		hpf: NewHighPassFilter(),
		lpf: NewLowPassFilter(),
	}
}

// Prepare readies both stages for sampleRate
func (fs *FilterSection) Prepare(sampleRate float64) {
	fs.hpf.Prepare(sampleRate)
	fs.lpf.Prepare(sampleRate)
}

// Reset clears both stages
func (fs *FilterSection) Reset() {
	fs.hpf.Reset()
	fs.lpf.Reset()
}

// SetHPFEnabled switches the highpass
func (fs *FilterSection) SetHPFEnabled(enabled bool) { fs.hpf.SetEnabled(enabled) }

// SetHPFFrequency sets the highpass cutoff
func (fs *FilterSection) SetHPFFrequency(hz float64) { fs.hpf.SetFrequency(hz) }

// SetLPFEnabled switches the lowpass
func (fs *FilterSection) SetLPFEnabled(enabled bool) { fs.lpf.SetEnabled(enabled) }

// SetLPFFrequency sets the lowpass cutoff
func (fs *FilterSection) SetLPFFrequency(hz float64) { fs.lpf.SetFrequency(hz) }

// HPF exposes the highpass stage
func (fs *FilterSection) HPF() *HighPassFilter { return fs.hpf }

// LPF exposes the lowpass stage
func (fs *FilterSection) LPF() *LowPassFilter { return fs.lpf }

// ProcessSample runs HPF then LPF on a single sample
func (fs *FilterSection) ProcessSample(x float32, channel int) float32 {
	return fs.lpf.ProcessSample(fs.hpf.ProcessSample(x, channel), channel)
}

// ProcessStereo runs HPF then LPF on a stereo block in place
func (fs *FilterSection) ProcessStereo(left, right []float32) {
	fs.hpf.ProcessStereo(left, right)
	fs.lpf.ProcessStereo(left, right)
}
