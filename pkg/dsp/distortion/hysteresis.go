package distortion

import (
	"github.com/knobula/knobula/pkg/dsp"
	"github.com/knobula/knobula/pkg/dsp/mix"
	"github.com/knobula/knobula/pkg/dsp/utility"
	"github.com/knobula/knobula/pkg/framework/param"
)

const (
	// Internal ranges the 0-100% controls map onto
	maxTubeAmount        = 0.7
	maxTransformerAmount = 0.6

	// Stages with less drive than this are skipped
	stageBypassAmount = 0.001
)

// hysteresisState is the per-channel memory of the two saturation stages.
type hysteresisState struct {
	tube      float64 // one-pole lowpass of recent input
	hyst      float64 // asymmetric follower, the magnetic lag
	prevInput float64
}

// HysteresisProcessor is the tube (odd) plus transformer (even, hysteretic)
// saturation stage with a DC blocker and dry/wet mix.
type HysteresisProcessor struct {
	enabled bool

	tubeAmount        *param.Smoother
	transformerAmount *param.Smoother
	mixAmount         *param.Smoother

	states    [dsp.Stereo]hysteresisState
	dcBlocker *utility.DCBlocker

	glow dsp.AtomicFloat32
}

// NewHysteresisProcessor creates a disabled stage with zero drive and full mix.
func NewHysteresisProcessor() *HysteresisProcessor {
	return &HysteresisProcessor{
		tubeAmount:        param.NewRampSmoother(dsp.SampleRate48k, dsp.StageSmoothing, 0),
		transformerAmount: param.NewRampSmoother(dsp.SampleRate48k, dsp.StageSmoothing, 0),
		mixAmount:         param.NewRampSmoother(dsp.SampleRate48k, dsp.StageSmoothing, 1),
		dcBlocker:         utility.NewDCBlocker(dsp.Stereo, utility.DefaultDCPole),
	}
}

// Prepare sets the smoothing rate, snaps amounts to their targets and
// clears channel state.
func (h *HysteresisProcessor) Prepare(sampleRate float64) {
	for _, s := range []*param.Smoother{h.tubeAmount, h.transformerAmount, h.mixAmount} {
		s.SetRampTime(sampleRate, dsp.StageSmoothing)
		s.Reset(s.Target())
	}
	h.Reset()
	h.publishGlow()
}

// Reset clears per-channel state; amounts are kept.
func (h *HysteresisProcessor) Reset() {
	for ch := range h.states {
		h.states[ch] = hysteresisState{}
	}
	h.dcBlocker.Reset()
}

// SetEnabled switches the stage in or out.
func (h *HysteresisProcessor) SetEnabled(enabled bool) {
	h.enabled = enabled
	h.publishGlow()
}

// IsEnabled reports whether the stage is active.
func (h *HysteresisProcessor) IsEnabled() bool {
	return h.enabled
}

// SetTubeHarmonics sets the tube drive from a 0-100% control.
func (h *HysteresisProcessor) SetTubeHarmonics(percent float64) {
	h.tubeAmount.SetTarget(utility.PercentToAmount(percent, maxTubeAmount))
}

// SetTransformerSaturation sets the transformer drive from a 0-100% control.
func (h *HysteresisProcessor) SetTransformerSaturation(percent float64) {
	h.transformerAmount.SetTarget(utility.PercentToAmount(percent, maxTransformerAmount))
}

// SetMix sets the dry/wet balance from a 0-100% control.
func (h *HysteresisProcessor) SetMix(percent float64) {
	h.mixAmount.SetTarget(utility.PercentToAmount(percent, 1))
}

// GetGlowIntensity returns the UI glow level in [0, 1]. It reflects the
// smoothed drive amounts as of the last processed block.
func (h *HysteresisProcessor) GetGlowIntensity() float32 {
	return h.glow.Load()
}

func (h *HysteresisProcessor) publishGlow() {
	if !h.enabled {
		h.glow.Store(0)
		return
	}
	intensity := (h.tubeAmount.Current() + h.transformerAmount.Current()) * 1.5
	h.glow.Store(float32(min(1, intensity)))
}

// ProcessSample saturates one sample and advances the smoothers. Disabled
// stages and out-of-range channels return x unchanged.
func (h *HysteresisProcessor) ProcessSample(x float32, channel int) float32 {
	if !h.enabled || channel < 0 || channel >= dsp.Stereo {
		return x
	}
	tube := h.tubeAmount.Next()
	transformer := h.transformerAmount.Next()
	wet := h.mixAmount.Next()
	return float32(h.process(float64(x), channel, tube, transformer, wet))
}

// ProcessStereo saturates a stereo block in place, advancing the smoothers
// once per frame.
func (h *HysteresisProcessor) ProcessStereo(left, right []float32) {
	if !h.enabled {
		return
	}

	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		tube := h.tubeAmount.Next()
		transformer := h.transformerAmount.Next()
		wet := h.mixAmount.Next()
		left[i] = float32(h.process(float64(left[i]), 0, tube, transformer, wet))
		right[i] = float32(h.process(float64(right[i]), 1, tube, transformer, wet))
	}
	h.publishGlow()
}

// ProcessBlock processes up to two channel buffers in place.
func (h *HysteresisProcessor) ProcessBlock(buffers [][]float32) {
	switch {
	case len(buffers) >= dsp.Stereo:
		h.ProcessStereo(buffers[0], buffers[1])
	case len(buffers) == 1:
		for i, x := range buffers[0] {
			buffers[0][i] = h.ProcessSample(x, 0)
		}
		h.publishGlow()
	}
}

func (h *HysteresisProcessor) process(x float64, channel int, tube, transformer, wet float64) float64 {
	s := &h.states[channel]

	y := x
	if tube >= stageBypassAmount {
		y = s.tubeStage(y, tube)
	}
	if transformer >= stageBypassAmount {
		y = s.transformerStage(y, transformer)
	}
	y = h.dcBlocker.Process(y, channel)

	return mix.DryWet(x, y, wet)
}

// tubeStage emphasizes content above the tube follower before the odd clipper.
// The high-frequency estimate uses the follower value from before this sample.
func (s *hysteresisState) tubeStage(x, amount float64) float64 {
	highFreq := x - s.tube
	s.tube = s.tube*0.95 + x*0.05

	saturated := SoftClipOdd(x + highFreq*amount*0.5)
	return x + (saturated-x)*amount*2
}

// transformerStage follows the input faster on rising than on falling
// slopes and blends that lagging state into an even clipper.
func (s *hysteresisState) transformerStage(x, amount float64) float64 {
	coeff := 0.1 * amount
	if x-s.prevInput > 0 {
		coeff *= 1.2
	} else {
		coeff *= 0.8
	}
	s.hyst = s.hyst*(1-coeff) + x*coeff
	s.prevInput = x

	combined := x*0.7 + s.hyst*0.3
	saturated := SoftClipEven(combined * (1 + amount*0.5))
	return saturated + s.hyst*amount*0.1
}
