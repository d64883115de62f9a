// Package oversample runs a block at 2x or 4x the host rate through cascaded
// 2x stages, each band-limited by a polyphase half-band FIR.
package oversample

import "fmt"

// ValidFactor reports whether factor is a supported oversampling factor.
func ValidFactor(factor int) bool {
	return factor == 1 || factor == 2 || factor == 4
}

// FactorFromIndex maps a choice index (0: 1x, 1: 2x, 2: 4x) to a factor.
func FactorFromIndex(index int) (int, error) {
	switch index {
	case 0:
		return 1, nil
	case 1:
		return 2, nil
	case 2:
		return 4, nil
	default:
		return 0, fmt.Errorf("invalid oversampling index: %d", index)
	}
}

type stage struct {
	up       []delayLine // input history, per channel
	downEven []delayLine // even oversampled samples, per channel
	downOdd  []delayLine // odd oversampled samples, per channel
	buffer   [][]float32
}

func newStage(channels int) *stage {
	s := &stage{}
	for ch := 0; ch < channels; ch++ {
		s.up = append(s.up, newDelayLine(len(halfbandCoeffs)))
		s.downEven = append(s.downEven, newDelayLine(len(halfbandCoeffs)))
		s.downOdd = append(s.downOdd, newDelayLine(centerDelay+1))
	}
	return s
}

// prepare sizes the output buffer for maxInput samples of input.
func (s *stage) prepare(maxInput, channels int) {
	s.buffer = make([][]float32, channels)
	for ch := range s.buffer {
		s.buffer[ch] = make([]float32, maxInput*2)
	}
	s.reset()
}

func (s *stage) reset() {
	for ch := range s.up {
		s.up[ch].reset()
		s.downEven[ch].reset()
		s.downOdd[ch].reset()
	}
}

// upsample interpolates n input samples into 2n samples of the stage
// buffer. Even outputs come from the FIR branch and odd outputs from the
// delayed center tap; both carry the zero-stuffing gain of 2.
func (s *stage) upsample(in [][]float32, n int) {
	for ch, out := range s.buffer {
		src := in[ch]
		hist := &s.up[ch]
		for i := 0; i < n; i++ {
			hist.push(float64(src[i]))
			w := hist.window()
			out[2*i] = float32(2 * dot(halfbandCoeffs, w))
			out[2*i+1] = float32(w[centerDelay])
		}
	}
}

// downsample filters 2n samples in the stage buffer and writes every other
// filtered sample to out.
func (s *stage) downsample(out [][]float32, n int) {
	for ch, src := range s.buffer {
		dst := out[ch]
		even, odd := &s.downEven[ch], &s.downOdd[ch]
		for i := 0; i < n; i++ {
			even.push(float64(src[2*i]))
			acc := dot(halfbandCoeffs, even.window()) + 0.5*odd.window()[centerDelay]
			dst[i] = float32(acc)
			odd.push(float64(src[2*i+1]))
		}
	}
}

// Oversampler converts blocks to factor × the host rate and back.
type Oversampler struct {
	channels int
	factor   int
	maxBlock int
	stages   []*stage
	view     [][]float32
}

// NewOversampler creates an oversampler for 1, 2 or 4 times the host rate.
func NewOversampler(channels, factor int) (*Oversampler, error) {
	if !ValidFactor(factor) {
		return nil, fmt.Errorf("unsupported oversampling factor: %d", factor)
	}
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	o := &Oversampler{
		channels: channels,
		factor:   factor,
		view:     make([][]float32, channels),
	}
	for f := factor; f > 1; f /= 2 {
		o.stages = append(o.stages, newStage(channels))
	}
	return o, nil
}

// Factor returns the oversampling factor.
func (o *Oversampler) Factor() int {
	return o.factor
}

// Channels returns the channel count.
func (o *Oversampler) Channels() int {
	return o.channels
}

// MaxBlock returns the largest host block Prepare sized buffers for.
func (o *Oversampler) MaxBlock() int {
	return o.maxBlock
}

// Prepare allocates buffers for blocks of up to maxBlock host samples and
// clears the filter state. The half-band design is relative to the rate.
func (o *Oversampler) Prepare(maxBlock int) {
	o.maxBlock = maxBlock
	n := maxBlock
	for _, s := range o.stages {
		s.prepare(n, o.channels)
		n *= 2
	}
}

// Latency returns the round-trip delay of Upsample followed by Downsample
// in host samples. Each stage delays by the filter's center tap twice at
// its output rate.
func (o *Oversampler) Latency() float64 {
	latency := 0.0
	scale := 1.0
	for range o.stages {
		latency += float64(halfbandCenter) * scale
		scale /= 2
	}
	return latency
}

// Reset clears all filter state.
func (o *Oversampler) Reset() {
	for _, s := range o.stages {
		s.reset()
	}
}

// Upsample returns the block at the oversampled rate. The result aliases
// internal buffers (or in itself at 1x) and is valid until the next call.
// Blocks longer than MaxBlock are truncated; blocks with fewer channels
// than the oversampler are returned unchanged.
func (o *Oversampler) Upsample(in [][]float32) [][]float32 {
	if len(o.stages) == 0 || len(in) < o.channels {
		return in
	}

	n := o.blockLength(in)
	src := in
	for _, s := range o.stages {
		s.upsample(src, n)
		n *= 2
		src = s.buffer
	}

	for ch := range o.view {
		o.view[ch] = src[ch][:n]
	}
	return o.view
}

// Downsample filters the block last returned by Upsample back to the host
// rate and writes it to out.
func (o *Oversampler) Downsample(out [][]float32) {
	if len(o.stages) == 0 || len(out) < o.channels {
		return
	}

	n := o.blockLength(out)
	for i := len(o.stages) - 1; i >= 0; i-- {
		dst := out
		if i > 0 {
			dst = o.stages[i-1].buffer
		}
		o.stages[i].downsample(dst, n<<i)
	}
}

func (o *Oversampler) blockLength(buffers [][]float32) int {
	n := o.maxBlock
	for ch := 0; ch < o.channels; ch++ {
		n = min(n, len(buffers[ch]))
	}
	return n
}
