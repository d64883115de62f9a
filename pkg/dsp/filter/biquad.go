// Package filter provides digital signal processing filters
package filter

// State is the Direct Form I delay line of one biquad channel.
// It is kept in double precision regardless of the sample format.
type State struct {
	x1, x2 float64 // input delay line
	y1, y2 float64 // output delay line
}

// Process runs one sample through the section described by c.
func (s *State) Process(c *Coefficients, x float64) float64 {
	y := c.B0*x + c.B1*s.x1 + c.B2*s.x2 - c.A1*s.y1 - c.A2*s.y2

	s.x2 = s.x1
	s.x1 = x
	s.y2 = s.y1
	s.y1 = y

	return y
}

// Reset clears the delay line
func (s *State) Reset() {
	*s = State{}
}

// Biquad implements a second-order IIR filter (biquad)
// Direct Form I implementation with pre-allocated per-channel state
type Biquad struct {
	coeffs Coefficients
	state  []State
}

// NewBiquad creates a new biquad filter for the specified number of channels
func NewBiquad(channels int) *Biquad {
	return &Biquad{
		coeffs: Unity(),
		state:  make([]State, channels),
	}
}

// Channels returns the number of channels with their own state
func (b *Biquad) Channels() int {
	return len(b.state)
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	for i := range b.state {
		b.state[i].Reset()
	}
}

// SetCoefficients installs a new design. State is kept so sweeps stay continuous.
func (b *Biquad) SetCoefficients(c Coefficients) {
	b.coeffs = c
}

// Coefficients returns the active design
func (b *Biquad) Coefficients() Coefficients {
	return b.coeffs
}

// ProcessSample filters a single sample. Out-of-range channels pass through.
func (b *Biquad) ProcessSample(x float64, channel int) float64 {
	if channel < 0 || channel >= len(b.state) {
		return x
	}
	return b.state[channel].Process(&b.coeffs, x)
}

// Process applies the filter to a buffer (single channel) - no allocations
func (b *Biquad) Process(buffer []float32, channel int) {
	if channel < 0 || channel >= len(b.state) {
		return
	}

	s := &b.state[channel]
	for i := range buffer {
		buffer[i] = float32(s.Process(&b.coeffs, float64(buffer[i])))
	}
}

// SetLowpass configures a second-order lowpass
func (b *Biquad) SetLowpass(sampleRate, frequency, q float64) {
	b.coeffs = Lowpass(sampleRate, frequency, q)
}

// SetHighpass configures a second-order highpass
func (b *Biquad) SetHighpass(sampleRate, frequency, q float64) {
	b.coeffs = Highpass(sampleRate, frequency, q)
}

// SetPeakingEQ configures a bell
func (b *Biquad) SetPeakingEQ(sampleRate, frequency, q, gainDB float64) {
	b.coeffs = PeakingEQ(sampleRate, frequency, q, gainDB)
}

