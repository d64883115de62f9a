// Package utility provides common DSP utility functions and processors.
package utility

// DefaultDCPole is the feedback coefficient used by the saturation stage.
const DefaultDCPole = 0.995

// DCBlocker removes DC offset from audio signals.
// First-order highpass: y[n] = x[n] - x[n-1] + R * y[n-1]
type DCBlocker struct {
	// State variables for each channel
	x1 []float64 // Previous input
	y1 []float64 // Previous output

	coefficient float64
}

// NewDCBlocker creates a DC blocker with a fixed pole R.
// R is clamped to [0.9, 0.9999] to stay stable and useful.
func NewDCBlocker(channels int, pole float64) *DCBlocker {
	dc := &DCBlocker{
		x1: make([]float64, channels),
		y1: make([]float64, channels),
	}
	dc.SetPole(pole)
	return dc
}

// SetPole updates the feedback coefficient.
func (dc *DCBlocker) SetPole(pole float64) {
	dc.coefficient = ClampParameter(pole, 0.9, 0.9999)
}

// Pole returns the feedback coefficient.
func (dc *DCBlocker) Pole() float64 {
	return dc.coefficient
}

// Process removes DC offset from a single sample on a single channel.
func (dc *DCBlocker) Process(input float64, channel int) float64 {
	if channel < 0 || channel >= len(dc.x1) {
		return input // Safety check
	}

	output := input - dc.x1[channel] + dc.coefficient*dc.y1[channel]

	dc.x1[channel] = input
	dc.y1[channel] = output

	return output
}

// ProcessBuffer removes DC offset from a buffer in-place.
func (dc *DCBlocker) ProcessBuffer(buffer []float32, channel int) {
	if channel < 0 || channel >= len(dc.x1) {
		return
	}

	for i := range buffer {
		buffer[i] = float32(dc.Process(float64(buffer[i]), channel))
	}
}

// Reset clears the DC blocker state.
func (dc *DCBlocker) Reset() {
	for i := range dc.x1 {
		dc.x1[i] = 0
		dc.y1[i] = 0
	}
}
