// Package dsp provides digital signal processing utilities and algorithms.
package dsp

// Common audio constants used throughout the DSP package and the Knobula chain.
const (
	// Meter floor used by every readout
	MeterFloorDB = -60.0

	// Audible frequency range
	MinFrequency = 20.0    // 20 Hz
	MaxFrequency = 20000.0 // 20 kHz

	// Butterworth response
	ButterworthQ = 0.7071067811865476

	// Channel count of the processing chain
	Stereo = 2

	// Rate components are built at before Prepare
	SampleRate48k = 48000.0

	// Buffer sizes
	DefaultBufferSize = 512
	MaxBufferSize     = 8192

	// Smoothing times (seconds)
	EQSmoothing       = 0.050 // band gain/frequency glides
	StageSmoothing    = 0.020 // filters, gain stages, saturation amounts
	AutoGainSmoothing = 0.050

	// Peaking and shelving designs below this gain collapse to a wire
	UnityGainThresholdDB = 0.01

	// Absolute level counted as clipped
	ClipThreshold = 0.99
)
