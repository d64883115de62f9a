// Package param provides parameter management for the Knobula processor.
package param

import (
	"math"
)

// SmoothingType defines different parameter smoothing algorithms.
type SmoothingType int

const (
	// LinearSmoothing uses linear interpolation
	LinearSmoothing SmoothingType = iota
	// ExponentialSmoothing uses exponential smoothing (one-pole filter)
	ExponentialSmoothing
)

// settleDecay is the natural log of -60 dB; a ramp is considered finished
// once the remaining distance has decayed by that much.
const settleDecay = 6.908

// Smoother provides parameter smoothing to prevent zipper noise.
// It is advanced one sample per Next call and is not safe for concurrent use;
// each DSP component owns its smoothers and drives them from the audio thread.
type Smoother struct {
	smoothingType SmoothingType
	current       float64
	target        float64
	rate          float64
	threshold     float64
	isSmoothing   bool

	// For linear smoothing
	step float64
}

// NewSmoother creates a new parameter smoother.
// rate: smoothing rate (0.9-0.999 for exponential, samples for linear)
func NewSmoother(smoothingType SmoothingType, rate float64) *Smoother {
	return &Smoother{
		smoothingType: smoothingType,
		rate:          rate,
		threshold:     0.0001,
	}
}

// NewRampSmoother creates an exponential smoother that settles within
// rampSeconds at the given sample rate, starting at initial.
func NewRampSmoother(sampleRate, rampSeconds, initial float64) *Smoother {
	s := NewSmoother(ExponentialSmoothing, 0)
	s.SetRampTime(sampleRate, rampSeconds)
	s.Reset(initial)
	return s
}

// SetRampTime derives the rate from a ramp time in seconds.
// Linear smoothers step over exactly that many samples; exponential
// smoothers decay by 60 dB over it.
func (s *Smoother) SetRampTime(sampleRate, rampSeconds float64) {
	samples := sampleRate * rampSeconds
	if samples < 1 {
		samples = 1
	}

	switch s.smoothingType {
	case LinearSmoothing:
		s.rate = samples
	case ExponentialSmoothing:
		s.rate = math.Exp(-settleDecay / samples)
	}
}

// SetTarget sets the target value for smoothing.
func (s *Smoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		return // Target hasn't changed significantly
	}

	s.target = target
	s.isSmoothing = true

	if s.smoothingType == LinearSmoothing && s.rate > 0 {
		s.step = (target - s.current) / s.rate
	}
}

// Next returns the next smoothed value.
func (s *Smoother) Next() float64 {
	if !s.isSmoothing {
		return s.current
	}

	switch s.smoothingType {
	case ExponentialSmoothing:
		// One-pole filter: y = y + a * (x - y)
		s.current += (s.target - s.current) * (1.0 - s.rate)

		if math.Abs(s.current-s.target) < s.threshold {
			s.current = s.target
			s.isSmoothing = false
		}

	case LinearSmoothing:
		s.current += s.step

		// Check if we've reached or passed the target
		if s.step == 0 || (s.step > 0 && s.current >= s.target) || (s.step < 0 && s.current <= s.target) {
			s.current = s.target
			s.isSmoothing = false
		}
	}

	return s.current
}

// Skip advances the smoother by n samples and returns the value reached.
func (s *Smoother) Skip(n int) float64 {
	for i := 0; i < n && s.isSmoothing; i++ {
		s.Next()
	}
	return s.current
}

// Current returns the last value produced without advancing.
func (s *Smoother) Current() float64 {
	return s.current
}

// Target returns the value the smoother is heading for.
func (s *Smoother) Target() float64 {
	return s.target
}

// IsSmoothing returns true if the smoother is currently smoothing.
func (s *Smoother) IsSmoothing() bool {
	return s.isSmoothing
}

// Reset resets the smoother to a specific value.
func (s *Smoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.step = 0
	s.isSmoothing = false
}

// SetThreshold sets the threshold for considering smoothing complete.
func (s *Smoother) SetThreshold(threshold float64) {
	s.threshold = threshold
}
