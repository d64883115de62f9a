// Package dsp provides digital signal processing utilities for audio
package dsp

import "math"

// Buffer utilities for common audio operations

// Clear zeroes a buffer - no allocations
func Clear(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
}

// Copy copies from source to destination - no allocations
func Copy(dst, src []float32) {
	copy(dst, src)
}

// Peak finds the maximum absolute value in a buffer
func Peak(buffer []float32) float32 {
	peak := float32(0)
	for _, sample := range buffer {
		abs := float32(math.Abs(float64(sample)))
		if abs > peak {
			peak = abs
		}
	}
	return peak
}

// Duplicate copies src into every channel buffer of dst - no allocations
func Duplicate(dst [][]float32, src []float32) {
	for _, ch := range dst {
		copy(ch, src)
	}
}
