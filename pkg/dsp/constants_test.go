package dsp

import (
	"math"
	"testing"
)

func TestConstants(t *testing.T) {
	tests := []struct {
		name string
		min  float64
		max  float64
	}{
		{"Frequency", MinFrequency, MaxFrequency},
		{"Meter", MeterFloorDB, 0},
		{"Buffer", DefaultBufferSize, MaxBufferSize},
		{"Smoothing", StageSmoothing, EQSmoothing},
		{"Clip", 0, ClipThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.min >= tt.max {
				t.Errorf("%s: min (%f) >= max (%f)", tt.name, tt.min, tt.max)
			}
		})
	}
}

func TestButterworthQ(t *testing.T) {
	if math.Abs(ButterworthQ-1/math.Sqrt2) > 1e-12 {
		t.Errorf("ButterworthQ incorrect: %f", ButterworthQ)
	}
}
