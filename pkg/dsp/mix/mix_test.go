package mix

import (
	"math"
	"testing"
)

func TestDryWet(t *testing.T) {
	tests := []struct {
		name     string
		dry      float64
		wet      float64
		amount   float64
		expected float64
	}{
		{"100% dry", 1.0, 0.5, 0.0, 1.0},
		{"100% wet", 1.0, 0.5, 1.0, 0.5},
		{"50/50 mix", 1.0, 0.5, 0.5, 0.75},
		{"25% wet", 1.0, 0.0, 0.25, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DryWet(tt.dry, tt.wet, tt.amount)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("DryWet(%f, %f, %f) = %f, want %f",
					tt.dry, tt.wet, tt.amount, result, tt.expected)
			}
		})
	}
}

func TestDryWetBuffer(t *testing.T) {
	dry := []float32{1.0, 1.0, 1.0, 1.0}
	wet := []float32{0.0, 0.0, 0.0, 0.0}

	DryWetBuffer(dry, wet, 0.5)

	for i, v := range dry {
		if math.Abs(float64(v-0.5)) > 0.001 {
			t.Errorf("DryWetBuffer: dry[%d] = %f, want 0.5", i, v)
		}
	}
}

func TestMidSideRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		left, right float32
	}{
		{"Mono", 0.5, 0.5},
		{"LeftOnly", 0.8, 0},
		{"AntiPhase", 0.3, -0.3},
		{"Mixed", -0.25, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mid, side := EncodeMidSide(tt.left, tt.right)
			if mid != (tt.left+tt.right)*0.5 || side != (tt.left-tt.right)*0.5 {
				t.Errorf("encode: got mid=%f side=%f", mid, side)
			}
			l, r := DecodeMidSide(mid, side)
			if math.Abs(float64(l-tt.left)) > 1e-6 || math.Abs(float64(r-tt.right)) > 1e-6 {
				t.Errorf("round trip: expected (%f, %f), got (%f, %f)", tt.left, tt.right, l, r)
			}
		})
	}

	left := []float32{0.5, 0.3}
	right := []float32{0.5, -0.3}
	EncodeMidSideBuffer(left, right)
	if left[0] != 0.5 || right[0] != 0 || left[1] != 0 || right[1] != 0.3 {
		t.Errorf("buffer encode: got %v %v", left, right)
	}
	DecodeMidSideBuffer(left, right)
	if left[1] != 0.3 || right[1] != -0.3 {
		t.Errorf("buffer decode: got %v %v", left, right)
	}
}
