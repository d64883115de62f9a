// Package distortion provides the nonlinear saturation stages of the chain.
package distortion

import "math"

// SoftClipOdd is a symmetric clipper that adds odd harmonics:
// cubic near zero, tanh limiting beyond |x| = 0.5.
func SoftClipOdd(x float64) float64 {
	if math.Abs(x) < 0.5 {
		return x * (1 - 0.15*x*x)
	}
	return math.Tanh(1.2*x) * 0.9
}

// SoftClipEven is a knee clipper: identity below 0.3, quadratic-blended
// knee up to 0.8, tanh limiting above. The x² term in the knee is not
// sign-mirrored, which is where the even harmonics come from.
func SoftClipEven(x float64) float64 {
	abs := math.Abs(x)
	sign := 1.0
	if x < 0 {
		sign = -1
	}

	switch {
	case abs < 0.3:
		return x
	case abs < 0.8:
		return sign * (0.3 + (abs-0.3)*0.8 + 0.1*x*x)
	default:
		return sign * (0.7 + math.Tanh((abs-0.8)*2)*0.25)
	}
}
