package filter

import (
	"math"
	"math/cmplx"

	"github.com/knobula/knobula/pkg/dsp"
)

// Coefficients holds a normalized biquad (a0 == 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Unity returns pass-through coefficients.
func Unity() Coefficients {
	return Coefficients{B0: 1}
}

// IsUnity reports whether the coefficients describe a wire.
func (c Coefficients) IsUnity() bool {
	return c == Unity()
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	invA0 := 1.0 / a0
	return Coefficients{
		B0: b0 * invA0,
		B1: b1 * invA0,
		B2: b2 * invA0,
		A1: a1 * invA0,
		A2: a2 * invA0,
	}
}

// clampFrequency keeps the design frequency between MinFrequency and just
// below Nyquist.
func clampFrequency(sampleRate, frequency float64) float64 {
	maxFreq := sampleRate * 0.49
	if frequency > maxFreq {
		return maxFreq
	}
	if frequency < dsp.MinFrequency {
		return dsp.MinFrequency
	}
	return frequency
}

// PeakingEQ designs an RBJ bell filter.
func PeakingEQ(sampleRate, frequency, q, gainDB float64) Coefficients {
	if math.Abs(gainDB) < dsp.UnityGainThresholdDB {
		return Unity()
	}

	A := math.Pow(10, gainDB/40)
	omega := 2 * math.Pi * clampFrequency(sampleRate, frequency) / sampleRate
	sin := math.Sin(omega)
	cos := math.Cos(omega)
	alpha := sin / (2 * q)

	return normalize(
		1+alpha*A,
		-2*cos,
		1-alpha*A,
		1+alpha/A,
		-2*cos,
		1-alpha/A,
	)
}

// shelfAlpha returns the RBJ shelf alpha for slope S = 1.
func shelfAlpha(A, sin float64) float64 {
	const slope = 1.0
	return sin / 2 * math.Sqrt((A+1/A)*(1/slope-1)+2)
}

// LowShelf designs an RBJ low shelf with unit slope.
func LowShelf(sampleRate, frequency, gainDB float64) Coefficients {
	if math.Abs(gainDB) < dsp.UnityGainThresholdDB {
		return Unity()
	}

	A := math.Pow(10, gainDB/40)
	omega := 2 * math.Pi * clampFrequency(sampleRate, frequency) / sampleRate
	sin := math.Sin(omega)
	cos := math.Cos(omega)
	twoSqrtAAlpha := 2 * math.Sqrt(A) * shelfAlpha(A, sin)

	return normalize(
		A*((A+1)-(A-1)*cos+twoSqrtAAlpha),
		2*A*((A-1)-(A+1)*cos),
		A*((A+1)-(A-1)*cos-twoSqrtAAlpha),
		(A+1)+(A-1)*cos+twoSqrtAAlpha,
		-2*((A-1)+(A+1)*cos),
		(A+1)+(A-1)*cos-twoSqrtAAlpha,
	)
}

// HighShelf designs an RBJ high shelf with unit slope.
func HighShelf(sampleRate, frequency, gainDB float64) Coefficients {
	if math.Abs(gainDB) < dsp.UnityGainThresholdDB {
		return Unity()
	}

	A := math.Pow(10, gainDB/40)
	omega := 2 * math.Pi * clampFrequency(sampleRate, frequency) / sampleRate
	sin := math.Sin(omega)
	cos := math.Cos(omega)
	twoSqrtAAlpha := 2 * math.Sqrt(A) * shelfAlpha(A, sin)

	return normalize(
		A*((A+1)+(A-1)*cos+twoSqrtAAlpha),
		-2*A*((A-1)+(A+1)*cos),
		A*((A+1)+(A-1)*cos-twoSqrtAAlpha),
		(A+1)-(A-1)*cos+twoSqrtAAlpha,
		2*((A-1)-(A+1)*cos),
		(A+1)-(A-1)*cos-twoSqrtAAlpha,
	)
}

// Lowpass designs a second-order lowpass. Use q = 1/sqrt(2) for Butterworth.
func Lowpass(sampleRate, frequency, q float64) Coefficients {
	omega := 2 * math.Pi * clampFrequency(sampleRate, frequency) / sampleRate
	sin := math.Sin(omega)
	cos := math.Cos(omega)
	alpha := sin / (2 * q)

	return normalize(
		(1-cos)/2,
		1-cos,
		(1-cos)/2,
		1+alpha,
		-2*cos,
		1-alpha,
	)
}

// Highpass designs a second-order highpass. Use q = 1/sqrt(2) for Butterworth.
func Highpass(sampleRate, frequency, q float64) Coefficients {
	omega := 2 * math.Pi * clampFrequency(sampleRate, frequency) / sampleRate
	sin := math.Sin(omega)
	cos := math.Cos(omega)
	alpha := sin / (2 * q)

	return normalize(
		(1+cos)/2,
		-(1 + cos),
		(1+cos)/2,
		1+alpha,
		-2*cos,
		1-alpha,
	)
}

// Response evaluates the transfer function at frequency.
func (c Coefficients) Response(sampleRate, frequency float64) complex128 {
	omega := 2 * math.Pi * frequency / sampleRate
	z1 := cmplx.Exp(complex(0, -omega))
	z2 := z1 * z1
	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

// MagnitudeDB returns the gain in dB at frequency, used for curve display.
func (c Coefficients) MagnitudeDB(sampleRate, frequency float64) float64 {
	mag := cmplx.Abs(c.Response(sampleRate, frequency))
	if mag < 1e-12 {
		return -240
	}
	return 20 * math.Log10(mag)
}

// IsStable reports whether both poles lie inside the unit circle.
func (c Coefficients) IsStable() bool {
	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}
