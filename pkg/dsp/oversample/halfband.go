package oversample

import "math"

// Half-band lowpass shared by every 2x stage: a Kaiser-windowed sinc with
// its cutoff at a quarter of the stage output rate. Apart from the center,
// every odd-offset tap is zero, so one polyphase branch is a short FIR over
// the even taps and the other is a pure delay.
const (
	halfbandTaps = 63    // center tap at odd index 31
	halfbandBeta = 7.857 // Kaiser beta for ~80 dB stopband
)

// halfbandCenter is the center tap index; centerDelay is the delay of the
// pure-delay branch in stage input samples.
const (
	halfbandCenter = (halfbandTaps - 1) / 2
	centerDelay    = (halfbandCenter - 1) / 2
)

// halfbandCoeffs holds the non-zero even taps h[0], h[2], ... h[62].
var halfbandCoeffs = designHalfband(halfbandTaps, halfbandBeta)

// designHalfband returns the even taps of a windowed half-band lowpass.
// They are normalized to sum to 0.5; with the 0.5 center tap the DC gain
// is exactly one and each branch has unity gain at 2x.
func designHalfband(taps int, beta float64) []float64 {
	center := (taps - 1) / 2
	even := make([]float64, 0, center+1)
	sum := 0.0
	for n := 0; n < taps; n += 2 {
		k := float64(n-center) / 2
		h := math.Sin(math.Pi*k) / (math.Pi * k) * 0.5 * kaiser(n, taps, beta)
		even = append(even, h)
		sum += h
	}
	for i := range even {
		even[i] *= 0.5 / sum
	}
	return even
}

// kaiser returns tap n of a length-taps Kaiser window.
func kaiser(n, taps int, beta float64) float64 {
	r := 2*float64(n)/float64(taps-1) - 1
	return besselI0(beta*math.Sqrt(1-r*r)) / besselI0(beta)
}

// besselI0 is the zeroth-order modified Bessel function of the first kind.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	half := x / 2
	for k := 1; k < 50; k++ {
		term *= half / float64(k)
		sum += term * term
		if term*term < sum*1e-17 {
			break
		}
	}
	return sum
}

// delayLine keeps the most recent samples of one channel, newest first.
// The buffer is mirrored so the window never wraps.
type delayLine struct {
	buf []float64
	pos int
	n   int
}

func newDelayLine(n int) delayLine {
	return delayLine{buf: make([]float64, 2*n), n: n}
}

func (d *delayLine) push(x float64) {
	d.pos--
	if d.pos < 0 {
		d.pos = d.n - 1
	}
	d.buf[d.pos] = x
	d.buf[d.pos+d.n] = x
}

// window returns the last n samples, newest first.
func (d *delayLine) window() []float64 {
	return d.buf[d.pos : d.pos+d.n]
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}

func dot(coeffs, window []float64) float64 {
	acc := 0.0
	for i, c := range coeffs {
		acc += c * window[i]
	}
	return acc
}
