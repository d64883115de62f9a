// Package mix provides audio mixing and crossfading operations.
package mix

// DryWet performs a dry/wet mix between two signals.
// amount parameter: 0.0 = 100% dry, 1.0 = 100% wet
func DryWet(dry, wet, amount float64) float64 {
	return dry*(1.0-amount) + wet*amount
}

// DryWetBuffer performs in-place dry/wet mixing on audio buffers.
// amount parameter: 0.0 = 100% dry, 1.0 = 100% wet
func DryWetBuffer(dry, wet []float32, amount float32) {
	dryGain := 1.0 - amount
	wetGain := amount

	length := min(len(dry), len(wet))
	for i := 0; i < length; i++ {
		dry[i] = dry[i]*dryGain + wet[i]*wetGain
	}
}

// EncodeMidSide converts a left/right pair to mid/side: mid=(l+r)/2, side=(l-r)/2.
func EncodeMidSide(left, right float32) (mid, side float32) {
	return (left + right) * 0.5, (left - right) * 0.5
}

// DecodeMidSide converts a mid/side pair back to left/right.
func DecodeMidSide(mid, side float32) (left, right float32) {
	return mid + side, mid - side
}

// EncodeMidSideBuffer converts stereo buffers to mid/side in place.
func EncodeMidSideBuffer(left, right []float32) {
	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		left[i], right[i] = EncodeMidSide(left[i], right[i])
	}
}

// DecodeMidSideBuffer converts mid/side buffers back to left/right in place.
func DecodeMidSideBuffer(mid, side []float32) {
	n := min(len(mid), len(side))
	for i := 0; i < n; i++ {
		mid[i], side[i] = DecodeMidSide(mid[i], side[i])
	}
}
