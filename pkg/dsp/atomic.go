package dsp

import (
	"math"
	"sync/atomic"
)

// AtomicFloat32 is a lock-free float slot. The audio thread stores,
// UI and host threads load. No read-modify-write is implied.
type AtomicFloat32 struct {
	bits atomic.Uint32
}

// Load returns the last stored value
func (a *AtomicFloat32) Load() float32 {
	return math.Float32frombits(a.bits.Load())
}

// Store publishes a new value
func (a *AtomicFloat32) Store(v float32) {
	a.bits.Store(math.Float32bits(v))
}
