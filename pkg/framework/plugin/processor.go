// Package plugin provides base processor functionality shared by hosts.
package plugin

import (
	"fmt"

	"github.com/knobula/knobula/pkg/framework/param"
	"github.com/knobula/knobula/pkg/framework/process"
)

// Processor is the contract a host drives: prepare once per stream
// configuration, then process blocks in place
type Processor interface {
	Initialize(sampleRate float64, maxBlockSize int) error
	Reset()
	ProcessAudio(ctx *process.Context)
	Parameters() *param.Registry
	Info() Info
}

// BaseProcessor provides common functionality for audio processors
type BaseProcessor struct {
	info         Info
	params       *param.Registry
	sampleRate   float64
	maxBlockSize int
	latency      int

	// Optional callbacks for customization
	onInitialize func(sampleRate float64, maxBlockSize int) error
	onReset      func()
}

// NewBaseProcessor creates a new base processor
func NewBaseProcessor(info Info) *BaseProcessor {
	return &BaseProcessor{
		info:   info,
		params: param.NewRegistry(),
	}
}

// Initialize validates the stream configuration and runs the
// initialization callback
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %g", sampleRate)
	}
	if maxBlockSize <= 0 {
		return fmt.Errorf("invalid block size: %d", maxBlockSize)
	}

	b.sampleRate = sampleRate
	b.maxBlockSize = maxBlockSize

	if b.onInitialize != nil {
		return b.onInitialize(sampleRate, maxBlockSize)
	}

	return nil
}

// Reset runs the reset callback
func (b *BaseProcessor) Reset() {
	if b.onReset != nil {
		b.onReset()
	}
}

// Info returns the processor metadata
func (b *BaseProcessor) Info() Info {
	return b.info
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// MaxBlockSize returns the block size passed to Initialize
func (b *BaseProcessor) MaxBlockSize() int {
	return b.maxBlockSize
}

// Parameters returns the parameter registry for adding parameters
func (b *BaseProcessor) Parameters() *param.Registry {
	return b.params
}

// GetLatencySamples returns the reported latency
func (b *BaseProcessor) GetLatencySamples() int {
	return b.latency
}

// SetLatencySamples sets the reported latency
func (b *BaseProcessor) SetLatencySamples(samples int) {
	b.latency = samples
}

// GetTailSamples - default no tail
func (b *BaseProcessor) GetTailSamples() int {
	return 0
}

// OnInitialize sets a callback for initialization
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int) error) {
	b.onInitialize = fn
}

// OnReset sets a callback for when the processor should reset its state
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}
