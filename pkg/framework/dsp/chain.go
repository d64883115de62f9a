// Package dsp provides chain building for stereo processing stages.
package dsp

import (
	"fmt"
)

// StereoProcessor represents a stereo DSP processor.
type StereoProcessor interface {
	// ProcessStereo processes stereo audio in-place
	ProcessStereo(left, right []float32)

	// Reset resets the processor state
	Reset()
}

// StereoProcessorFunc allows using a function as a StereoProcessor.
type StereoProcessorFunc func(left, right []float32)

// ProcessStereo calls f.
func (f StereoProcessorFunc) ProcessStereo(left, right []float32) {
	f(left, right)
}

// Reset is a no-op for function processors.
func (f StereoProcessorFunc) Reset() {}

type namedStereoProcessor struct {
	name string
	StereoProcessor
}

// StereoChain represents a chain of stereo DSP processors.
type StereoChain struct {
	processors []namedStereoProcessor
	name       string
	bypass     bool
}

// NewStereoChain creates a new stereo DSP chain.
func NewStereoChain(name string) *StereoChain {
	return &StereoChain{
		name:       name,
		processors: make([]namedStereoProcessor, 0),
	}
}

// Add adds a named stereo processor to the chain.
func (c *StereoChain) Add(name string, processor StereoProcessor) *StereoChain {
	c.processors = append(c.processors, namedStereoProcessor{name: name, StereoProcessor: processor})
	return c
}

// ProcessStereo processes stereo audio through the chain.
func (c *StereoChain) ProcessStereo(left, right []float32) {
	if c.bypass {
		return
	}

	for _, p := range c.processors {
		p.ProcessStereo(left, right)
	}
}

// Reset resets all processors in the chain.
func (c *StereoChain) Reset() {
	for _, p := range c.processors {
		p.Reset()
	}
}

// SetBypass sets the bypass state of the chain.
func (c *StereoChain) SetBypass(bypass bool) {
	c.bypass = bypass
}

// IsBypassed reports the bypass state.
func (c *StereoChain) IsBypassed() bool {
	return c.bypass
}

// Name returns the chain name.
func (c *StereoChain) Name() string {
	return c.name
}

// Count returns the number of processors in the chain.
func (c *StereoChain) Count() int {
	return len(c.processors)
}

// Stages returns the processor names in order.
func (c *StereoChain) Stages() []string {
	names := make([]string, len(c.processors))
	for i, p := range c.processors {
		names[i] = p.name
	}
	return names
}

// StereoBuilder provides a fluent API for building stereo DSP chains.
type StereoBuilder struct {
	chain  *StereoChain
	errors []error
}

// NewStereoBuilder creates a new stereo chain builder.
func NewStereoBuilder(name string) *StereoBuilder {
	return &StereoBuilder{
		chain:  NewStereoChain(name),
		errors: make([]error, 0),
	}
}

// WithProcessor adds a stereo processor to the chain.
func (b *StereoBuilder) WithProcessor(name string, processor StereoProcessor) *StereoBuilder {
	if processor == nil {
		b.errors = append(b.errors, fmt.Errorf("processor %q cannot be nil", name))
		return b
	}
	b.chain.Add(name, processor)
	return b
}

// WithFunc adds a processing function to the chain.
func (b *StereoBuilder) WithFunc(name string, process func(left, right []float32)) *StereoBuilder {
	if process == nil {
		b.errors = append(b.errors, fmt.Errorf("process function %q cannot be nil", name))
		return b
	}
	b.chain.Add(name, StereoProcessorFunc(process))
	return b
}

// Build builds the stereo chain and returns any errors.
func (b *StereoBuilder) Build() (*StereoChain, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("stereo chain build errors: %v", b.errors)
	}
	if len(b.chain.processors) == 0 {
		return nil, fmt.Errorf("stereo chain is empty")
	}
	return b.chain, nil
}
