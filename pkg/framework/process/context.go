// Package process provides the per-block processing context handed to a
// processor: the audio buffers, the sample rate and parameter access.
package process

import (
	"github.com/knobula/knobula/pkg/dsp"
	"github.com/knobula/knobula/pkg/framework/param"
)

// Context provides a clean API for in-place audio processing with zero
// allocations after construction
type Context struct {
	// Buffer holds one slice per channel and is processed in place
	Buffer     [][]float32
	SampleRate float64

	// Pre-allocated stereo work buffers for mono blocks
	scratch [][]float32
	stereo  [][]float32
	mono    bool

	// Parameter access
	params *param.Registry
}

// NewContext creates a new process context with pre-allocated buffers
func NewContext(maxBlockSize int, params *param.Registry) *Context {
	scratch := make([][]float32, dsp.Stereo)
	for ch := range scratch {
		scratch[ch] = make([]float32, maxBlockSize)
	}
	return &Context{
		scratch: scratch,
		stereo:  make([][]float32, dsp.Stereo),
		params:  params,
	}
}

// MaxBlockSize returns the capacity of the work buffers
func (c *Context) MaxBlockSize() int {
	return len(c.scratch[0])
}

// Parameters returns the registry backing Param lookups
func (c *Context) Parameters() *param.Registry {
	return c.params
}

// Param returns the current value of a parameter (0-1 normalized)
func (c *Context) Param(id uint32) float64 {
	if p := c.params.Get(id); p != nil {
		return p.GetValue()
	}
	return 0
}

// ParamPlain returns the current plain value of a parameter
func (c *Context) ParamPlain(id uint32) float64 {
	if p := c.params.Get(id); p != nil {
		return p.GetPlainValue()
	}
	return 0
}

// ParamBool returns a switch parameter's state
func (c *Context) ParamBool(id uint32) bool {
	if p := c.params.Get(id); p != nil {
		return p.Bool()
	}
	return false
}

// ParamIndex returns a choice parameter's selected index
func (c *Context) ParamIndex(id uint32) int {
	if p := c.params.Get(id); p != nil {
		return p.Index()
	}
	return 0
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Buffer) > 0 {
		return len(c.Buffer[0])
	}
	return 0
}

// NumChannels returns the number of channels in the block
func (c *Context) NumChannels() int {
	return len(c.Buffer)
}

// Clear zeros the buffers
func (c *Context) Clear() {
	for _, ch := range c.Buffer {
		dsp.Clear(ch)
	}
}
