package process

import (
	"github.com/knobula/knobula/pkg/dsp"
)

// GetNumStereoChannels returns the number of channels capped at 2
func (c *Context) GetNumStereoChannels() int {
	return min(c.NumChannels(), dsp.Stereo)
}

// StereoBuffer returns a left/right pair for the block. Stereo (and wider)
// blocks return their first two channels; a mono block is duplicated into
// the work buffers and must be handed back with CommitStereo. Returns nil
// for an empty block or one larger than the work buffers.
func (c *Context) StereoBuffer() [][]float32 {
	c.mono = false
	switch {
	case c.NumChannels() >= dsp.Stereo:
		return c.Buffer[:dsp.Stereo]
	case c.NumChannels() == 0 || c.NumSamples() > c.MaxBlockSize():
		return nil
	}

	n := c.NumSamples()
	for ch := range c.stereo {
		c.stereo[ch] = c.scratch[ch][:n]
	}
	dsp.Duplicate(c.stereo, c.Buffer[0])
	c.mono = true
	return c.stereo
}

// CommitStereo writes the left work channel back to a mono block. It is a
// no-op for stereo blocks.
func (c *Context) CommitStereo() {
	if !c.mono {
		return
	}
	dsp.Copy(c.Buffer[0], c.stereo[0])
	c.mono = false
}

// ProcessStereo runs fn over the block's stereo pair
func (c *Context) ProcessStereo(fn func(left, right []float32)) {
	stereo := c.StereoBuffer()
	if stereo == nil {
		return
	}
	fn(stereo[0], stereo[1])
	c.CommitStereo()
}

// ProcessChannels processes all available channels with the given function
func (c *Context) ProcessChannels(fn func(ch int, buffer []float32)) {
	for ch, buffer := range c.Buffer {
		fn(ch, buffer)
	}
}
