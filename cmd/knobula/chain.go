package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/knobula/knobula/internal/audio"
	"github.com/knobula/knobula/internal/wav"
	"github.com/knobula/knobula/pkg/dsp"
	"github.com/knobula/knobula/pkg/dsp/analysis"
	"github.com/knobula/knobula/pkg/framework/debug"
	"github.com/knobula/knobula/pkg/knobula"
)

// ChainOptions configure the processor for every audio command.
type ChainOptions struct {
	Preset       string            `help:"Factory preset applied before --set." placeholder:"NAME"`
	Set          map[string]string `short:"s" help:"Set a parameter, e.g. band0_gain_0=3. Repeatable." placeholder:"KEY=VALUE"`
	Oversampling int               `help:"Oversampling factor: 1, 2 or 4." default:"1" placeholder:"N"`
	BlockSize    int               `help:"Processing block size in samples." default:"512" placeholder:"N"`
	MeterMode    string            `help:"Level meter mode: rms, peak, vu or lufs." default:"rms" enum:"rms,peak,vu,lufs"`
}

// newProcessor creates a processor with the options applied. Oversampling
// is set first so --set oversampling=... can override it.
func (o *ChainOptions) newProcessor(logger *debug.Logger) (*knobula.Processor, error) {
	p, err := knobula.NewProcessor()
	if err != nil {
		return nil, err
	}
	p.SetLogger(logger)

	if o.Oversampling != 0 {
		if err := p.SetOversampling(o.Oversampling); err != nil {
			return nil, err
		}
	}
	if o.Preset != "" {
		if err := p.ApplyPreset(o.Preset); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(o.Set))
	for key := range o.Set {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if err := p.Parameters().SetFromString(key, o.Set[key]); err != nil {
			return nil, fmt.Errorf("--set: %w", err)
		}
	}

	mode := analysis.ModeRMS
	if o.MeterMode != "" {
		if mode, err = analysis.ParseMeterMode(o.MeterMode); err != nil {
			return nil, err
		}
	}
	p.SetMeterMode(mode)

	return p, nil
}

func (o *ChainOptions) blockSize() int {
	if o.BlockSize <= 0 {
		return dsp.DefaultBufferSize
	}
	return o.BlockSize
}

// session is a decoded input with a prepared processor.
type session struct {
	input     *wav.Audio
	proc      *knobula.Processor
	blockSize int
}

// openSession decodes path and prepares a processor for it.
func (o *ChainOptions) openSession(path string, logger *debug.Logger) (*session, error) {
	in, err := wav.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if in.Frames() == 0 {
		return nil, errors.New(path + ": no audio")
	}

	p, err := o.newProcessor(logger)
	if err != nil {
		return nil, err
	}
	blockSize := o.blockSize()
	if err := p.Prepare(float64(in.SampleRate), blockSize); err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	logger.Debug("%s: %d channels, %d frames at %d Hz", path, in.NumChannels(), in.Frames(), in.SampleRate)

	return &session{input: in, proc: p, blockSize: blockSize}, nil
}

// source returns a streaming source over the session's input.
func (s *session) source() (*audio.FileSource, error) {
	return audio.NewFileSource(s.input, s.proc, s.blockSize)
}
