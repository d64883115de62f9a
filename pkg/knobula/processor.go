// Package knobula is the dual-channel mastering EQ: parameter layout,
// factory presets and the Processor that runs the HPF/LPF, passive EQ and
// hysteresis chain with optional oversampling and metering.
package knobula

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/knobula/knobula/pkg/dsp"
	"github.com/knobula/knobula/pkg/dsp/analysis"
	"github.com/knobula/knobula/pkg/dsp/distortion"
	"github.com/knobula/knobula/pkg/dsp/eq"
	"github.com/knobula/knobula/pkg/dsp/filter"
	"github.com/knobula/knobula/pkg/dsp/oversample"
	"github.com/knobula/knobula/pkg/framework/debug"
	fdsp "github.com/knobula/knobula/pkg/framework/dsp"
	"github.com/knobula/knobula/pkg/framework/param"
	"github.com/knobula/knobula/pkg/framework/plugin"
	"github.com/knobula/knobula/pkg/framework/process"
)

// ErrInvalidOversampling is returned for factors other than 1, 2 and 4.
var ErrInvalidOversampling = errors.New("invalid oversampling factor")

// Supported host sample rates
const (
	MinSampleRate = 8000.0
	MaxSampleRate = 384000.0
)

// Output levels at or below this are treated as silence by auto gain.
const autoGainSilence = 0.001

// Chain stage names
const (
	StageFilters    = "filters"
	StageEQ         = "eq"
	StageHysteresis = "hysteresis"
)

// PluginInfo describes the processor.
var PluginInfo = plugin.Info{
	ID:       "com.knobula.mastering-eq",
	Name:     "Knobula",
	Version:  "1.0.0",
	Vendor:   "Knobula",
	Category: "Fx|EQ",
}

// Processor is the Knobula signal path:
//
//	input meter -> upsample -> filters -> EQ -> hysteresis -> downsample
//	            -> correlation -> output meter
//
// Parameters are read once per ProcessAudio call.
type Processor struct {
	*plugin.BaseProcessor

	logger *debug.Logger

	filters    *filter.FilterSection
	eq         *eq.PassiveEQ
	hysteresis *distortion.HysteresisProcessor
	chain      *fdsp.StereoChain

	oversampler *oversample.Oversampler
	factor      atomic.Int32

	inputMeter  *analysis.StereoVUMeter
	outputMeter *analysis.StereoVUMeter
	correlation *analysis.CorrelationMeter

	autoGain       *param.Smoother // dB
	autoGainRef    float64
	autoGainOffset dsp.AtomicFloat32

	ctx      *process.Context
	block    [][]float32
	monoView [][]float32
	prepared bool
}

// NewProcessor creates an unprepared processor with the factory parameter
// layout at its defaults.
func NewProcessor() (*Processor, error) {
	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(PluginInfo),
		logger:        debug.Default(),
		filters:       filter.NewFilterSection(),
		eq:            eq.NewPassiveEQ(),
		hysteresis:    distortion.NewHysteresisProcessor(),
		inputMeter:    analysis.NewStereoVUMeter(),
		outputMeter:   analysis.NewStereoVUMeter(),
		correlation:   analysis.NewCorrelationMeter(),
		autoGain:      param.NewRampSmoother(dsp.SampleRate48k, dsp.AutoGainSmoothing, 0),
		block:         make([][]float32, dsp.Stereo),
		monoView:      make([][]float32, 1),
	}
	p.factor.Store(1)

	if err := registerParameters(p.Parameters()); err != nil {
		return nil, err
	}

	chain, err := fdsp.NewStereoBuilder(PluginInfo.Name).
		WithProcessor(StageFilters, p.filters).
		WithProcessor(StageEQ, p.eq).
		WithProcessor(StageHysteresis, p.hysteresis).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build chain: %w", err)
	}
	p.chain = chain

	p.OnInitialize(p.prepare)
	p.OnReset(p.reset)
	return p, nil
}

// SetLogger replaces the logger used by Prepare.
func (p *Processor) SetLogger(l *debug.Logger) {
	if l != nil {
		p.logger = l
	}
}

// Prepare readies the processor for a stream. It must be called before
// processing and again after a sample rate or oversampling change.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize int) error {
	return p.Initialize(sampleRate, maxBlockSize)
}

func (p *Processor) prepare(sampleRate float64, maxBlockSize int) error {
	p.prepared = false
	if sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return fmt.Errorf("sample rate %g Hz outside [%g, %g]", sampleRate, MinSampleRate, MaxSampleRate)
	}
	if maxBlockSize > dsp.MaxBufferSize {
		return fmt.Errorf("block size %d exceeds %d", maxBlockSize, dsp.MaxBufferSize)
	}

	factor, err := oversample.FactorFromIndex(p.Parameters().Get(ParamOversampling).Index())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOversampling, err)
	}
	over, err := oversample.NewOversampler(dsp.Stereo, factor)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOversampling, err)
	}
	over.Prepare(maxBlockSize)

	p.oversampler = over
	p.factor.Store(int32(factor))
	p.SetLatencySamples(int(math.Round(over.Latency())))
	p.ctx = process.NewContext(maxBlockSize, p.Parameters())
	p.ctx.SampleRate = sampleRate

	p.autoGain.SetRampTime(sampleRate, dsp.AutoGainSmoothing)
	p.autoGain.Reset(0)
	p.autoGainRef = 0
	p.autoGainOffset.Store(0)

	// Targets first so the components snap to them.
	p.updateFromParameters(p.ctx, 0)

	internalRate := sampleRate * float64(factor)
	p.filters.Prepare(internalRate)
	p.eq.Prepare(internalRate)
	p.hysteresis.Prepare(internalRate)

	p.inputMeter.Prepare(sampleRate)
	p.outputMeter.Prepare(sampleRate)
	p.correlation.Reset()

	p.prepared = true
	p.logger.Info("prepared: %.0f Hz, block %d, oversampling %dx (internal %.0f Hz)",
		sampleRate, maxBlockSize, factor, internalRate)
	return nil
}

func (p *Processor) reset() {
	p.chain.Reset()
	if p.oversampler != nil {
		p.oversampler.Reset()
	}
	p.inputMeter.Reset()
	p.outputMeter.Reset()
	p.correlation.Reset()
	p.autoGain.Reset(0)
	p.autoGainRef = 0
	p.autoGainOffset.Store(0)
}

// NeedsPrepare reports whether the oversampling parameter differs from the
// factor the processor was prepared with.
func (p *Processor) NeedsPrepare() bool {
	if !p.prepared {
		return true
	}
	factor, err := oversample.FactorFromIndex(p.Parameters().Get(ParamOversampling).Index())
	return err != nil || factor != p.Oversampling()
}

// Oversampling returns the active oversampling factor.
func (p *Processor) Oversampling() int {
	return int(p.factor.Load())
}

// SetOversampling requests a factor of 1, 2 or 4. It takes effect at the
// next Prepare.
func (p *Processor) SetOversampling(factor int) error {
	if !oversample.ValidFactor(factor) {
		return fmt.Errorf("%w: %d", ErrInvalidOversampling, factor)
	}
	index := 0
	for f := factor; f > 1; f >>= 1 {
		index++
	}
	p.Parameters().Get(ParamOversampling).SetPlainValue(float64(index))
	return nil
}

// ApplyPreset loads a factory preset into the parameter registry.
func (p *Processor) ApplyPreset(name string) error {
	return ApplyPreset(p.Parameters(), name)
}

// SetMeterMode switches both level meters.
func (p *Processor) SetMeterMode(mode analysis.MeterMode) {
	p.inputMeter.SetMode(mode)
	p.outputMeter.SetMode(mode)
}

// MeterMode returns the level meter mode.
func (p *Processor) MeterMode() analysis.MeterMode {
	return p.outputMeter.Mode()
}

// Chain returns the processing chain.
func (p *Processor) Chain() *fdsp.StereoChain {
	return p.chain
}

// ProcessBlock processes buffers in place through the processor's own
// context. Mono buffers must not exceed the prepared block size.
func (p *Processor) ProcessBlock(buffers [][]float32) {
	if !p.prepared {
		return
	}
	p.ctx.Buffer = buffers
	p.ProcessAudio(p.ctx)
	p.ctx.Buffer = nil
}

// ProcessAudio processes the context's buffers in place. Unprepared
// processors and empty blocks leave the buffers untouched. Blocks longer
// than the prepared block size are processed in slices.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	if !p.prepared {
		return
	}
	if ctx.NumChannels() == 1 && ctx.NumSamples() > ctx.MaxBlockSize() {
		p.processMonoSlices(ctx)
		return
	}
	stereo := ctx.StereoBuffer()
	if stereo == nil {
		return
	}

	left, right := stereo[0], stereo[1]
	n := min(len(left), len(right))
	bypassed := ctx.ParamBool(ParamBypass)
	if !bypassed {
		p.updateFromParameters(ctx, n)
	}

	maxBlock := p.MaxBlockSize()
	for start := 0; start < n; start += maxBlock {
		end := min(start+maxBlock, n)
		p.block[0] = left[start:end]
		p.block[1] = right[start:end]
		p.processSlice(p.block, bypassed)
	}
	p.block[0], p.block[1] = nil, nil

	ctx.CommitStereo()
}

// processMonoSlices runs a mono block longer than the context's work
// buffers through ProcessAudio one work-buffer-sized slice at a time.
func (p *Processor) processMonoSlices(ctx *process.Context) {
	step := ctx.MaxBlockSize()
	if step <= 0 {
		return
	}
	buffer := ctx.Buffer
	full := buffer[0]
	for start := 0; start < len(full); start += step {
		p.monoView[0] = full[start:min(start+step, len(full))]
		ctx.Buffer = p.monoView
		p.ProcessAudio(ctx)
	}
	p.monoView[0] = nil
	ctx.Buffer = buffer
}

func (p *Processor) processSlice(block [][]float32, bypassed bool) {
	p.inputMeter.PushBlock(block)

	if !bypassed {
		up := p.oversampler.Upsample(block)
		p.chain.ProcessStereo(up[0], up[1])
		p.oversampler.Downsample(block)
	}

	p.correlation.ProcessBlock(block)
	p.outputMeter.PushBlock(block)
}

// updateFromParameters pushes the registry into the DSP components. With
// channel link on, channel 1 reads channel 0's band parameters.
func (p *Processor) updateFromParameters(ctx *process.Context, numSamples int) {
	offset := p.updateAutoGain(ctx.ParamBool(ParamAutoGain), numSamples)

	p.eq.SetInputGain(ctx.ParamPlain(ParamInputGain) + offset)
	p.eq.SetOutputTrim(ctx.ParamPlain(ParamOutputTrim))
	p.eq.SetMidSide(ctx.ParamIndex(ParamStereoMode) == StereoMS)

	linked := ctx.ParamBool(ParamChannelLink)
	p.eq.SetChannelLink(linked)

	p.filters.SetHPFEnabled(ctx.ParamBool(ParamHPFEnabled))
	p.filters.SetHPFFrequency(ctx.ParamPlain(ParamHPFFrequency))
	p.filters.SetLPFEnabled(ctx.ParamBool(ParamLPFEnabled))
	p.filters.SetLPFFrequency(ctx.ParamPlain(ParamLPFFrequency))

	p.hysteresis.SetEnabled(ctx.ParamBool(ParamHysteresisEnabled))
	p.hysteresis.SetTubeHarmonics(ctx.ParamPlain(ParamTubeHarmonics))
	p.hysteresis.SetTransformerSaturation(ctx.ParamPlain(ParamTransformerSaturation))
	p.hysteresis.SetMix(ctx.ParamPlain(ParamHysteresisMix))

	for band := 0; band < eq.NumBands; band++ {
		for ch := 0; ch < dsp.Stereo; ch++ {
			src := ch
			if linked {
				src = 0
			}
			curve := eq.Bell
			if eq.SupportsShelf(band) {
				curve = eq.CurveType(ctx.ParamIndex(BandParamID(band, src, FieldCurve)))
			}
			p.eq.SetBandParameters(ch, band,
				ctx.ParamPlain(BandParamID(band, src, FieldFrequency)),
				ctx.ParamPlain(BandParamID(band, src, FieldGain)),
				ctx.ParamPlain(BandParamID(band, src, FieldTrim)),
				curve,
				ctx.ParamBool(BandParamID(band, src, FieldEnabled)))
			p.eq.SetBandSolo(ch, band, ctx.ParamBool(BandParamID(band, src, FieldSolo)))
			p.eq.SetBandMute(ch, band, ctx.ParamBool(BandParamID(band, src, FieldMute)))
		}
	}
}

// updateAutoGain returns the input gain offset in dB. The first non-silent
// output level becomes the reference; afterwards the offset glides toward
// reference minus current level.
func (p *Processor) updateAutoGain(enabled bool, numSamples int) float64 {
	if !enabled {
		p.autoGainRef = 0
		p.autoGain.Reset(0)
		p.autoGainOffset.Store(0)
		return 0
	}

	current := (p.outputMeter.Channel(0).GetNormalizedLevel() +
		p.outputMeter.Channel(1).GetNormalizedLevel()) * 0.5

	if p.autoGainRef <= autoGainSilence {
		if current > autoGainSilence {
			p.autoGainRef = current
		}
		p.autoGainOffset.Store(0)
		return 0
	}

	p.autoGain.SetTarget(p.autoGainRef - current)
	offset := p.autoGain.Skip(numSamples)
	p.autoGainOffset.Store(float32(offset))
	return offset
}

// Readout is a snapshot of every read-only value the UI polls.
type Readout struct {
	InputLevelDB      [dsp.Stereo]float64
	OutputLevelDB     [dsp.Stereo]float64
	InputNormalized   [dsp.Stereo]float64
	OutputNormalized  [dsp.Stereo]float64
	OutputPeakDB      [dsp.Stereo]float64
	OutputPeak        [dsp.Stereo]float64
	InputEnvelope     [dsp.Stereo]float32
	OutputEnvelope    [dsp.Stereo]float32
	BandEnergy        [dsp.Stereo][eq.NumBands]float32
	Glow              float32
	Correlation       float64
	PhaseStatus       analysis.PhaseStatus
	AutoGainOffsetDB  float64
	MeterMode         analysis.MeterMode
	OversamplingRatio int
}

// Readout collects the current meter values. Safe to call from any
// goroutine while audio is processing.
func (p *Processor) Readout() Readout {
	r := Readout{
		Glow:              p.hysteresis.GetGlowIntensity(),
		Correlation:       p.correlation.GetCorrelation(),
		PhaseStatus:       p.correlation.GetPhaseStatus(),
		AutoGainOffsetDB:  float64(p.autoGainOffset.Load()),
		MeterMode:         p.outputMeter.Mode(),
		OversamplingRatio: p.Oversampling(),
	}
	for ch := 0; ch < dsp.Stereo; ch++ {
		in, out := p.inputMeter.Channel(ch), p.outputMeter.Channel(ch)
		r.InputLevelDB[ch] = in.GetLevelDB()
		r.OutputLevelDB[ch] = out.GetLevelDB()
		r.InputNormalized[ch] = in.GetNormalizedLevel()
		r.OutputNormalized[ch] = out.GetNormalizedLevel()
		r.OutputPeakDB[ch] = out.GetPeakDB()
		r.OutputPeak[ch] = out.GetNormalizedPeak()
		r.InputEnvelope[ch] = p.eq.GetInputLevel(ch)
		r.OutputEnvelope[ch] = p.eq.GetOutputLevel(ch)
		for band := 0; band < eq.NumBands; band++ {
			r.BandEnergy[ch][band] = p.eq.GetBandEnergy(ch, band)
		}
	}
	return r
}

var _ plugin.Processor = (*Processor)(nil)
