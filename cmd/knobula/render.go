package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knobula/knobula/internal/cli"
	"github.com/knobula/knobula/internal/wav"
	"github.com/knobula/knobula/pkg/framework/debug"
	"github.com/knobula/knobula/pkg/knobula"
)

// RenderCmd processes a file offline.
type RenderCmd struct {
	ChainOptions

	Input  string `arg:"" help:"Input WAV file." type:"existingfile"`
	Output string `arg:"" optional:"" help:"Output WAV file. Defaults to <input>-knobula.wav." type:"path"`
	Report bool   `help:"Print a processing performance report."`
}

// Run renders the input and prints a level summary.
func (r *RenderCmd) Run(g *Globals) error {
	logger := g.Logger()
	ctx, cancel := signalContext(logger)
	defer cancel()

	s, err := r.openSession(r.Input, logger)
	if err != nil {
		return err
	}

	res, err := render(ctx, s)
	if err != nil {
		return err
	}

	out := r.Output
	if out == "" {
		out = outputName(r.Input)
	}
	if err := wav.WriteFile(out, res.audio); err != nil {
		return err
	}

	analyzer := debug.NewAudioAnalyzer()
	analyzer.LogStats(logger, res.input, "input")
	analyzer.LogStats(logger, res.output, "output")

	printRenderSummary(r.Input, out, res)
	for _, issue := range analyzer.Issues(res.output, "output") {
		fmt.Println(cli.ErrorStyle.Render("! ") + issue)
	}
	if r.Report {
		fmt.Println()
		fmt.Print(res.profiler.AudioReport())
	}
	return nil
}

// renderResult holds a rendered file with its statistics.
type renderResult struct {
	audio    *wav.Audio
	input    debug.AnalysisResult
	output   debug.AnalysisResult
	profiler *debug.AudioProcessProfiler
	readout  knobula.Readout
}

// render processes a copy of the session input block by block.
func render(ctx context.Context, s *session) (*renderResult, error) {
	in := s.input
	out := wav.NewAudio(in.SampleRate, in.NumChannels(), in.Frames())
	for ch := range in.Channels {
		copy(out.Channels[ch], in.Channels[ch])
	}

	res := &renderResult{
		audio:    out,
		profiler: debug.NewAudioProcessProfiler(float64(in.SampleRate), s.blockSize),
	}
	analyzer := debug.NewAudioAnalyzer()

	block := make([][]float32, out.NumChannels())
	frames := out.Frames()
	for start := 0; start < frames; start += s.blockSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render interrupted: %w", err)
		}

		end := min(start+s.blockSize, frames)
		for ch := range block {
			block[ch] = out.Channels[ch][start:end]
			analyzer.Accumulate(&res.input, block[ch])
		}

		res.profiler.MeasureBlock(end-start, func() {
			s.proc.ProcessBlock(block)
		})

		for ch := range block {
			analyzer.Accumulate(&res.output, block[ch])
		}
	}

	res.readout = s.proc.Readout()
	return res, nil
}

func printRenderSummary(in, out string, res *renderResult) {
	fmt.Println(cli.TitleStyle.Render("Knobula Render"))

	r := res.readout
	cli.PrintKeyValues(os.Stdout, [][2]string{
		{"Input", in},
		{"Output", out},
		{"Duration", res.audio.Duration().String()},
		{"Oversampling", fmt.Sprintf("%dx", r.OversamplingRatio)},
		{"Input peak", fmt.Sprintf("%.3f (RMS %.3f)", res.input.Peak, res.input.RMS)},
		{"Output peak", fmt.Sprintf("%.3f (RMS %.3f)", res.output.Peak, res.output.RMS)},
		{"Correlation", fmt.Sprintf("%+.2f %s", r.Correlation, r.PhaseStatus)},
		{"Auto gain", fmt.Sprintf("%+.2f dB", r.AutoGainOffsetDB)},
		{"CPU load", fmt.Sprintf("%.2f%% (%d overruns)", res.profiler.GetCPULoad(), res.profiler.GetOverruns())},
	})
}

// outputName derives the default output path from the input path
func outputName(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-knobula.wav"
}
