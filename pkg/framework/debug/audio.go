package debug

import (
	"fmt"
	"math"

	"github.com/knobula/knobula/pkg/dsp"
)

// AudioAnalyzer inspects audio buffers for non-finite samples, clipping,
// DC offset and silence.
type AudioAnalyzer struct {
	clippingThreshold float32
	dcThreshold       float32
	silenceThreshold  float32
}

// NewAudioAnalyzer creates a new audio analyzer with default settings.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		clippingThreshold: dsp.ClipThreshold,
		dcThreshold:       0.01,
		silenceThreshold:  0.0001,
	}
}

// SetClippingThreshold sets the absolute level counted as clipped.
func (a *AudioAnalyzer) SetClippingThreshold(threshold float32) {
	a.clippingThreshold = threshold
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	NonFinite      int
	Silent         bool

	sum        float64
	sumSquares float64
}

// Clipping reports whether any sample reached the clipping threshold.
func (r AnalysisResult) Clipping() bool {
	return r.ClippedSamples > 0
}

// Analyze performs analysis on a single audio buffer.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	var result AnalysisResult
	a.Accumulate(&result, buffer)
	return result
}

// Accumulate folds buffer into a running result, so a whole render can be
// summarized block by block.
func (a *AudioAnalyzer) Accumulate(result *AnalysisResult, buffer []float32) {
	for _, sample := range buffer {
		f := float64(sample)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			result.NonFinite++
			continue
		}

		abs := float32(math.Abs(f))
		if abs > result.Peak {
			result.Peak = abs
		}
		if abs >= a.clippingThreshold {
			result.ClippedSamples++
		}

		result.sum += f
		result.sumSquares += f * f
		result.Samples++
	}

	if result.Samples > 0 {
		n := float64(result.Samples)
		result.RMS = float32(math.Sqrt(result.sumSquares / n))
		result.DC = float32(result.sum / n)
	}
	result.Silent = result.RMS < a.silenceThreshold
}

// Issues lists the problems found in a result, each prefixed with name.
func (a *AudioAnalyzer) Issues(result AnalysisResult, name string) []string {
	var issues []string

	if result.NonFinite > 0 {
		issues = append(issues, fmt.Sprintf("%s: contains %d NaN/Inf values", name, result.NonFinite))
	}
	if result.Clipping() {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, result.ClippedSamples))
	}
	if math.Abs(float64(result.DC)) > float64(a.dcThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}
	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: peak exceeds 1.0 (%.3f)", name, result.Peak))
	}

	return issues
}

// BufferDiff summarizes the sample-wise difference of two buffers.
type BufferDiff struct {
	LengthMismatch bool
	Count          int
	MaxDiff        float32
	MaxIndex       int
}

// Identical reports whether no sample differed beyond the tolerance.
func (d BufferDiff) Identical() bool {
	return !d.LengthMismatch && d.Count == 0
}

// String describes the difference.
func (d BufferDiff) String() string {
	switch {
	case d.LengthMismatch:
		return "buffer length mismatch"
	case d.Count == 0:
		return "buffers are identical within tolerance"
	}
	return fmt.Sprintf("%d samples differ, max %.6f at sample %d", d.Count, d.MaxDiff, d.MaxIndex)
}

// CompareBuffers compares two audio buffers sample by sample.
func CompareBuffers(a, b []float32, tolerance float32) BufferDiff {
	if len(a) != len(b) {
		return BufferDiff{LengthMismatch: true}
	}

	var d BufferDiff
	for i := range a {
		diff := float32(math.Abs(float64(a[i] - b[i])))
		if diff > tolerance {
			d.Count++
			if diff > d.MaxDiff {
				d.MaxDiff = diff
				d.MaxIndex = i
			}
		}
	}
	return d
}

// LogStats logs a result through l at Info, with problems at Warn.
func (a *AudioAnalyzer) LogStats(l *Logger, result AnalysisResult, name string) {
	l.Info("%s: %d samples, peak %.3f, RMS %.3f, DC %.6f", name, result.Samples, result.Peak, result.RMS, result.DC)
	if result.Silent {
		l.Info("%s: silent", name)
	}
	for _, issue := range a.Issues(result, name) {
		l.Warn("%s", issue)
	}
}
