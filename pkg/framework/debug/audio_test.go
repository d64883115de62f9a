package debug

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestAudioAnalyzer(t *testing.T) {
	analyzer := NewAudioAnalyzer()

	t.Run("Sine", func(t *testing.T) {
		buffer := make([]float32, 1000)
		for i := range buffer {
			buffer[i] = float32(0.5 * math.Sin(2*math.Pi*10*float64(i)/1000))
		}

		result := analyzer.Analyze(buffer)

		if math.Abs(float64(result.Peak)-0.5) > 0.01 {
			t.Errorf("Expected peak ~0.5, got %f", result.Peak)
		}
		if math.Abs(float64(result.RMS)-0.5/math.Sqrt2) > 0.01 {
			t.Errorf("Expected RMS ~0.354, got %f", result.RMS)
		}
		if math.Abs(float64(result.DC)) > 0.001 {
			t.Errorf("Expected no DC, got %f", result.DC)
		}
		if result.Clipping() || result.Silent || result.NonFinite != 0 {
			t.Error("Clean sine should have no issues")
		}
		if len(analyzer.Issues(result, "sine")) != 0 {
			t.Error("Clean sine should report no issues")
		}
	})

	t.Run("Problems", func(t *testing.T) {
		buffer := []float32{1.2, -1.0, float32(math.NaN()), float32(math.Inf(1)), 0.5}
		result := analyzer.Analyze(buffer)

		if result.NonFinite != 2 {
			t.Errorf("NonFinite = %d, want 2", result.NonFinite)
		}
		if result.ClippedSamples != 2 {
			t.Errorf("ClippedSamples = %d, want 2", result.ClippedSamples)
		}
		if result.Samples != 3 {
			t.Errorf("Samples = %d, want 3", result.Samples)
		}

		issues := strings.Join(analyzer.Issues(result, "out"), "\n")
		for _, want := range []string{"NaN/Inf", "clipping", "DC offset", "peak exceeds"} {
			if !strings.Contains(issues, want) {
				t.Errorf("Issues missing %q: %s", want, issues)
			}
		}
	})

	t.Run("Accumulate", func(t *testing.T) {
		var result AnalysisResult
		analyzer.Accumulate(&result, []float32{0.5, 0.5})
		analyzer.Accumulate(&result, []float32{-0.5, -0.5})

		if result.Samples != 4 || result.DC != 0 || result.RMS != 0.5 {
			t.Errorf("Unexpected accumulated result %+v", result)
		}
	})

	t.Run("Silence", func(t *testing.T) {
		result := analyzer.Analyze(make([]float32, 64))
		if !result.Silent {
			t.Error("Zeros should be silent")
		}
	})

	t.Run("Threshold", func(t *testing.T) {
		a := NewAudioAnalyzer()
		a.SetClippingThreshold(0.4)
		if a.Analyze([]float32{0.5}).ClippedSamples != 1 {
			t.Error("Custom threshold not applied")
		}
	})
}

func TestCompareBuffers(t *testing.T) {
	a := []float32{0.1, 0.2, 0.3}

	if d := CompareBuffers(a, []float32{0.1, 0.2, 0.3}, 0); !d.Identical() {
		t.Errorf("Identical buffers reported %s", d)
	}

	d := CompareBuffers(a, []float32{0.1, 0.25, 0.3}, 0.01)
	if d.Identical() || d.Count != 1 || d.MaxIndex != 1 {
		t.Errorf("Unexpected diff %+v", d)
	}
	if !strings.Contains(d.String(), "1 samples differ") {
		t.Errorf("Unexpected description %q", d.String())
	}

	if d := CompareBuffers(a, a[:2], 0); !d.LengthMismatch || d.Identical() {
		t.Error("Length mismatch not reported")
	}
}

func TestLogStats(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "", FlagLevel)
	analyzer := NewAudioAnalyzer()

	analyzer.LogStats(logger, analyzer.Analyze([]float32{1.0, 1.0}), "render")

	output := buf.String()
	if !strings.Contains(output, "[INFO] render: 2 samples") {
		t.Errorf("Missing stats line: %s", output)
	}
	if !strings.Contains(output, "[WARN] render: clipping") {
		t.Errorf("Missing clipping warning: %s", output)
	}
}
