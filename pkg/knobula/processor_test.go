package knobula

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/knobula/knobula/pkg/dsp/analysis"
	"github.com/knobula/knobula/pkg/dsp/gain"
	"github.com/knobula/knobula/pkg/framework/debug"
	"github.com/knobula/knobula/pkg/framework/process"
)

const (
	testRate  = 48000.0
	testBlock = 480
)

func newTestProcessor(t testing.TB) *Processor {
	t.Helper()
	p, err := NewProcessor()
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	p.SetLogger(debug.New(io.Discard, "", 0))
	return p
}

func prepared(t testing.TB, settings map[string]float64) *Processor {
	t.Helper()
	p := newTestProcessor(t)
	for key, value := range settings {
		if err := p.Parameters().SetPlain(key, value); err != nil {
			t.Fatalf("SetPlain(%s): %v", key, err)
		}
	}
	if err := p.Prepare(testRate, testBlock); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return p
}

// sineSource produces a continuous sine across blocks.
type sineSource struct {
	freq, amp float64
	n         int
}

func (s *sineSource) next(size int) []float32 {
	out := make([]float32, size)
	for i := range out {
		out[i] = float32(s.amp * math.Sin(2*math.Pi*s.freq*float64(s.n)/testRate))
		s.n++
	}
	return out
}

func stereoBlock(src *sineSource, size int) [][]float32 {
	left := src.next(size)
	right := make([]float32, size)
	copy(right, left)
	return [][]float32{left, right}
}

func cloneBlock(buffers [][]float32) [][]float32 {
	out := make([][]float32, len(buffers))
	for ch, buf := range buffers {
		out[ch] = append([]float32(nil), buf...)
	}
	return out
}

func rms(buf []float32) float64 {
	sum := 0.0
	for _, s := range buf {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(buf)))
}

func TestPrepareValidation(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		block int
	}{
		{"zero rate", 0, 512},
		{"negative block", 48000, -1},
		{"rate too low", 4000, 512},
		{"rate too high", 768000, 512},
		{"block too large", 48000, 1 << 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t)
			if err := p.Prepare(tt.rate, tt.block); err == nil {
				t.Error("expected error")
			}
			if !p.NeedsPrepare() {
				t.Error("failed Prepare should leave the processor unprepared")
			}
		})
	}
}

func TestUnpreparedIsNoop(t *testing.T) {
	p := newTestProcessor(t)
	buffers := stereoBlock(&sineSource{freq: 1000, amp: 0.5}, 64)
	want := cloneBlock(buffers)

	p.ProcessBlock(buffers)

	for ch := range buffers {
		if d := debug.CompareBuffers(want[ch], buffers[ch], 0); !d.Identical() {
			t.Errorf("channel %d modified: %v", ch, d)
		}
	}
}

func TestDefaultsAreTransparent(t *testing.T) {
	p := prepared(t, nil)
	src := &sineSource{freq: 1000, amp: 0.5}

	for i := 0; i < 10; i++ {
		buffers := stereoBlock(src, testBlock)
		want := cloneBlock(buffers)
		p.ProcessBlock(buffers)
		for ch := range buffers {
			if d := debug.CompareBuffers(want[ch], buffers[ch], 1e-6); !d.Identical() {
				t.Fatalf("block %d channel %d: %v", i, ch, d)
			}
		}
	}
}

func TestInputGain(t *testing.T) {
	p := prepared(t, map[string]float64{"inputGain": 6})
	g := float32(gain.DbToLinear(6))

	buffers := stereoBlock(&sineSource{freq: 1000, amp: 0.25}, testBlock)
	want := cloneBlock(buffers)
	p.ProcessBlock(buffers)

	for ch := range buffers {
		for i := range buffers[ch] {
			if math.Abs(float64(buffers[ch][i]-want[ch][i]*g)) > 1e-5 {
				t.Fatalf("channel %d sample %d = %v, want %v", ch, i, buffers[ch][i], want[ch][i]*g)
			}
		}
	}
}

func TestLargeBlocksAreProcessedInSlices(t *testing.T) {
	p := newTestProcessor(t)
	if err := p.Parameters().SetPlain("inputGain", 6); err != nil {
		t.Fatal(err)
	}
	if err := p.Prepare(testRate, 64); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	g := float32(gain.DbToLinear(6))

	buffers := stereoBlock(&sineSource{freq: 1000, amp: 0.25}, 256)
	want := cloneBlock(buffers)
	p.ProcessBlock(buffers)

	for i := range buffers[0] {
		if math.Abs(float64(buffers[0][i]-want[0][i]*g)) > 1e-5 {
			t.Fatalf("sample %d not processed: %v, want %v", i, buffers[0][i], want[0][i]*g)
		}
	}
}

func TestMonoBlock(t *testing.T) {
	p := prepared(t, map[string]float64{"inputGain": 6})
	g := float32(gain.DbToLinear(6))

	mono := (&sineSource{freq: 1000, amp: 0.25}).next(testBlock)
	want := append([]float32(nil), mono...)

	ctx := process.NewContext(testBlock, p.Parameters())
	ctx.Buffer = [][]float32{mono}
	p.ProcessAudio(ctx)

	for i := range mono {
		if math.Abs(float64(mono[i]-want[i]*g)) > 1e-5 {
			t.Fatalf("sample %d = %v, want %v", i, mono[i], want[i]*g)
		}
	}
	if r := p.Readout(); r.Correlation < 0.99 {
		t.Errorf("mono source should correlate fully, got %v", r.Correlation)
	}
}

func TestLargeMonoBlock(t *testing.T) {
	g := float32(gain.DbToLinear(6))

	tests := []struct {
		name string
		run  func(p *Processor, mono []float32)
	}{
		{"ProcessBlock", func(p *Processor, mono []float32) {
			p.ProcessBlock([][]float32{mono})
		}},
		{"ProcessAudio", func(p *Processor, mono []float32) {
			ctx := process.NewContext(testBlock, p.Parameters())
			ctx.Buffer = [][]float32{mono}
			p.ProcessAudio(ctx)
			if len(ctx.Buffer) != 1 || len(ctx.Buffer[0]) != len(mono) {
				t.Error("context buffer should be restored after slicing")
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := prepared(t, map[string]float64{"inputGain": 6})
			mono := (&sineSource{freq: 1000, amp: 0.25}).next(testBlock*2 + 100)
			want := append([]float32(nil), mono...)

			tt.run(p, mono)

			for i := range mono {
				if math.Abs(float64(mono[i]-want[i]*g)) > 1e-5 {
					t.Fatalf("sample %d = %v, want %v", i, mono[i], want[i]*g)
				}
			}
		})
	}
}

func TestBypass(t *testing.T) {
	p := prepared(t, map[string]float64{
		"inputGain":    12,
		"band1_gain_0": 10,
		"hystEnabled":  1,
		"bypass":       1,
	})
	src := &sineSource{freq: 1000, amp: 0.5}

	for i := 0; i < 5; i++ {
		buffers := stereoBlock(src, testBlock)
		want := cloneBlock(buffers)
		p.ProcessBlock(buffers)
		for ch := range buffers {
			if d := debug.CompareBuffers(want[ch], buffers[ch], 0); !d.Identical() {
				t.Fatalf("bypassed block changed: %v", d)
			}
		}
	}

	r := p.Readout()
	if r.InputLevelDB[0] <= -60 || r.OutputLevelDB[1] <= -60 {
		t.Errorf("meters should run while bypassed: in %v out %v", r.InputLevelDB, r.OutputLevelDB)
	}
}

func TestChannelLink(t *testing.T) {
	t.Run("linked", func(t *testing.T) {
		p := prepared(t, map[string]float64{
			"band1_gain_0": 10,
			"band1_gain_1": -10,
		})
		src := &sineSource{freq: 400, amp: 0.25}
		var buffers [][]float32
		for i := 0; i < 10; i++ {
			buffers = stereoBlock(src, testBlock)
			p.ProcessBlock(buffers)
		}
		if d := debug.CompareBuffers(buffers[0], buffers[1], 1e-7); !d.Identical() {
			t.Errorf("linked channels differ: %v", d)
		}
		if rms(buffers[0]) < 0.25/math.Sqrt2*2 {
			t.Errorf("channel 0 boost missing: rms %v", rms(buffers[0]))
		}
	})

	t.Run("unlinked", func(t *testing.T) {
		p := prepared(t, map[string]float64{
			"channelLink":  0,
			"band1_gain_0": 10,
		})
		src := &sineSource{freq: 400, amp: 0.25}
		var buffers [][]float32
		for i := 0; i < 10; i++ {
			buffers = stereoBlock(src, testBlock)
			p.ProcessBlock(buffers)
		}
		left, right := rms(buffers[0]), rms(buffers[1])
		if left < right*2 {
			t.Errorf("expected only channel 0 boosted: left %v right %v", left, right)
		}
		if math.Abs(right-0.25/math.Sqrt2) > 0.01 {
			t.Errorf("channel 1 should be flat: rms %v", right)
		}
	})
}

func TestOversampling(t *testing.T) {
	p := newTestProcessor(t)

	if err := p.SetOversampling(3); !errors.Is(err, ErrInvalidOversampling) {
		t.Errorf("SetOversampling(3) error = %v, want ErrInvalidOversampling", err)
	}
	if err := p.Prepare(testRate, testBlock); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if p.Oversampling() != 1 || p.NeedsPrepare() {
		t.Fatalf("default oversampling = %d, NeedsPrepare %v", p.Oversampling(), p.NeedsPrepare())
	}
	if p.GetLatencySamples() != 0 {
		t.Errorf("1x latency = %d, want 0", p.GetLatencySamples())
	}

	for _, factor := range []int{2, 4} {
		if err := p.SetOversampling(factor); err != nil {
			t.Fatalf("SetOversampling(%d): %v", factor, err)
		}
		if !p.NeedsPrepare() {
			t.Errorf("factor %d: NeedsPrepare should be true before Prepare", factor)
		}
		if err := p.Prepare(testRate, testBlock); err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if p.Oversampling() != factor || p.NeedsPrepare() {
			t.Errorf("after Prepare: factor %d, NeedsPrepare %v", p.Oversampling(), p.NeedsPrepare())
		}
		if got := p.Readout().OversamplingRatio; got != factor {
			t.Errorf("Readout().OversamplingRatio = %d, want %d", got, factor)
		}
		if got, want := p.GetLatencySamples(), map[int]int{2: 31, 4: 47}[factor]; got != want {
			t.Errorf("factor %d: latency %d samples, want %d", factor, got, want)
		}

		src := &sineSource{freq: 1000, amp: 0.5}
		var buffers [][]float32
		for i := 0; i < 20; i++ {
			buffers = stereoBlock(src, testBlock)
			p.ProcessBlock(buffers)
		}
		ratio := 20 * math.Log10(rms(buffers[0])/(0.5/math.Sqrt2))
		if math.Abs(ratio) > 0.5 {
			t.Errorf("factor %d: passband level off by %.2f dB", factor, ratio)
		}
	}
}

func TestCorrelationReadout(t *testing.T) {
	tests := []struct {
		name   string
		invert bool
		want   float64
		status analysis.PhaseStatus
	}{
		{"in phase", false, 1, analysis.PhaseInPhase},
		{"inverted", true, -1, analysis.PhaseOutOfPhase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := prepared(t, nil)
			buffers := stereoBlock(&sineSource{freq: 1000, amp: 0.5}, testBlock)
			if tt.invert {
				for i := range buffers[1] {
					buffers[1][i] = -buffers[1][i]
				}
			}
			p.ProcessBlock(buffers)

			r := p.Readout()
			if math.Abs(r.Correlation-tt.want) > 0.01 {
				t.Errorf("Correlation = %v, want %v", r.Correlation, tt.want)
			}
			if r.PhaseStatus != tt.status {
				t.Errorf("PhaseStatus = %v, want %v", r.PhaseStatus, tt.status)
			}
		})
	}
}

func TestAutoGain(t *testing.T) {
	p := prepared(t, nil)
	src := &sineSource{freq: 1000, amp: 0.5}
	run := func(blocks int) {
		for i := 0; i < blocks; i++ {
			p.ProcessBlock(stereoBlock(src, testBlock))
		}
	}

	run(50)
	if got := p.Readout().AutoGainOffsetDB; got != 0 {
		t.Fatalf("disabled offset = %v", got)
	}

	if err := p.Parameters().SetPlain("autoGainComp", 1); err != nil {
		t.Fatal(err)
	}
	run(50)
	if got := p.Readout().AutoGainOffsetDB; math.Abs(got) > 0.02 {
		t.Errorf("steady-state offset = %v, want ~0", got)
	}

	// A 12 dB drop moves the normalized RMS reading down by 0.2.
	if err := p.Parameters().SetPlain("outputTrim", -12); err != nil {
		t.Fatal(err)
	}
	run(100)
	if got := p.Readout().AutoGainOffsetDB; got < 0.1 || got > 0.25 {
		t.Errorf("compensating offset = %v, want in (0.1, 0.25)", got)
	}

	if err := p.Parameters().SetPlain("autoGainComp", 0); err != nil {
		t.Fatal(err)
	}
	run(1)
	if got := p.Readout().AutoGainOffsetDB; got != 0 {
		t.Errorf("offset after disabling = %v", got)
	}
}

func TestGlowReadout(t *testing.T) {
	p := prepared(t, nil)
	if g := p.Readout().Glow; g != 0 {
		t.Errorf("glow with hysteresis off = %v", g)
	}

	p = prepared(t, map[string]float64{"hystEnabled": 1, "tubeHarmonics": 50})
	p.ProcessBlock(stereoBlock(&sineSource{freq: 1000, amp: 0.5}, testBlock))
	if g := p.Readout().Glow; g <= 0 || g > 1 {
		t.Errorf("glow = %v, want (0, 1]", g)
	}
}

func TestBandEnergyReadout(t *testing.T) {
	p := prepared(t, map[string]float64{"band2_gain_0": 6})
	src := &sineSource{freq: 2500, amp: 0.5}
	for i := 0; i < 10; i++ {
		p.ProcessBlock(stereoBlock(src, testBlock))
	}

	r := p.Readout()
	for ch := 0; ch < 2; ch++ {
		if r.BandEnergy[ch][2] <= 0 {
			t.Errorf("channel %d HMF energy = %v", ch, r.BandEnergy[ch][2])
		}
		if r.OutputEnvelope[ch] <= r.InputEnvelope[ch] {
			t.Errorf("channel %d output envelope %v should exceed input %v",
				ch, r.OutputEnvelope[ch], r.InputEnvelope[ch])
		}
	}
}

func TestMeterModeAndReset(t *testing.T) {
	p := prepared(t, nil)
	src := &sineSource{freq: 1000, amp: 0.5}
	for i := 0; i < 20; i++ {
		p.ProcessBlock(stereoBlock(src, testBlock))
	}

	p.SetMeterMode(analysis.ModePeak)
	if p.MeterMode() != analysis.ModePeak || p.Readout().MeterMode != analysis.ModePeak {
		t.Errorf("meter mode = %v", p.MeterMode())
	}
	if db := p.Readout().OutputLevelDB[0]; db <= -60 {
		t.Errorf("peak reading after switch = %v", db)
	}

	p.Reset()
	r := p.Readout()
	if r.OutputLevelDB[0] != -60 || r.OutputPeakDB[1] != -60 || r.Correlation != 0 {
		t.Errorf("after Reset: level %v peak %v corr %v", r.OutputLevelDB[0], r.OutputPeakDB[1], r.Correlation)
	}
}

func TestChainStages(t *testing.T) {
	p := newTestProcessor(t)
	want := []string{StageFilters, StageEQ, StageHysteresis}
	got := p.Chain().Stages()
	if len(got) != len(want) {
		t.Fatalf("Stages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, got[i], want[i])
		}
	}
	if p.Info().Name != "Knobula" {
		t.Errorf("Info().Name = %q", p.Info().Name)
	}
}

func BenchmarkProcessBlock(b *testing.B) {
	for _, factor := range []int{1, 2, 4} {
		b.Run(map[int]string{1: "1x", 2: "2x", 4: "4x"}[factor], func(b *testing.B) {
			p := newTestProcessor(b)
			_ = p.SetOversampling(factor)
			_ = p.Parameters().SetPlain("band1_gain_0", 3)
			_ = p.Parameters().SetPlain("hystEnabled", 1)
			_ = p.Parameters().SetPlain("tubeHarmonics", 30)
			if err := p.Prepare(testRate, 512); err != nil {
				b.Fatal(err)
			}
			buffers := stereoBlock(&sineSource{freq: 1000, amp: 0.5}, 512)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.ProcessBlock(buffers)
			}
		})
	}
}
