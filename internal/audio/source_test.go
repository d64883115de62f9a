package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/knobula/knobula/internal/wav"
)

// gainProcessor scales every channel and records the block sizes it saw.
type gainProcessor struct {
	gain   float32
	blocks []int
	chans  []int
}

func (g *gainProcessor) ProcessBlock(buffers [][]float32) {
	g.blocks = append(g.blocks, len(buffers[0]))
	g.chans = append(g.chans, len(buffers))
	for _, buf := range buffers {
		for i := range buf {
			buf[i] *= g.gain
		}
	}
}

func ramp(a *wav.Audio) {
	for ch := range a.Channels {
		for i := range a.Channels[ch] {
			a.Channels[ch][i] = float32(i+1) * float32(ch*2-1) / 100
		}
	}
}

func TestFileSourceStereo(t *testing.T) {
	a := wav.NewAudio(48000, 2, 10)
	ramp(a)
	proc := &gainProcessor{gain: 2}

	s, err := NewFileSource(a, proc, 4)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}

	dst := make([]float32, 2*12)
	s.Process(dst)

	for i := 0; i < 10; i++ {
		wantL := 2 * a.Channels[0][i]
		wantR := 2 * a.Channels[1][i]
		if dst[2*i] != wantL || dst[2*i+1] != wantR {
			t.Errorf("frame %d = (%v, %v), want (%v, %v)", i, dst[2*i], dst[2*i+1], wantL, wantR)
		}
	}
	for i := 20; i < len(dst); i++ {
		if dst[i] != 0 {
			t.Errorf("sample %d past end = %v, want 0", i, dst[i])
		}
	}

	wantBlocks := []int{4, 4, 2}
	if len(proc.blocks) != len(wantBlocks) {
		t.Fatalf("blocks = %v, want %v", proc.blocks, wantBlocks)
	}
	for i, n := range wantBlocks {
		if proc.blocks[i] != n {
			t.Errorf("block %d size = %d, want %d", i, proc.blocks[i], n)
		}
	}

	if !s.Finished() {
		t.Error("source should be finished")
	}
	if s.Progress() != 1 {
		t.Errorf("Progress() = %v, want 1", s.Progress())
	}
}

func TestFileSourceAcrossCalls(t *testing.T) {
	a := wav.NewAudio(48000, 2, 9)
	ramp(a)
	s, err := NewFileSource(a, &gainProcessor{gain: 1}, 4)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}

	// Odd request sizes straddle block boundaries
	var got []float32
	for _, frames := range []int{3, 3, 3} {
		dst := make([]float32, 2*frames)
		s.Process(dst)
		got = append(got, dst...)
		if s.Finished() {
			t.Fatalf("finished early after %d samples", len(got))
		}
	}
	for i := 0; i < 9; i++ {
		if got[2*i] != a.Channels[0][i] {
			t.Errorf("frame %d left = %v, want %v", i, got[2*i], a.Channels[0][i])
		}
	}

	s.Process(make([]float32, 2))
	if !s.Finished() {
		t.Error("source should be finished after reading past the end")
	}
}

func TestFileSourceMono(t *testing.T) {
	a := wav.NewAudio(44100, 1, 4)
	ramp(a)
	proc := &gainProcessor{gain: 0.5}
	s, err := NewFileSource(a, proc, 8)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}

	dst := make([]float32, 8)
	s.Process(dst)
	for i := 0; i < 4; i++ {
		want := 0.5 * a.Channels[0][i]
		if dst[2*i] != want || dst[2*i+1] != want {
			t.Errorf("frame %d = (%v, %v), want %v on both", i, dst[2*i], dst[2*i+1], want)
		}
	}
	if proc.chans[0] != 1 {
		t.Errorf("processor saw %d channels, want 1", proc.chans[0])
	}
}

func TestFileSourceProgress(t *testing.T) {
	a := wav.NewAudio(1000, 2, 1000)
	s, err := NewFileSource(a, &gainProcessor{gain: 1}, 250)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}

	s.Process(make([]float32, 2*250))
	if math.Abs(s.Progress()-0.25) > 1e-9 {
		t.Errorf("Progress() = %v, want 0.25", s.Progress())
	}
	if s.Elapsed() != 250*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 250ms", s.Elapsed())
	}
}

func TestNewFileSourceNoChannels(t *testing.T) {
	if _, err := NewFileSource(&wav.Audio{SampleRate: 48000}, &gainProcessor{}, 64); !errors.Is(err, ErrNoChannels) {
		t.Errorf("error = %v, want ErrNoChannels", err)
	}
}

type constSource struct {
	value float32
	done  bool
}

func (c *constSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = c.value
	}
}

func (c *constSource) Finished() bool { return c.done }

func TestStreamReader(t *testing.T) {
	src := &constSource{value: 0.25}
	r := NewStreamReader(src)

	p := make([]byte, 3*bytesPerFrame+3)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 3*bytesPerFrame {
		t.Errorf("n = %d, want %d", n, 3*bytesPerFrame)
	}
	for i := 0; i < n; i += 4 {
		if v := math.Float32frombits(binary.LittleEndian.Uint32(p[i:])); v != 0.25 {
			t.Fatalf("sample at byte %d = %v", i, v)
		}
	}

	if n, err := r.Read(make([]byte, 4)); n != 0 || err != nil {
		t.Errorf("short read = (%d, %v), want (0, nil)", n, err)
	}

	src.done = true
	if _, err := r.Read(p); err != io.EOF {
		t.Errorf("finished source error = %v, want io.EOF", err)
	}
}
