package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/knobula/knobula/pkg/dsp/analysis"
	"github.com/knobula/knobula/pkg/knobula"
)

type fakeSource struct {
	mode  analysis.MeterMode
	polls int
	level float64
}

func (f *fakeSource) Readout() knobula.Readout {
	f.polls++
	r := knobula.Readout{MeterMode: f.mode, OversamplingRatio: 2, Correlation: 1, PhaseStatus: analysis.PhaseInPhase}
	r.OutputNormalized[0] = f.level
	return r
}

func (f *fakeSource) MeterMode() analysis.MeterMode { return f.mode }
func (f *fakeSource) SetMeterMode(mode analysis.MeterMode) { f.mode = mode }

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestTickPolls(t *testing.T) {
	src := &fakeSource{}
	m := NewModel("Knobula", "mix.wav", src, func() float64 { return 0.5 })
	if src.polls != 1 {
		t.Fatalf("NewModel polled %d times, want 1", src.polls)
	}

	src.level = 0.75
	next, cmd := m.Update(tickMsg(time.Now()))
	got := next.(Model)
	if got.Readout.OutputNormalized[0] != 0.75 {
		t.Errorf("readout not refreshed: %v", got.Readout.OutputNormalized[0])
	}
	if got.Progress != 0.5 {
		t.Errorf("Progress = %v, want 0.5", got.Progress)
	}
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		t.Run(msg.String(), func(t *testing.T) {
			m := NewModel("Knobula", "", &fakeSource{}, nil)
			if _, cmd := m.Update(msg); !isQuit(cmd) {
				t.Errorf("%q should quit", msg.String())
			}
		})
	}
}

func TestMeterModeKey(t *testing.T) {
	src := &fakeSource{mode: analysis.ModeRMS}
	m := NewModel("Knobula", "", src, nil)

	next, _ := m.Update(key("m"))
	if src.mode != analysis.ModePeak {
		t.Errorf("mode = %v, want Peak", src.mode)
	}
	if next.(Model).Readout.MeterMode != analysis.ModePeak {
		t.Error("readout should reflect the new mode immediately")
	}

	for i := 0; i < 3; i++ {
		next, _ = next.Update(key("m"))
	}
	if src.mode != analysis.ModeRMS {
		t.Errorf("mode after full cycle = %v, want RMS", src.mode)
	}
}

func TestDoneQuits(t *testing.T) {
	m := NewModel("Knobula", "", &fakeSource{}, nil)
	errStream := errors.New("device lost")

	next, cmd := m.Update(DoneMsg{Err: errStream})
	if !isQuit(cmd) {
		t.Error("DoneMsg should quit")
	}
	got := next.(Model)
	if !got.Done || !errors.Is(got.Err, errStream) {
		t.Errorf("Done = %v, Err = %v", got.Done, got.Err)
	}
	if !strings.Contains(got.View(), "device lost") {
		t.Error("view should show the error")
	}

	// Late ticks stop the ticker
	if _, cmd := got.Update(tickMsg(time.Now())); cmd != nil {
		t.Error("tick after done should not reschedule")
	}
}

func TestView(t *testing.T) {
	m := NewModel("Knobula", "mix.wav", &fakeSource{mode: analysis.ModeVU}, func() float64 { return 0.25 })
	view := m.View()

	for _, want := range []string{"Knobula", "mix.wav", "Levels (VU)", "Correlation", "In Phase", "LMF", "Oversampling 2x", "25%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		level  float64
		filled int
	}{
		{-1, 0},
		{0, 0},
		{0.5, 5},
		{1, 10},
		{2, 10},
	}

	for _, tt := range tests {
		bar := renderBar(tt.level, 10)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("renderBar(%v) filled %d, want %d", tt.level, got, tt.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 10 {
			t.Errorf("renderBar(%v) width %d, want 10", tt.level, got)
		}
	}
}

func TestRenderCorrelationBar(t *testing.T) {
	tests := []struct {
		corr float64
		pos  int
	}{
		{-1, 0},
		{0, 4},
		{1, 8},
	}

	for _, tt := range tests {
		bar := []rune(renderCorrelationBar(tt.corr, 9))
		if len(bar) != 9 {
			t.Fatalf("width = %d, want 9", len(bar))
		}
		if bar[tt.pos] != '┃' {
			t.Errorf("corr %v: marker not at %d in %q", tt.corr, tt.pos, string(bar))
		}
	}
}
