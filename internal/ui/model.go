// Package ui provides the Bubbletea meter display for knobula
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/knobula/knobula/pkg/dsp/analysis"
	"github.com/knobula/knobula/pkg/knobula"
)

// DefaultRefresh is the meter refresh interval, about 30 frames per second
const DefaultRefresh = 33 * time.Millisecond

// Source is the processor being displayed
type Source interface {
	Readout() knobula.Readout
	MeterMode() analysis.MeterMode
	SetMeterMode(mode analysis.MeterMode)
}

// Model is the Bubbletea model for the meter UI
type Model struct {
	Title    string
	FileName string

	source   Source
	progress func() float64
	refresh  time.Duration

	// Latest snapshot
	Readout  knobula.Readout
	Progress float64

	Done bool
	Err  error

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a meter model polling source. progress may be nil.
func NewModel(title, fileName string, source Source, progress func() float64) Model {
	m := Model{
		Title:    title,
		FileName: fileName,
		source:   source,
		progress: progress,
		refresh:  DefaultRefresh,
	}
	m.poll()
	return m
}

// WithRefresh returns a copy refreshing at interval.
func (m Model) WithRefresh(interval time.Duration) Model {
	if interval > 0 {
		m.refresh = interval
	}
	return m
}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) poll() {
	m.Readout = m.source.Readout()
	if m.progress != nil {
		m.Progress = m.progress()
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "m":
			m.source.SetMeterMode(m.source.MeterMode().Next())
			m.poll()
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if m.Done {
			return m, nil
		}
		m.poll()
		return m, m.tick()

	case DoneMsg:
		m.poll()
		m.Done = true
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	return renderMeterView(m)
}
