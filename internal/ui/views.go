package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/knobula/knobula/internal/cli"
	"github.com/knobula/knobula/pkg/dsp"
	"github.com/knobula/knobula/pkg/dsp/analysis"
	"github.com/knobula/knobula/pkg/dsp/eq"
)

const (
	boxWidth = 64
	barWidth = 30
)

var channelNames = [dsp.Stereo]string{"L", "R"}

// renderMeterView renders the main meter view
func renderMeterView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")
	b.WriteString(renderLevels(m))
	b.WriteString("\n")
	b.WriteString(renderBands(m))
	b.WriteString("\n")
	b.WriteString(renderStatus(m))
	b.WriteString("\n")
	b.WriteString(renderFooter(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PrimaryColor).
		Render(m.Title)

	subtitle := lipgloss.NewStyle().
		Foreground(cli.MutedColor).
		Italic(true).
		Render(m.FileName)

	return title + "\n" + subtitle
}

func box(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(boxWidth)
}

// renderLevels renders input and output meters with output peak
func renderLevels(m Model) string {
	r := m.Readout
	var content strings.Builder

	content.WriteString(cli.HeadingStyle.Render(fmt.Sprintf("Levels (%s)", r.MeterMode)))
	content.WriteString("\n")
	for ch := 0; ch < dsp.Stereo; ch++ {
		content.WriteString(fmt.Sprintf("In  %s %s %6.1f dB\n",
			channelNames[ch], renderBar(r.InputNormalized[ch], barWidth), r.InputLevelDB[ch]))
	}
	for ch := 0; ch < dsp.Stereo; ch++ {
		content.WriteString(fmt.Sprintf("Out %s %s %6.1f dB  peak %6.1f\n",
			channelNames[ch], renderBar(r.OutputNormalized[ch], barWidth), r.OutputLevelDB[ch], r.OutputPeakDB[ch]))
	}

	content.WriteString(fmt.Sprintf("Correlation %s %+.2f %s",
		renderCorrelationBar(r.Correlation, barWidth-8), r.Correlation, phaseStyle(r.PhaseStatus).Render(r.PhaseStatus.String())))

	return box(cli.PrimaryColor).Render(content.String())
}

// renderBands renders per-band energy for both channels
func renderBands(m Model) string {
	r := m.Readout
	var content strings.Builder

	content.WriteString(cli.HeadingStyle.Render("Band Energy"))
	for band := 0; band < eq.NumBands; band++ {
		content.WriteString(fmt.Sprintf("\n%-3s", eq.BandName(band)))
		for ch := 0; ch < dsp.Stereo; ch++ {
			content.WriteString(fmt.Sprintf(" %s %s", channelNames[ch], renderBar(float64(r.BandEnergy[ch][band]), 20)))
		}
	}

	return box(cli.MutedColor).Render(content.String())
}

// renderStatus renders glow, auto gain and oversampling
func renderStatus(m Model) string {
	r := m.Readout
	glow := lipgloss.NewStyle().Foreground(cli.AccentColor).Render(renderBar(float64(r.Glow), 20))

	content := fmt.Sprintf("Tube Glow %s\nAuto Gain %+.2f dB | Oversampling %dx",
		glow, r.AutoGainOffsetDB, r.OversamplingRatio)

	return box(cli.MutedColor).Render(content)
}

// renderFooter renders progress and key help
func renderFooter(m Model) string {
	help := cli.DescriptionStyle.Render("m: meter mode | q: quit")

	switch {
	case m.Err != nil:
		return cli.ErrorStyle.Render("Error: "+m.Err.Error()) + "\n" + help
	case m.Done:
		return lipgloss.NewStyle().Foreground(cli.GoodColor).Render("✓ Finished") + "\n" + help
	case m.progress != nil:
		return renderProgressBar(m.Progress, 40) + "\n" + help
	}
	return help
}

func phaseStyle(status analysis.PhaseStatus) lipgloss.Style {
	color := cli.GoodColor
	switch status {
	case analysis.PhasePartiallyCorrelated:
		color = cli.WarnColor
	case analysis.PhaseMostlyOutOfPhase, analysis.PhaseOutOfPhase:
		color = cli.BadColor
	}
	return lipgloss.NewStyle().Foreground(color)
}

// renderBar renders a level in [0, 1] as a fixed-width bar
func renderBar(level float64, width int) string {
	level = max(0, min(1, level))
	filled := int(level * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// renderCorrelationBar centers a marker for values in [-1, 1]
func renderCorrelationBar(corr float64, width int) string {
	corr = max(-1, min(1, corr))
	pos := int((corr + 1) / 2 * float64(width-1))
	return strings.Repeat("─", pos) + "┃" + strings.Repeat("─", width-1-pos)
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	progress = max(0, min(1, progress))
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}
