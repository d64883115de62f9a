package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/knobula/knobula/internal/cli"
	"github.com/knobula/knobula/pkg/knobula"
)

// PresetsCmd lists the factory presets.
type PresetsCmd struct {
	Verbose bool `short:"V" help:"Show the parameter values each preset sets."`
}

// Run prints every preset.
func (c *PresetsCmd) Run(g *Globals) error {
	writePresets(os.Stdout, knobula.Presets(), c.Verbose)
	return nil
}

func writePresets(w io.Writer, presets []knobula.Preset, verbose bool) {
	for _, p := range presets {
		fmt.Fprintf(w, "%s  %s\n", cli.HeadingStyle.Render(p.Name), cli.DescriptionStyle.Render(p.Description))
		if !verbose {
			continue
		}
		keys := make([]string, 0, len(p.Values))
		for key := range p.Values {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			fmt.Fprintf(w, "    %s = %g\n", key, p.Values[key])
		}
	}
}

// ParamsCmd lists parameters, optionally after applying a preset and
// overrides.
type ParamsCmd struct {
	ChainOptions

	Filter string `arg:"" optional:"" help:"Only list parameters whose key contains this text."`
}

// Run prints the parameter table.
func (c *ParamsCmd) Run(g *Globals) error {
	p, err := c.newProcessor(g.Logger())
	if err != nil {
		return err
	}
	writeParams(os.Stdout, p, c.Filter)
	return nil
}

var (
	paramKeyStyle   = lipgloss.NewStyle().Foreground(cli.GoodColor).Width(18)
	paramNameStyle  = lipgloss.NewStyle().Width(26)
	paramValueStyle = cli.ValueStyle.Width(12)
)

func writeParams(w io.Writer, p *knobula.Processor, filter string) {
	filter = strings.ToLower(filter)
	for _, prm := range p.Parameters().All() {
		if filter != "" && !strings.Contains(strings.ToLower(prm.Key), filter) {
			continue
		}
		fmt.Fprintf(w, "%s%s%s%s\n",
			paramKeyStyle.Render(prm.Key),
			paramNameStyle.Render(prm.Name),
			paramValueStyle.Render(prm.FormatValue(prm.GetValue())),
			cli.KeyStyle.Render(fmt.Sprintf("[%g, %g]", prm.Min, prm.Max)))
	}
}
