package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type helpCLI struct {
	Level string `help:"Log level." default:"warn" placeholder:"LEVEL"`

	Render struct {
		Fast  bool   `short:"f" help:"Skip the report."`
		Input string `arg:"" help:"Input file."`
	} `cmd:"" help:"Render a file."`

	List struct{} `cmd:"" help:"List presets."`
}

func renderHelp(t *testing.T, args ...string) string {
	t.Helper()
	var c helpCLI
	var buf bytes.Buffer
	parser, err := kong.New(&c,
		kong.Name("knobula"),
		kong.Description("Mastering EQ"),
		kong.Writers(&buf, &buf),
		kong.Help(StyledHelpPrinter(kong.HelpOptions{Compact: true})),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	// Help exits through the no-op Exit, so the parse error that follows
	// is expected
	_, _ = parser.Parse(args)
	return buf.String()
}

func TestStyledHelpRoot(t *testing.T) {
	out := renderHelp(t, "--help")

	for _, want := range []string{"Knobula", "Mastering EQ", "knobula <command> [flags]", "render", "Render a file.", "list", "--level=LEVEL", "(default: warn)"} {
		if !strings.Contains(out, want) {
			t.Errorf("root help missing %q:\n%s", want, out)
		}
	}
}

func TestStyledHelpCommand(t *testing.T) {
	out := renderHelp(t, "render", "--help")

	for _, want := range []string{"Render a file.", "Arguments:", "<input>", "Input file.", "-f, --fast", "--level=LEVEL"} {
		if !strings.Contains(out, want) {
			t.Errorf("command help missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Commands:") {
		t.Error("leaf command help should not list commands")
	}
}

func TestPrintKeyValues(t *testing.T) {
	var buf bytes.Buffer
	PrintKeyValues(&buf, [][2]string{
		{"Input", "a.wav"},
		{"Oversampling", "2x"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	// Values line up after the padded keys
	if strings.Index(lines[0], "a.wav") != strings.Index(lines[1], "2x") {
		t.Errorf("values not aligned:\n%s", buf.String())
	}
}
