package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/knobula/knobula/internal/audio"
	"github.com/knobula/knobula/internal/cli"
	"github.com/knobula/knobula/internal/ui"
	"github.com/knobula/knobula/pkg/framework/debug"
	"github.com/knobula/knobula/pkg/knobula"
)

// MeterCmd processes a file at real-time pace without audio output.
type MeterCmd struct {
	ChainOptions

	Input string  `arg:"" help:"Input WAV file." type:"existingfile"`
	Speed float64 `help:"Processing speed relative to real time." default:"1"`
}

// Run shows live meters until the file ends or the user quits.
func (m *MeterCmd) Run(g *Globals) error {
	if m.Speed <= 0 {
		return fmt.Errorf("--speed must be positive, got %g", m.Speed)
	}
	logger := g.Logger()

	s, err := m.openSession(m.Input, logger)
	if err != nil {
		return err
	}
	src, err := s.source()
	if err != nil {
		return err
	}

	interval := blockInterval(s.input.SampleRate, s.blockSize, m.Speed)
	return runLive(logger, "Knobula Meter", m.Input, s.proc, src, func(ctx context.Context) error {
		return pace(ctx, src, s.blockSize, interval)
	})
}

// PlayCmd plays a file through the processor.
type PlayCmd struct {
	ChainOptions

	Input string `arg:"" help:"Input WAV file." type:"existingfile"`
}

// Run plays the file with live meters until it ends or the user quits.
func (c *PlayCmd) Run(g *Globals) error {
	logger := g.Logger()

	s, err := c.openSession(c.Input, logger)
	if err != nil {
		return err
	}
	src, err := s.source()
	if err != nil {
		return err
	}

	player, err := audio.NewPlayer(s.input.SampleRate, src)
	if err != nil {
		return fmt.Errorf("audio output: %w", err)
	}
	defer player.Stop()

	return runLive(logger, "Knobula", c.Input, s.proc, src, func(ctx context.Context) error {
		player.Play()
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if src.Finished() && !player.IsPlaying() {
					logger.Debug("playback finished at %v", player.Position())
					return nil
				}
			}
		}
	})
}

// runLive runs stream alongside the meter UI. Quitting the UI or a signal
// stops the stream; the stream ending closes the UI.
func runLive(logger *debug.Logger, title, path string, proc *knobula.Processor, src *audio.FileSource, stream func(context.Context) error) error {
	ctx, cancel := signalContext(logger)
	defer cancel()

	model := ui.NewModel(title, filepath.Base(path), proc, src.Progress)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := stream(gctx)
		prog.Send(ui.DoneMsg{Err: err})
		return err
	})
	g.Go(func() error {
		_, err := prog.Run()
		cancel()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printLiveSummary(proc.Readout(), src.Elapsed())
	return nil
}

// pace pulls one block per interval through src.
func pace(ctx context.Context, src *audio.FileSource, blockSize int, interval time.Duration) error {
	buf := make([]float32, 2*blockSize)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !src.Finished() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			src.Process(buf)
		}
	}
	return nil
}

// blockInterval is the real-time duration of one block at speed.
func blockInterval(sampleRate, blockSize int, speed float64) time.Duration {
	return time.Duration(float64(blockSize) / float64(sampleRate) / speed * float64(time.Second))
}

func printLiveSummary(r knobula.Readout, elapsed time.Duration) {
	fmt.Println(cli.TitleStyle.Render("Knobula"))
	cli.PrintKeyValues(os.Stdout, [][2]string{
		{"Processed", elapsed.Round(time.Millisecond).String()},
		{"Output L", fmt.Sprintf("%.1f dB (peak %.1f dB)", r.OutputLevelDB[0], r.OutputPeakDB[0])},
		{"Output R", fmt.Sprintf("%.1f dB (peak %.1f dB)", r.OutputLevelDB[1], r.OutputPeakDB[1])},
		{"Correlation", fmt.Sprintf("%+.2f %s", r.Correlation, r.PhaseStatus)},
	})
}
