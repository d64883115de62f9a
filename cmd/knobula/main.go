// Command knobula runs the Knobula mastering EQ over WAV files: offline
// rendering, live metering and real-time playback.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/knobula/knobula/internal/cli"
	"github.com/knobula/knobula/pkg/framework/debug"
)

// version is set at build time
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	LogLevel string           `help:"Log level: debug, info, warn, error or off." default:"warn" enum:"debug,info,warn,error,off" placeholder:"LEVEL"`
	LogFile  string           `help:"Append log output to a file." type:"path" placeholder:"PATH"`
	Config   kong.ConfigFlag  `help:"Load flag values from a JSON file." placeholder:"PATH"`
	Version  kong.VersionFlag `short:"v" help:"Show version information."`

	logger *debug.Logger
}

// CLI is the command tree.
type CLI struct {
	Globals

	Render  RenderCmd  `cmd:"" help:"Process a WAV file through the EQ and write the result."`
	Meter   MeterCmd   `cmd:"" help:"Process a WAV file in real time with live meters."`
	Play    PlayCmd    `cmd:"" help:"Play a WAV file through the EQ with live meters."`
	Presets PresetsCmd `cmd:"" help:"List the factory presets."`
	Params  ParamsCmd  `cmd:"" help:"List parameters with their ranges and current values."`
}

func main() {
	var c CLI
	ctx := kong.Parse(&c,
		kong.Name("knobula"),
		kong.Description("Dual-channel passive mastering EQ with tube and transformer coloration"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Configuration(kong.JSON, "~/.config/knobula/config.json"),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if err := c.setupLogger(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	err := ctx.Run(&c.Globals)
	c.logger.Close()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// setupLogger builds the logger from --log-level and --log-file and makes it
// the package default.
func (g *Globals) setupLogger() error {
	level, err := debug.ParseLogLevel(g.LogLevel)
	if err != nil {
		return err
	}

	logger := debug.New(os.Stderr, "knobula", debug.DefaultFlags)
	if g.LogFile != "" {
		logger, err = debug.NewFileLogger(g.LogFile, "knobula", debug.DefaultFlags)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
	}
	logger.SetLevel(level)
	debug.SetDefault(logger)
	g.logger = logger
	return nil
}

// Logger returns the configured logger, or the package default before
// setup.
func (g *Globals) Logger() *debug.Logger {
	if g.logger == nil {
		return debug.Default()
	}
	return g.logger
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(logger *debug.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-signalCh:
			logger.Info("caught signal %s: shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(signalCh)
		cancel()
	}
}
