// Package cmd implements the CLI application of the simulated portfolio dashboard.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/portfolio-dashboard/config"
	"github.com/etnz/portfolio-dashboard/logger"
	"github.com/etnz/portfolio-dashboard/simulator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file. Defaults to folio.yaml in the current directory or ./config.")

// stdout receives the reports, replaced in tests.
var stdout io.Writer = os.Stdout

// loadSettings loads and validates the application settings.
func loadSettings() (*config.Settings, error) {
	s, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return s, nil
}

// newLogger initializes the application logger from the settings.
func newLogger(s *config.Settings) zerolog.Logger {
	return logger.Init(s.Log.Level, s.Log.Pretty)
}

// newSimulator returns the simulator to use: the recording at 'replay' when
// set, Gemini otherwise. It is instrumented when reg is not nil.
func newSimulator(s *config.Settings, replay string, log zerolog.Logger, reg prometheus.Registerer) (simulator.Simulator, string) {
	var sim simulator.Simulator
	var model string
	if replay != "" {
		sim, model = simulator.Replay{Path: replay}, "replay:"+replay
	} else {
		purchase, valuation, _ := s.Simulation.Dates() // already validated
		g := simulator.NewGemini(simulator.Options{
			APIKey:    s.Gemini.APIKey,
			Model:     s.Gemini.Model,
			Purchase:  purchase,
			Valuation: valuation,
			Log:       log,
		})
		sim, model = g, g.Model()
	}
	if reg != nil {
		sim = simulator.Instrument(sim, reg)
	}
	return sim, model
}

// printMarkdown renders markdown for the terminal, or prints it raw when the
// renderer is not available.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}

// withTimeout bounds ctx by d, when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
