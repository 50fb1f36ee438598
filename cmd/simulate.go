package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/portfolio-dashboard/dashboard"
	"github.com/etnz/portfolio-dashboard/renderer"
	"github.com/etnz/portfolio-dashboard/simulator"
	"github.com/google/subcommands"
)

// simulateCmd holds the flags for the 'simulate' subcommand.
type simulateCmd struct {
	json    bool
	replay  string
	timeout time.Duration
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "simulate the portfolio once and display the dashboard" }
func (*simulateCmd) Usage() string {
	return `folio simulate [-json] [-replay <file>] [-timeout <duration>]

  Asks the simulator for the holdings of the configured portfolio and displays
  the dashboard. With -json the simulated stocks are printed instead, in the
  format expected by -replay.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the simulated stocks as JSON.")
	f.StringVar(&c.replay, "replay", "", "Read the simulated stocks from a JSON recording instead of calling Gemini.")
	f.DurationVar(&c.timeout, "timeout", 0, "Timeout of the simulation. Defaults to refresh.timeout.")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	log := newLogger(settings)
	purchase, valuation, _ := settings.Simulation.Dates()

	sim, _ := newSimulator(settings, c.replay, log, nil)
	store := dashboard.New(sim, settings.Portfolio.PortfolioConfig(), log)

	timeout := c.timeout
	if timeout <= 0 {
		timeout = settings.Refresh.Timeout
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if err := store.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error simulating portfolio: %v\n", err)
		if simulator.IsConfiguration(err) {
			fmt.Fprintln(os.Stderr, "Set GEMINI_API_KEY (or gemini.api_key in the configuration), or use -replay.")
		}
		return subcommands.ExitFailure
	}
	st := store.Snapshot()

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st.Stocks); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding stocks: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderDashboard(renderer.NewDashboard(st, purchase, valuation, nil)))
	return subcommands.ExitSuccess
}
