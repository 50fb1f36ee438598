package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/config"
	"github.com/etnz/portfolio-dashboard/dashboard"
	"github.com/etnz/portfolio-dashboard/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// configCmd holds the flags for the 'config' subcommand.
type configCmd struct {
	init  string
	force bool

	total   string
	add     listFlag
	remove  listFlag
	targets listFlag
}

// listFlag collects the values of a repeated flag.
type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error { *l = append(*l, v); return nil }

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "check, edit the configuration and display the planned allocation" }
func (*configCmd) Usage() string {
	return `folio config [-init <file> [-force]]
folio config [-total <amount>] [-add <ticker>[=<amount>]]... [-remove <ticker>]... [-target <ticker>=[<amount>]]...

  Validates the configuration and displays the portfolio to simulate with its
  planned allocation.
  With -init, writes the default configuration to <file> instead.
  The edit flags change the portfolio and save it back to the configuration
  file, folio.yaml when none was found. An empty target amount clears it.
`
}

func (c *configCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.init, "init", "", "Write the default configuration to this file (.yaml, .json or .toml).")
	f.BoolVar(&c.force, "force", false, "Overwrite the -init file if it exists.")
	f.StringVar(&c.total, "total", "", "Set the total investment.")
	f.Var(&c.add, "add", "Add a stock, optionally with a target amount: TICKER[=AMOUNT]. Repeatable.")
	f.Var(&c.remove, "remove", "Remove a stock. Repeatable.")
	f.Var(&c.targets, "target", "Set or clear the target amount of a stock: TICKER=[AMOUNT]. Repeatable.")
}

// editing reports whether any edit flag was set.
func (c *configCmd) editing() bool {
	return c.total != "" || len(c.add) > 0 || len(c.remove) > 0 || len(c.targets) > 0
}

func (c *configCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.init != "" {
		return c.writeDefault()
	}

	settings, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.editing() {
		if status := c.edit(settings); status != subcommands.ExitSuccess {
			return status
		}
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n%v\n", err)
		return subcommands.ExitFailure
	}
	purchase, valuation, _ := settings.Simulation.Dates()

	apiKey := "missing"
	if settings.Gemini.APIKey != "" {
		apiKey = "set"
	}
	fmt.Fprintf(stdout, "model: %s (API key %s)\n", settings.Gemini.Model, apiKey)
	fmt.Fprintf(stdout, "dates: %s to %s\n", purchase, valuation)
	if settings.Refresh.Schedule != "" {
		fmt.Fprintf(stdout, "auto refresh: %s\n", settings.Refresh.Schedule)
	}

	st := dashboard.State{Config: settings.Portfolio.PortfolioConfig()}
	printMarkdown(renderer.RenderPlan(renderer.NewDashboard(st, purchase, valuation, nil)))
	return subcommands.ExitSuccess
}

func (c *configCmd) writeDefault() subcommands.ExitStatus {
	if _, err := os.Stat(c.init); err == nil && !c.force {
		fmt.Fprintf(os.Stderr, "Error: %q already exists, use -force to overwrite it\n", c.init)
		return subcommands.ExitFailure
	}
	if err := config.Write(c.init, config.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Successfully wrote default configuration to %s\n", c.init)
	return subcommands.ExitSuccess
}

// edit applies the edit flags to settings and saves them.
func (c *configCmd) edit(settings *config.Settings) subcommands.ExitStatus {
	cfg, err := c.apply(settings.Portfolio.PortfolioConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid portfolio, nothing saved:\n%v\n", err)
		return subcommands.ExitFailure
	}

	settings.Portfolio = config.NewPortfolioSettings(cfg)
	path := settings.Path
	if path == "" {
		path = "folio.yaml"
	}
	if err := config.Write(path, settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "saved: %s\n", path)
	return subcommands.ExitSuccess
}

// apply returns cfg with the total, removals, additions and targets applied, in that order.
func (c *configCmd) apply(cfg portfolio.PortfolioConfig) (portfolio.PortfolioConfig, error) {
	if c.total != "" {
		total, err := parseAmount(c.total, cfg.Currency)
		if err == nil && total == nil {
			err = fmt.Errorf("amount is empty")
		}
		if err != nil {
			return cfg, fmt.Errorf("invalid -total: %w", err)
		}
		cfg = cfg.WithTotal(*total)
	}
	for _, ticker := range c.remove {
		i := cfg.Index(ticker)
		if i < 0 {
			return cfg, fmt.Errorf("cannot remove %q: no such stock", ticker)
		}
		cfg = cfg.WithoutStock(i)
	}
	for _, v := range c.add {
		ticker, amount, _ := strings.Cut(v, "=")
		if cfg.Index(ticker) >= 0 {
			return cfg, fmt.Errorf("cannot add %q: already in the portfolio", ticker)
		}
		target, err := parseAmount(amount, cfg.Currency)
		if err != nil {
			return cfg, fmt.Errorf("invalid -add %q: %w", v, err)
		}
		cfg = cfg.WithStock(ticker, target)
	}
	for _, v := range c.targets {
		ticker, amount, ok := strings.Cut(v, "=")
		if !ok {
			return cfg, fmt.Errorf("invalid -target %q: want TICKER=AMOUNT", v)
		}
		i := cfg.Index(ticker)
		if i < 0 {
			return cfg, fmt.Errorf("cannot set the target of %q: no such stock", ticker)
		}
		target, err := parseAmount(amount, cfg.Currency)
		if err != nil {
			return cfg, fmt.Errorf("invalid -target %q: %w", v, err)
		}
		cfg = cfg.WithTarget(i, target)
	}
	return cfg, nil
}

// parseAmount parses an amount of 'currency'. An empty string is no amount.
func parseAmount(s, currency string) (*portfolio.Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	m := portfolio.M(d, currency)
	return &m, nil
}
