package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/portfolio-dashboard/renderer"
	"github.com/etnz/portfolio-dashboard/simulator"
	"github.com/google/subcommands"
)

type promptCmd struct {
	raw bool
}

func (*promptCmd) Name() string     { return "prompt" }
func (*promptCmd) Synopsis() string { return "display the request sent to the simulator" }
func (*promptCmd) Usage() string {
	return `folio prompt [-raw]

  Displays the task and output schema that 'simulate' sends to Gemini for the
  configured portfolio. No API key is needed.
`
}

func (c *promptCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Print the markdown source instead of rendering it.")
}

func (c *promptCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	purchase, valuation, _ := settings.Simulation.Dates()

	req := simulator.Build(settings.Portfolio.PortfolioConfig(), purchase, valuation)
	p, err := renderer.NewPrompt(req, settings.Gemini.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering prompt: %v\n", err)
		return subcommands.ExitFailure
	}

	md := renderer.RenderPrompt(p)
	if c.raw {
		fmt.Fprint(stdout, md)
		return subcommands.ExitSuccess
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
