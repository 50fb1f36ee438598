// Command folio simulates a stock portfolio and displays its dashboard.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/portfolio-dashboard/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
)

func main() {
	// Completes and exits when invoked by the shell completion.
	complete.Complete("folio", cmd.Completion(flag.CommandLine))

	commander := subcommands.NewCommander(flag.CommandLine, "folio")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
