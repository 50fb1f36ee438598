package cmd

import (
	"flag"

	"github.com/etnz/portfolio-dashboard/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors refines the completion of some flag values.
var flagPredictors = map[string]complete.Predictor{
	"config": predict.Files("*.yaml"),
	"replay": predict.Files("*.json"),
	"init":   predict.Files("*"),
	"every":  predict.Set{"@every 5m", "@every 15m", "@hourly", "@daily"},
}

// Completion returns the shell completion of the application: global flags
// from 'global', and the subcommands with their own flags.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagsOf(global),
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Cmd.Name(), flag.ContinueOnError)
		c.Cmd.SetFlags(fs)
		root.Sub[c.Cmd.Name()] = &complete.Command{Flags: flagsOf(fs)}
	}
	if topics, err := docs.AllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}

func flagsOf(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := flagPredictors[f.Name]; ok {
			flags[f.Name] = p
			return
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}
