// Command curvecmp compares the valuation history of investment strategies with market
// benchmarks.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path"

	"github.com/etnz/curves/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// exits when invoked by the shell for completion.
	completion().Complete("curvecmp")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	if !*cmd.Verbose {
		log.SetOutput(io.Discard)
	}

	if args := flag.Args(); len(args) > 0 && !registered(commander, args[0]) {
		if found, code := cmd.RunExtension(args[0], args[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// registered reports whether name is a builtin subcommand.
func registered(commander *subcommands.Commander, name string) (found bool) {
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		found = found || c.Name() == name
	})
	return
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	profileFlags := map[string]complete.Predictor{
		"valuation":      predict.Files("*.csv"),
		"strategies":     predict.Something,
		"b":              predict.Something,
		"from":           predict.Something,
		"to":             predict.Something,
		"principal":      predict.Something,
		"currency":       predict.Set{"EUR", "USD", "GBP", "CHF"},
		"log":            predict.Nothing,
		"s":              predict.Something,
		"inflation":      predict.Nothing,
		"inflation-file": predict.Files("*.csv"),
		"inflation-unit": predict.Set{"fraction", "percent", "bp"},
		"insee":          predict.Something,
		"project":        predict.Nothing,
		"cumulative":     predict.Nothing,
		"eodhd-api-key":  predict.Something,
		"cache":          predict.Dirs("*"),
	}
	with := func(extra map[string]complete.Predictor) map[string]complete.Predictor {
		flags := make(map[string]complete.Predictor, len(profileFlags)+len(extra))
		for k, v := range profileFlags {
			flags[k] = v
		}
		for k, v := range extra {
			flags[k] = v
		}
		return flags
	}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"profile": predict.Files("*.yaml"),
			"v":       predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"compare": {Flags: with(map[string]complete.Predictor{
				"title":  predict.Something,
				"period": predict.Set{"day", "week", "month", "quarter", "year"},
				"json":   predict.Files("*.json"),
				"png":    predict.Files("*.png"),
				"html":   predict.Files("*.html"),
			})},
			"serve":   {Flags: with(map[string]complete.Predictor{"addr": predict.Something})},
			"profile": {Flags: with(nil)},
			"eodhd": {Sub: map[string]*complete.Command{
				"fetch": {Flags: map[string]complete.Predictor{
					"eodhd-api-key": predict.Something,
					"from":          predict.Something,
					"to":            predict.Something,
					"field":         predict.Set{"open", "high", "low", "close", "adjusted_close"},
					"cache":         predict.Dirs("*"),
				}},
			}},
			"insee": {Sub: map[string]*complete.Command{
				"fetch": {Flags: map[string]complete.Predictor{
					"from": predict.Something,
					"to":   predict.Something,
					"base": predict.Something,
					"unit": predict.Set{"fraction", "percent", "bp"},
				}},
			}},
			"topic": {Args: predict.Set{"compare", "serve", "profile", "providers", "inflation"}},
			"help":  {},
		},
	}
}
