package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/amitgr/folio/cmd"
)

func main() {
	// Shell completion runs before flag parsing and exits when invoked by
	// the completion machinery.
	completion().Complete("flo")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	trade := map[string]complete.Predictor{
		"d":          predict.Nothing,
		"portfolio":  predict.Nothing,
		"ticker":     predict.Nothing,
		"exchange":   predict.Nothing,
		"q":          predict.Nothing,
		"p":          predict.Nothing,
		"c":          predict.Set{"USD", "ILS", "ILA", "EUR", "GBP"},
		"commission": predict.Nothing,
		"vest":       predict.Nothing,
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"buy":      {Flags: trade},
			"sell":     {Flags: trade},
			"dividend": {Flags: trade},
			"fee":      {Flags: trade},
			"holding":  {Flags: trade},
			"summary":  {Flags: map[string]complete.Predictor{"d": predict.Nothing}},
			"perf":     {},
			"gains":    {Flags: trade},
			"topic":    {Args: predict.Set{"readme", "currencies", "ledger", "tax-policies", "performance", "*"}},
		},
		Flags: map[string]complete.Predictor{
			"ledger-file":     predict.Files("*.jsonl"),
			"portfolios-file": predict.Files("*.json"),
			"prices-file":     predict.Files("*.json"),
			"rates-file":      predict.Files("*.json"),
			"cpi-file":        predict.Files("*.csv"),
			"currency":        predict.Set{"USD", "ILS", "ILA", "EUR", "GBP"},
		},
	}
}
