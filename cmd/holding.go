package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/amitgr/folio"
	"github.com/amitgr/folio/renderer"
)

type holdingCmd struct {
	date      string
	portfolio string
	ticker    string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "show one holding's open lots and figures" }
func (*holdingCmd) Usage() string {
	return `flo holding -portfolio <id> -ticker <ticker> [-d <date>]

  Shows the FIFO lot state and derived figures of one holding on a date.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", folio.Today().String(), "Report date (YYYY-MM-DD).")
	f.StringVar(&c.portfolio, "portfolio", "", "Portfolio id.")
	f.StringVar(&c.ticker, "ticker", "", "Security ticker.")
}

func (c *holdingCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := folio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	key := folio.HoldingKey{Portfolio: c.portfolio, Ticker: c.ticker}

	in, err := loadInputs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	_, holdings, err := in.holdings(on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	for _, h := range holdings {
		if h.Key == key {
			printMarkdown(renderer.HoldingMarkdown(h, on))
			return subcommands.ExitSuccess
		}
	}
	fmt.Fprintf(os.Stderr, "Error: no transactions for holding %s\n", key)
	return subcommands.ExitFailure
}
