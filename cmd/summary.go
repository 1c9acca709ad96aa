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

type summaryCmd struct {
	date string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the dashboard summary of all portfolios" }
func (*summaryCmd) Usage() string {
	return `flo summary [-d <date>]

  Replays the ledger up to the given date and shows every portfolio's
  holdings, totals, and tax figures in the display currency.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", folio.Today().String(), "Report date (YYYY-MM-DD).")
}

func (c *summaryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := folio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

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
	liabilities, err := in.liabilities(holdings, on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	returns, err := in.periodReturns(holdings)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	summary, err := folio.BuildSummary(folio.SummaryInput{
		Holdings:    holdings,
		Liabilities: liabilities,
		Returns:     returns,
		Portfolios:  in.portfolios,
		Rates:       in.rates,
		Display:     in.display,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.SummaryMarkdown(summary, on))
	return subcommands.ExitSuccess
}
