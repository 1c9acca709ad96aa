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

type perfCmd struct{}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "show the time-weighted performance of all holdings" }
func (*perfCmd) Usage() string {
	return `flo perf

  Replays the full ledger over the price histories and shows the
  time-weighted return index and period returns in the display currency.
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {}

func (c *perfCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := loadInputs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	points, err := folio.BuildPerformanceSeries(folio.PerformanceInput{
		Transactions: in.txs,
		Prices:       in.prices.Histories(),
		Currencies:   in.prices.Currencies(),
		Portfolios:   in.portfolios,
		Rates:        in.rates,
		Display:      in.display,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	returns := folio.CalculatePeriodReturns(points)
	printMarkdown(renderer.PerformanceMarkdown(points, returns, in.display))
	return subcommands.ExitSuccess
}
