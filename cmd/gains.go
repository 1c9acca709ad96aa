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

type gainsCmd struct {
	portfolio string
	ticker    string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "show realized gains and their tax liability" }
func (*gainsCmd) Usage() string {
	return `flo gains -portfolio <id> -ticker <ticker>

  Shows every sale of one holding with its FIFO cost breakdown and the
  realized tax liability under the portfolio's tax policy.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "portfolio", "", "Portfolio id.")
	f.StringVar(&c.ticker, "ticker", "", "Security ticker.")
}

func (c *gainsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key := folio.HoldingKey{Portfolio: c.portfolio, Ticker: c.ticker}

	in, err := loadInputs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	book, err := folio.Replay(in.txs, in.portfolios)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	ledger := book.Ledger(key)
	if ledger == nil {
		fmt.Fprintf(os.Stderr, "Error: no transactions for holding %s\n", key)
		return subcommands.ExitFailure
	}

	cfg, ok := in.portfolios[key.Portfolio]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown portfolio %q\n", key.Portfolio)
		return subcommands.ExitFailure
	}
	calc := folio.NewTaxCalculator(cfg, in.cpi, in.rates)
	realizedTax, err := calc.RealizedLiability(ledger.Sales())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.GainsMarkdown(key, ledger.Sales(), realizedTax))
	return subcommands.ExitSuccess
}
