package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/amitgr/folio"
)

// tradeFlags are the flags shared by the transaction-recording commands.
type tradeFlags struct {
	date       string
	portfolio  string
	ticker     string
	exchange   string
	quantity   float64
	price      float64
	currency   string
	commission float64
	vestDate   string
}

func (t *tradeFlags) register(f *flag.FlagSet) {
	f.StringVar(&t.date, "d", folio.Today().String(), "Transaction date (YYYY-MM-DD).")
	f.StringVar(&t.portfolio, "portfolio", "", "Portfolio id the transaction belongs to.")
	f.StringVar(&t.ticker, "ticker", "", "Security ticker.")
	f.StringVar(&t.exchange, "exchange", "", "Exchange the security trades on.")
	f.Float64Var(&t.quantity, "q", 0, "Quantity of units.")
	f.Float64Var(&t.price, "p", 0, "Price per unit, in the trading currency.")
	f.StringVar(&t.currency, "c", "", "Trading currency (code, symbol, or Hebrew name).")
	f.Float64Var(&t.commission, "commission", 0, "Broker commission, in the trading currency.")
	f.StringVar(&t.vestDate, "vest", "", "Vest date (YYYY-MM-DD); the transaction takes effect then.")
}

// build assembles and validates a transaction from the flags.
func (t *tradeFlags) build(typ folio.TxType) (folio.Transaction, error) {
	on, err := folio.ParseDate(t.date)
	if err != nil {
		return folio.Transaction{}, fmt.Errorf("invalid date: %w", err)
	}
	currency, err := folio.NormalizeCurrency(t.currency)
	if err != nil {
		return folio.Transaction{}, err
	}
	qty, err := folio.QuantityFromFloat(t.quantity)
	if err != nil {
		return folio.Transaction{}, err
	}
	price, err := folio.MoneyFromFloat(t.price, currency)
	if err != nil {
		return folio.Transaction{}, err
	}

	tx := folio.NewTransaction(on, t.portfolio, t.ticker, t.exchange, typ, qty, price)
	if t.commission != 0 {
		commission, err := folio.MoneyFromFloat(t.commission, currency)
		if err != nil {
			return folio.Transaction{}, err
		}
		tx = tx.WithCommission(commission)
	}
	if t.vestDate != "" {
		vest, err := folio.ParseDate(t.vestDate)
		if err != nil {
			return folio.Transaction{}, fmt.Errorf("invalid vest date: %w", err)
		}
		tx = tx.WithVestDate(vest)
	}
	return tx, tx.Validate()
}

// record appends a built transaction to the ledger, reporting flag errors
// as usage errors.
func record(t *tradeFlags, typ folio.TxType) subcommands.ExitStatus {
	tx, err := t.build(typ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return EncodeTransaction(withRuleCommission(tx))
}

// withRuleCommission applies the portfolio's commission rule to a trade
// recorded without an explicit commission. Without a readable portfolios
// file the transaction is recorded as entered.
func withRuleCommission(tx folio.Transaction) folio.Transaction {
	portfolios, err := DecodePortfolios()
	if err != nil {
		return tx
	}
	cfg, ok := portfolios[tx.PortfolioID]
	if !ok {
		return tx
	}
	return cfg.WithRuleCommission(tx)
}

type buyCmd struct{ tradeFlags }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase of a security" }
func (*buyCmd) Usage() string {
	return `flo buy -portfolio <id> -ticker <ticker> -exchange <exchange> -q <qty> -p <price> -c <currency> [-d <date>] [-commission <amount>] [-vest <date>]

  Records a buy. The new lot's cost basis is quantity times price plus
  commission. A vest date defers the lot to that date.
`
}
func (c *buyCmd) SetFlags(f *flag.FlagSet) { c.register(f) }
func (c *buyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return record(&c.tradeFlags, folio.TxBuy)
}

type sellCmd struct{ tradeFlags }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale of a security" }
func (*sellCmd) Usage() string {
	return `flo sell -portfolio <id> -ticker <ticker> -exchange <exchange> -q <qty> -p <price> -c <currency> [-d <date>] [-commission <amount>]

  Records a sale. Lots are consumed oldest-first; selling more than the
  holding's remaining quantity is rejected when the ledger is replayed.
`
}
func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.register(f) }
func (c *sellCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return record(&c.tradeFlags, folio.TxSell)
}

type dividendCmd struct {
	tradeFlags
	amount float64
}

func (*dividendCmd) Name() string     { return "dividend" }
func (*dividendCmd) Synopsis() string { return "record a dividend payment" }
func (*dividendCmd) Usage() string {
	return `flo dividend -portfolio <id> -ticker <ticker> -exchange <exchange> -amount <gross> -c <currency> [-q <reinvested_qty>] [-d <date>]

  Records a dividend. The gross amount is always credited as income; a
  reinvested quantity creates a new lot unless the portfolio's dividend
  policy forbids it.
`
}
func (c *dividendCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.Float64Var(&c.amount, "amount", 0, "Gross dividend amount, in the trading currency.")
}
func (c *dividendCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// A dividend row carries the gross amount in the price field and the
	// reinvested quantity in the quantity field.
	c.price = c.amount
	return record(&c.tradeFlags, folio.TxDividend)
}

type feeCmd struct {
	tradeFlags
	amount float64
}

func (*feeCmd) Name() string     { return "fee" }
func (*feeCmd) Synopsis() string { return "record a custody or management fee" }
func (*feeCmd) Usage() string {
	return `flo fee -portfolio <id> -ticker <ticker> -exchange <exchange> -amount <fee> -c <currency> [-d <date>]

  Records a fee against a holding. Fees debit cumulative income only and
  never touch lot quantity or cost.
`
}
func (c *feeCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.Float64Var(&c.amount, "amount", 0, "Fee amount, in the trading currency.")
}
func (c *feeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.price = c.amount
	return record(&c.tradeFlags, folio.TxFee)
}
