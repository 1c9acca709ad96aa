// Package cmd implements the CLI application to account and report on
// multi-currency portfolios.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/subcommands"

	"github.com/amitgr/folio"
	"github.com/amitgr/folio/cpi"
	"github.com/amitgr/folio/rates"
)

// Commands lists every subcommand a main package registers.
var Commands = []subcommands.Command{
	&buyCmd{},
	&sellCmd{},
	&dividendCmd{},
	&feeCmd{},
	&holdingCmd{},
	&summaryCmd{},
	&perfCmd{},
	&gainsCmd{},
	&topicCmd{},
}

// As a CLI application it has a very short lived lifecycle, so it is ok to
// use global variables for the shared flags.

var ledgerFile = flag.String("ledger-file", "transactions.jsonl", "Path to the ledger file containing transactions (JSONL format)")
var portfoliosFile = flag.String("portfolios-file", "portfolios.json", "Path to the portfolio configurations file (JSON array)")
var ratesFile = flag.String("rates-file", "rates.json", "Path to the exchange-rates snapshot file")
var pricesFile = flag.String("prices-file", "prices.json", "Path to the historical price series file (JSON array)")
var cpiFile = flag.String("cpi-file", "", "Path to the consumer-price-index CSV export (optional, for the real-gain tax policy)")
var displayCurrency = flag.String("currency", "ILS", "Display currency for reports")

// DecodeLedger reads the full transaction log from the app ledger file. A
// missing file is an empty ledger, not an error.
func DecodeLedger() ([]folio.Transaction, error) {
	f, err := os.Open(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	return folio.DecodeTransactions(f)
}

// DecodePortfolios reads the portfolio configurations from the app file.
func DecodePortfolios() (map[string]folio.Portfolio, error) {
	f, err := os.Open(*portfoliosFile)
	if err != nil {
		return nil, fmt.Errorf("could not open portfolios file %q: %w", *portfoliosFile, err)
	}
	defer f.Close()
	return folio.DecodePortfolios(f)
}

// DecodePrices reads the historical price series from the app file. A
// missing file is an empty table: holdings then report without prices.
func DecodePrices() (*folio.PriceTable, error) {
	f, err := os.Open(*pricesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open prices file %q: %w", *pricesFile, err)
	}
	defer f.Close()
	return folio.DecodePrices(f)
}

// DecodeRates reads the exchange-rate snapshot from the app file.
func DecodeRates() (*folio.RateSnapshot, error) {
	f, err := os.Open(*ratesFile)
	if err != nil {
		return nil, fmt.Errorf("could not open rates file %q: %w", *ratesFile, err)
	}
	defer f.Close()
	return rates.Parse(f, rates.DefaultConfig())
}

// DecodeCPI reads the CPI index when one is configured. Returns nil without
// error when no index file is set; the real-gain policy then falls back to
// nominal costs.
func DecodeCPI() (*cpi.Index, error) {
	if *cpiFile == "" {
		return nil, nil
	}
	f, err := os.Open(*cpiFile)
	if err != nil {
		return nil, fmt.Errorf("could not open cpi file %q: %w", *cpiFile, err)
	}
	defer f.Close()
	return cpi.Parse(f)
}

// Display returns the report currency selected by the -currency flag.
func Display() (folio.Currency, error) {
	return folio.NormalizeCurrency(*displayCurrency)
}

// EncodeTransaction appends a single transaction to the app ledger file.
func EncodeTransaction(tx folio.Transaction) subcommands.ExitStatus {
	f, err := os.OpenFile(*ledgerFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := folio.EncodeTransaction(f, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully appended transaction to %s\n", *ledgerFile)
	return subcommands.ExitSuccess
}
