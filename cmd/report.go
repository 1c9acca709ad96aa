package cmd

import (
	"github.com/amitgr/folio"
)

// inputs is everything a reporting command needs, loaded from the app files.
type inputs struct {
	txs        []folio.Transaction
	portfolios map[string]folio.Portfolio
	prices     *folio.PriceTable
	rates      *folio.RateSnapshot
	cpi        folio.CPIIndex // nil when no index is configured
	display    folio.Currency
}

func loadInputs() (*inputs, error) {
	txs, err := DecodeLedger()
	if err != nil {
		return nil, err
	}
	portfolios, err := DecodePortfolios()
	if err != nil {
		return nil, err
	}
	prices, err := DecodePrices()
	if err != nil {
		return nil, err
	}
	snapshot, err := DecodeRates()
	if err != nil {
		return nil, err
	}
	display, err := Display()
	if err != nil {
		return nil, err
	}

	in := &inputs{
		txs:        txs,
		portfolios: portfolios,
		prices:     prices,
		rates:      snapshot,
		display:    display,
	}
	index, err := DecodeCPI()
	if err != nil {
		return nil, err
	}
	if index != nil {
		in.cpi = index
	}
	return in, nil
}

// holdings replays the ledger and derives every holding's view on a date.
func (in *inputs) holdings(on folio.Date) (*folio.Book, []folio.Holding, error) {
	book, err := folio.ReplayAsOf(in.txs, in.portfolios, on)
	if err != nil {
		return nil, nil, err
	}
	var holdings []folio.Holding
	for _, key := range book.Keys() {
		ledger := book.Ledger(key)
		sec := folio.SecurityID{Ticker: key.Ticker}
		for _, tx := range in.txs {
			if tx.Key() == key {
				sec = tx.Security()
				break
			}
		}
		holdings = append(holdings, folio.BuildHolding(ledger, in.prices.History(sec), on))
	}
	return book, holdings, nil
}

// periodReturns replays each holding's own transactions into a performance
// series and derives its lookback returns, in the display currency.
func (in *inputs) periodReturns(holdings []folio.Holding) (map[folio.HoldingKey]map[folio.ReturnPeriod]folio.PeriodReturn, error) {
	out := make(map[folio.HoldingKey]map[folio.ReturnPeriod]folio.PeriodReturn, len(holdings))
	for _, h := range holdings {
		var txs []folio.Transaction
		for _, tx := range in.txs {
			if tx.Key() == h.Key {
				txs = append(txs, tx)
			}
		}
		points, err := folio.BuildPerformanceSeries(folio.PerformanceInput{
			Transactions: txs,
			Prices:       in.prices.Histories(),
			Currencies:   in.prices.Currencies(),
			Portfolios:   in.portfolios,
			Rates:        in.rates,
			Display:      in.display,
		})
		if err != nil {
			return nil, err
		}
		out[h.Key] = folio.CalculatePeriodReturns(points)
	}
	return out, nil
}

// liabilities computes each holding's unrealized tax liability in its
// portfolio's base currency.
func (in *inputs) liabilities(holdings []folio.Holding, on folio.Date) (map[folio.HoldingKey]folio.Money, error) {
	out := make(map[folio.HoldingKey]folio.Money, len(holdings))
	for _, h := range holdings {
		cfg, ok := in.portfolios[h.Key.Portfolio]
		if !ok {
			continue
		}
		calc := folio.NewTaxCalculator(cfg, in.cpi, in.rates)
		liability, err := calc.UnrealizedLiability(h, on)
		if err != nil {
			return nil, err
		}
		out[h.Key] = liability
	}
	return out, nil
}
