package folio

import (
	"time"

	"github.com/shopspring/decimal"
)

// money helpers to create test amounts from consts.
func usd(v float64) Money { return M(v, USD) }
func ils(v float64) Money { return M(v, ILS) }
func eur(v float64) Money { return M(v, EUR) }

func day(y int, m time.Month, d int) Date { return NewDate(y, m, d) }

// dec builds an exact decimal from a literal, for tax rates.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// snapshot builds a rate snapshot from units-per-USD floats.
func snapshot(current map[Currency]float64) *RateSnapshot {
	s := &RateSnapshot{Current: make(map[Currency]decimal.Decimal, len(current))}
	for c, r := range current {
		s.Current[c] = decimal.NewFromFloat(r)
	}
	return s
}

// testPortfolios builds a config map from a list of portfolios.
func testPortfolios(list ...Portfolio) map[string]Portfolio {
	m := make(map[string]Portfolio, len(list))
	for _, p := range list {
		m[p.ID] = p.Normalize()
	}
	return m
}

func buyTx(on Date, portfolio, ticker string, qty, price float64) Transaction {
	return NewTransaction(on, portfolio, ticker, "NYSE", TxBuy, Q(qty), usd(price))
}

func sellTx(on Date, portfolio, ticker string, qty, price float64) Transaction {
	return NewTransaction(on, portfolio, ticker, "NYSE", TxSell, Q(qty), usd(price))
}

func dividendTx(on Date, portfolio, ticker string, gross, reinvestQty float64) Transaction {
	return NewTransaction(on, portfolio, ticker, "NYSE", TxDividend, Q(reinvestQty), usd(gross))
}
