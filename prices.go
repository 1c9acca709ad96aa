package folio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/amitgr/folio/date"
)

// PriceTable holds the historical price series of every known security,
// together with each security's trading currency.
type PriceTable struct {
	histories  map[SecurityID]*date.History[float64]
	currencies map[SecurityID]Currency
}

// History returns a security's price series, or nil when none is known.
func (t *PriceTable) History(sec SecurityID) *date.History[float64] {
	if t == nil {
		return nil
	}
	return t.histories[sec]
}

// Histories returns the full series map, keyed by security.
func (t *PriceTable) Histories() map[SecurityID]*date.History[float64] {
	if t == nil {
		return nil
	}
	return t.histories
}

// Currencies returns the trading currency of every security.
func (t *PriceTable) Currencies() map[SecurityID]Currency {
	if t == nil {
		return nil
	}
	return t.currencies
}

// Currency returns a security's trading currency, or false when the
// security is unknown.
func (t *PriceTable) Currency(sec SecurityID) (Currency, bool) {
	if t == nil {
		return "", false
	}
	c, ok := t.currencies[sec]
	return c, ok
}

// rawPriceSeries is the wire form of one security's history.
type rawPriceSeries struct {
	Exchange string `json:"exchange"`
	Ticker   string `json:"ticker"`
	Currency string `json:"currency"`
	Prices   []struct {
		Date  Date    `json:"date"`
		Price float64 `json:"price"`
	} `json:"prices"`
}

// DecodePrices reads a JSON array of per-security price series. Duplicate
// dates within one series keep the last value.
func DecodePrices(r io.Reader) (*PriceTable, error) {
	var list []rawPriceSeries
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("could not decode price series: %w", err)
	}

	table := &PriceTable{
		histories:  make(map[SecurityID]*date.History[float64], len(list)),
		currencies: make(map[SecurityID]Currency, len(list)),
	}
	for _, raw := range list {
		sec := SecurityID{Exchange: raw.Exchange, Ticker: raw.Ticker}
		if sec.Ticker == "" {
			return nil, fmt.Errorf("price series without a ticker")
		}
		currency, err := NormalizeCurrency(raw.Currency)
		if err != nil {
			return nil, fmt.Errorf("price series %s: %w", sec, err)
		}

		history := table.histories[sec]
		if history == nil {
			history = &date.History[float64]{}
			table.histories[sec] = history
			table.currencies[sec] = currency
		}
		for _, p := range raw.Prices {
			history.Append(p.Date, p.Price)
		}
	}
	return table, nil
}
