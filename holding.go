package folio

import (
	"math"

	"github.com/amitgr/folio/date"
)

// Holding aggregates all the lots of one (portfolio, ticker) pair. Every
// field is recomputed from the lots and the price, never stored as
// independent truth; amounts are in the security's trading currency.
type Holding struct {
	Key      HoldingKey
	Currency Currency
	Lots     []Lot

	TotalQty  Quantity
	CostBasis Money
	AvgCost   Money // cost basis per unit held

	HasPrice    bool // false when the price history has no point at or before the date
	LastPrice   Money
	MarketValue Money

	UnrealizedGain    Money
	UnrealizedGainPct float64 // ratio: 0.10 means +10%; NaN when cost basis is zero
	RealizedGain      Money
	Dividends         Money
	Fees              Money

	DayChangePct float64 // ratio; NaN when the previous day's price is unknown
}

// BuildHolding derives the holding view of a ledger on a given date, using
// the security's price history. A history with no point at or before the
// date yields a holding with HasPrice false: it contributes nothing to
// valuations rather than assuming a stale or zero price.
func BuildHolding(l *Ledger, prices *date.History[float64], on Date) Holding {
	h := Holding{
		Key:          l.Key(),
		Currency:     l.Currency(),
		Lots:         l.Lots(),
		TotalQty:     l.TotalQty(),
		CostBasis:    l.CostBasis(),
		RealizedGain: l.RealizedGain(),
		Dividends:    l.Dividends(),
		Fees:         l.Fees(),

		UnrealizedGainPct: math.NaN(),
		DayChangePct:      math.NaN(),
	}
	if !h.TotalQty.IsZero() {
		h.AvgCost = h.CostBasis.Div(h.TotalQty)
	}

	if prices != nil {
		if price, ok := prices.ValueAsOf(on); ok {
			h.HasPrice = true
			h.LastPrice = M(price, h.Currency)
			h.MarketValue = h.LastPrice.Mul(h.TotalQty)
			h.UnrealizedGain = h.MarketValue.Sub(h.CostBasis)
			if !h.CostBasis.IsZero() {
				h.UnrealizedGainPct = h.UnrealizedGain.AsFloat() / h.CostBasis.AsFloat()
			}
			if prev, ok := prices.ValueAsOf(on.Add(-1)); ok && prev != 0 {
				h.DayChangePct = price/prev - 1
			}
		}
	}
	return h
}
