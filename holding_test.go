package folio

import (
	"math"
	"testing"
	"time"

	"github.com/amitgr/folio/date"
)

func TestBuildHoldingUnrealizedGain(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	if err := ledger.Apply(buyTx(day(2025, time.January, 1), "taxable", "VOO", 10, 100)); err != nil {
		t.Fatal(err)
	}

	prices := (&date.History[float64]{}).
		Append(day(2025, time.January, 1), 100).
		Append(day(2025, time.January, 2), 110)

	h := BuildHolding(ledger, prices, day(2025, time.January, 2))
	if !h.HasPrice {
		t.Fatal("holding has no price")
	}
	if !h.MarketValue.Equal(usd(1100)) {
		t.Errorf("market value = %s, want 1100 USD", h.MarketValue)
	}
	if !h.UnrealizedGain.Equal(usd(100)) {
		t.Errorf("unrealized gain = %s, want 100 USD", h.UnrealizedGain)
	}
	if math.Abs(h.UnrealizedGainPct-0.10) > 1e-9 {
		t.Errorf("unrealized gain pct = %v, want 0.10", h.UnrealizedGainPct)
	}
	if math.Abs(h.DayChangePct-0.10) > 1e-9 {
		t.Errorf("day change pct = %v, want 0.10", h.DayChangePct)
	}
	if !h.AvgCost.Equal(usd(100)) {
		t.Errorf("average cost = %s, want 100 USD", h.AvgCost)
	}
}

func TestBuildHoldingWithoutPrice(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	if err := ledger.Apply(buyTx(day(2025, time.March, 1), "taxable", "VOO", 10, 100)); err != nil {
		t.Fatal(err)
	}

	// The only price point is after the valuation date: no extrapolation.
	prices := (&date.History[float64]{}).Append(day(2025, time.April, 1), 100)

	h := BuildHolding(ledger, prices, day(2025, time.March, 15))
	if h.HasPrice {
		t.Error("holding claims a price before the first price point")
	}
	if !h.MarketValue.IsZero() {
		t.Errorf("market value without price = %s, want 0", h.MarketValue)
	}
	if !math.IsNaN(h.UnrealizedGainPct) {
		t.Errorf("unrealized gain pct = %v, want NaN", h.UnrealizedGainPct)
	}

	// No history at all behaves the same.
	h = BuildHolding(ledger, nil, day(2025, time.March, 15))
	if h.HasPrice {
		t.Error("holding claims a price with no history")
	}
}

func TestBuildHoldingDayChangeUnknown(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	if err := ledger.Apply(buyTx(day(2025, time.January, 1), "taxable", "VOO", 10, 100)); err != nil {
		t.Fatal(err)
	}
	prices := (&date.History[float64]{}).Append(day(2025, time.January, 1), 100)

	h := BuildHolding(ledger, prices, day(2025, time.January, 1))
	if !h.HasPrice {
		t.Fatal("holding has no price")
	}
	if !math.IsNaN(h.DayChangePct) {
		t.Errorf("day change pct on first price day = %v, want NaN", h.DayChangePct)
	}
}
