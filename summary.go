package folio

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Metric is an aggregate figure that may rest on partial data. Incomplete is
// set whenever fewer than all eligible holdings contributed; it must be
// surfaced to the caller, never hidden.
type Metric struct {
	Value      float64 `json:"value"`
	Incomplete bool    `json:"incomplete,omitempty"`
}

// PeriodSummary is the aggregated lookback return of a group of holdings:
// the market-value-weighted return ratio and the summed absolute gain, in
// the display currency.
type PeriodSummary struct {
	Perf       float64 `json:"perf"`
	Gain       Money   `json:"gain"`
	Incomplete bool    `json:"incomplete,omitempty"`
}

// HoldingSummary is one holding's figures converted to the display currency,
// plus its weight inside its portfolio and across all portfolios.
type HoldingSummary struct {
	Key             HoldingKey
	TradingCurrency Currency
	Quantity        Quantity

	HasPrice       bool
	MarketValue    Money
	CostBasis      Money
	UnrealizedGain Money
	RealizedGain   Money
	Dividends      Money
	Fees           Money

	TaxLiability  Money // unrealized liability, converted from the base currency
	ValueAfterTax Money

	UnrealizedGainPct float64 // ratio; NaN when cost basis is zero
	DayChangePct      float64 // ratio; NaN when unknown

	WeightInPortfolio Percent
	WeightInGlobal    Percent

	returns map[ReturnPeriod]PeriodReturn
}

// GroupTotals sums a set of holdings in the display currency. Weighted
// metrics carry their own completeness flags.
type GroupTotals struct {
	MarketValue    Money
	CostBasis      Money
	UnrealizedGain Money
	RealizedGain   Money
	Dividends      Money
	Fees           Money
	TaxLiability   Money
	ValueAfterTax  Money

	DayChange Metric // market-value-weighted day change ratio

	// FXMonthChange is the part of the month's movement explained by
	// exchange rates alone: the same positions valued at month-old rates
	// against today's rates. Incomplete when no month-old rates exist or a
	// holding's rate is missing from them.
	FXMonthChange Metric

	PeriodReturns map[ReturnPeriod]PeriodSummary
}

// PortfolioSummary is one portfolio's holdings and totals in the display
// currency.
type PortfolioSummary struct {
	ID       string
	Holdings []HoldingSummary
	Totals   GroupTotals
}

// DashboardSummary is the full roll-up: per-portfolio summaries plus a
// global total, everything in one display currency.
type DashboardSummary struct {
	Display    Currency
	Portfolios []PortfolioSummary
	Global     GroupTotals
}

// SummaryInput is everything the aggregator consumes. Liabilities and
// Returns are optional per-holding enrichments; a holding absent from them
// simply does not contribute to the corresponding metric.
type SummaryInput struct {
	Holdings    []Holding
	Liabilities map[HoldingKey]Money // unrealized tax liability, in each portfolio's base currency
	Returns     map[HoldingKey]map[ReturnPeriod]PeriodReturn
	Portfolios  map[string]Portfolio
	Rates       *RateSnapshot
	Display     Currency
}

// BuildSummary converts every holding's figures to the display currency and
// rolls them up per portfolio and globally.
//
// Metrics that depend on partial data are weighted only over the holdings
// that actually report a value for them, and each carries an Incomplete flag
// when fewer than all eligible holdings contributed. The after-tax value is
// market value minus the effective tax rate applied to the positive part of
// the unrealized gain; a loss is never refunded into this figure.
func BuildSummary(in SummaryInput) (*DashboardSummary, error) {
	grouped := make(map[string][]HoldingSummary)
	var portfolioIDs []string
	for _, h := range in.Holdings {
		cfg, ok := in.Portfolios[h.Key.Portfolio]
		if !ok {
			return nil, &UnknownPortfolioError{ID: h.Key.Portfolio}
		}
		hs, err := summarizeHolding(h, cfg, in, in.Display)
		if err != nil {
			return nil, err
		}
		if _, seen := grouped[h.Key.Portfolio]; !seen {
			portfolioIDs = append(portfolioIDs, h.Key.Portfolio)
		}
		grouped[h.Key.Portfolio] = append(grouped[h.Key.Portfolio], hs)
	}
	sort.Strings(portfolioIDs)

	summary := &DashboardSummary{Display: in.Display}
	var all []HoldingSummary
	for _, id := range portfolioIDs {
		holdings := grouped[id]
		totals := totalize(holdings, in.Holdings, in.Rates, in.Display)
		summary.Portfolios = append(summary.Portfolios, PortfolioSummary{
			ID:       id,
			Holdings: holdings,
			Totals:   totals,
		})
		all = append(all, holdings...)
	}
	summary.Global = totalize(all, in.Holdings, in.Rates, in.Display)

	// Weights are assigned after both totals are known.
	globalValue := summary.Global.MarketValue.AsFloat()
	for pi := range summary.Portfolios {
		p := &summary.Portfolios[pi]
		portfolioValue := p.Totals.MarketValue.AsFloat()
		for hi := range p.Holdings {
			h := &p.Holdings[hi]
			value := h.MarketValue.AsFloat()
			if portfolioValue != 0 {
				h.WeightInPortfolio = Percent(value / portfolioValue * 100)
			}
			if globalValue != 0 {
				h.WeightInGlobal = Percent(value / globalValue * 100)
			}
		}
	}
	return summary, nil
}

// UnknownPortfolioError reports a holding whose portfolio has no
// configuration record.
type UnknownPortfolioError struct {
	ID string
}

func (e *UnknownPortfolioError) Error() string {
	return "unknown portfolio: " + e.ID
}

// summarizeHolding converts one holding's figures to the display currency
// and computes its after-tax value.
func summarizeHolding(h Holding, cfg Portfolio, in SummaryInput, display Currency) (HoldingSummary, error) {
	hs := HoldingSummary{
		Key:               h.Key,
		TradingCurrency:   h.Currency,
		Quantity:          h.TotalQty,
		HasPrice:          h.HasPrice,
		UnrealizedGainPct: h.UnrealizedGainPct,
		DayChangePct:      h.DayChangePct,
		returns:           in.Returns[h.Key],
	}

	var err error
	if hs.MarketValue, err = in.Rates.ConvertMoney(h.MarketValue, display); err != nil {
		return HoldingSummary{}, err
	}
	if hs.CostBasis, err = in.Rates.ConvertMoney(h.CostBasis, display); err != nil {
		return HoldingSummary{}, err
	}
	if hs.UnrealizedGain, err = in.Rates.ConvertMoney(h.UnrealizedGain, display); err != nil {
		return HoldingSummary{}, err
	}
	if hs.RealizedGain, err = in.Rates.ConvertMoney(h.RealizedGain, display); err != nil {
		return HoldingSummary{}, err
	}
	if hs.Dividends, err = in.Rates.ConvertMoney(h.Dividends, display); err != nil {
		return HoldingSummary{}, err
	}
	if hs.Fees, err = in.Rates.ConvertMoney(h.Fees, display); err != nil {
		return HoldingSummary{}, err
	}
	if liability, ok := in.Liabilities[h.Key]; ok {
		if hs.TaxLiability, err = in.Rates.ConvertMoney(liability, display); err != nil {
			return HoldingSummary{}, err
		}
	} else {
		hs.TaxLiability = M(0, display)
	}

	// After-tax value discounts only the positive part of the unrealized
	// gain. A losing position is worth its market value, not more.
	taxed := decimal.Decimal{}
	if hs.UnrealizedGain.IsPositive() {
		taxed = hs.UnrealizedGain.Decimal().Mul(cfg.EffectiveTaxRate())
	}
	hs.ValueAfterTax = M(hs.MarketValue.Decimal().Sub(taxed), display)
	return hs, nil
}

// totalize sums a group of holding summaries and computes its weighted
// metrics. originals and rates are needed for the FX month-change figure,
// which revalues the trading-currency amounts at month-old rates.
func totalize(group []HoldingSummary, originals []Holding, rates *RateSnapshot, display Currency) GroupTotals {
	t := GroupTotals{
		MarketValue:    M(0, display),
		CostBasis:      M(0, display),
		UnrealizedGain: M(0, display),
		RealizedGain:   M(0, display),
		Dividends:      M(0, display),
		Fees:           M(0, display),
		TaxLiability:   M(0, display),
		ValueAfterTax:  M(0, display),
	}
	for _, h := range group {
		t.MarketValue = t.MarketValue.Add(h.MarketValue)
		t.CostBasis = t.CostBasis.Add(h.CostBasis)
		t.UnrealizedGain = t.UnrealizedGain.Add(h.UnrealizedGain)
		t.RealizedGain = t.RealizedGain.Add(h.RealizedGain)
		t.Dividends = t.Dividends.Add(h.Dividends)
		t.Fees = t.Fees.Add(h.Fees)
		t.TaxLiability = t.TaxLiability.Add(h.TaxLiability)
		t.ValueAfterTax = t.ValueAfterTax.Add(h.ValueAfterTax)
	}

	t.DayChange = weightedDayChange(group)
	t.FXMonthChange = fxMonthChange(group, originals, rates)
	t.PeriodReturns = weightedPeriodReturns(group, display)
	return t
}

// weightedDayChange averages the day-change ratios of the holdings that
// report one, weighted by market value. Eligible holdings are those with a
// positive market value; the metric is incomplete when any eligible holding
// has no day change to report.
func weightedDayChange(group []HoldingSummary) Metric {
	var weighted, weights float64
	var eligible, contributed int
	for _, h := range group {
		value := h.MarketValue.AsFloat()
		if value <= 0 {
			continue
		}
		eligible++
		if math.IsNaN(h.DayChangePct) {
			continue
		}
		contributed++
		weighted += h.DayChangePct * value
		weights += value
	}

	m := Metric{Incomplete: contributed < eligible}
	if weights != 0 {
		m.Value = weighted / weights
	}
	return m
}

// weightedPeriodReturns aggregates per-holding lookback returns: the return
// ratio is market-value-weighted, the absolute gain is summed. A holding
// without return data for a period leaves that period incomplete.
func weightedPeriodReturns(group []HoldingSummary, display Currency) map[ReturnPeriod]PeriodSummary {
	returns := make(map[ReturnPeriod]PeriodSummary, len(ReturnPeriods()))
	for _, period := range ReturnPeriods() {
		var weighted, weights, gain float64
		var eligible, contributed int
		for _, h := range group {
			value := h.MarketValue.AsFloat()
			if value <= 0 {
				continue
			}
			eligible++
			r, ok := h.periodReturn(period)
			if !ok {
				continue
			}
			contributed++
			weighted += r.Perf * value
			weights += value
			gain += r.Gain
		}

		ps := PeriodSummary{
			Gain:       M(gain, display),
			Incomplete: contributed < eligible,
		}
		if weights != 0 {
			ps.Perf = weighted / weights
		}
		returns[period] = ps
	}
	return returns
}

// periodReturn reports a holding's return for one period, when it carries
// one.
func (h HoldingSummary) periodReturn(period ReturnPeriod) (PeriodReturn, bool) {
	if h.returns == nil {
		return PeriodReturn{}, false
	}
	r, ok := h.returns[period]
	return r, ok
}

// fxMonthChange measures how much of the group's value moved on exchange
// rates alone: today's trading-currency market values converted at month-old
// rates versus today's rates. Incomplete when month-old rates are missing
// for any contributing holding.
func fxMonthChange(group []HoldingSummary, originals []Holding, rates *RateSnapshot) Metric {
	ago := rates.MonthAgo()
	if ago == nil {
		return Metric{Incomplete: true}
	}

	byKey := make(map[HoldingKey]Holding, len(originals))
	for _, h := range originals {
		byKey[h.Key] = h
	}

	var current, past float64
	var eligible, contributed int
	for _, hs := range group {
		value := hs.MarketValue.AsFloat()
		if value <= 0 {
			continue
		}
		eligible++
		original, ok := byKey[hs.Key]
		if !ok {
			continue
		}
		agoValue, err := ago.ConvertMoney(original.MarketValue, hs.MarketValue.Currency())
		if err != nil {
			continue
		}
		contributed++
		current += value
		past += agoValue.AsFloat()
	}

	m := Metric{Incomplete: contributed < eligible}
	if past != 0 {
		m.Value = current/past - 1
	}
	return m
}
