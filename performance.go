package folio

import (
	"fmt"
	"math"
	"sort"

	"github.com/amitgr/folio/date"
)

// PerformancePoint is one day of the portfolio's valuation series, in the
// display currency. Points are emitted for every calendar day present in
// the involved price histories, in chronological order.
type PerformancePoint struct {
	Date          Date    `json:"date"`
	HoldingsValue float64 `json:"holdingsValue"`
	CostBasis     float64 `json:"costBasis"`
	GainsValue    float64 `json:"gainsValue"`
	TWR           float64 `json:"twr"`
}

// PerformanceInput is everything the engine needs to replay history:
// the full transaction log, per-security price histories, trading
// currencies, portfolio configurations, and a rate snapshot.
//
// Rates is a single point-in-time snapshot: every historical conversion
// uses the current rate, not the rate of the transaction's day. Valuing
// cross-currency history at true daily rates would require a rate-history
// collaborator the system does not consume, so the series stays consistent
// with the snapshot used everywhere else.
type PerformanceInput struct {
	Transactions []Transaction
	Prices       map[SecurityID]*date.History[float64]
	Currencies   map[SecurityID]Currency
	Portfolios   map[string]Portfolio
	Rates        *RateSnapshot
	Display      Currency
}

// denomEpsilon decides whether yesterday's value (or today's flow) is
// material enough to serve as a return denominator.
const denomEpsilon = 1e-9

// tickerState is the running position of one holding during replay, tracked
// in the display currency.
type tickerState struct {
	security SecurityID
	policy   DividendPolicy
	queue    lotQueue
}

// BuildPerformanceSeries replays the transaction log day by day against the
// price histories and returns the daily valuation series with a chained
// time-weighted-return index starting at 1.0.
//
// On each day, transactions effective on or before the day are applied in
// recorded order, positions are valued with the latest price at or before
// the day (a security with no such price contributes nothing that day), and
// the day return is chained into the index. On an inception day, when the
// previous value is immaterial but flow occurred, the return divides by the
// flow instead of the missing denominator; this is a documented
// approximation, not a general Modified-Dietz computation.
func BuildPerformanceSeries(in PerformanceInput) ([]PerformancePoint, error) {
	if len(in.Transactions) == 0 {
		return nil, nil
	}

	txs := make([]Transaction, len(in.Transactions))
	copy(txs, in.Transactions)
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].EffectiveOn().Before(txs[j].EffectiveOn())
	})
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
	}
	first := txs[0].EffectiveOn()

	// The calendar is the union of all involved securities' price dates,
	// restricted to days on or after the first transaction.
	involved := make(map[SecurityID]bool)
	var histories []*date.History[float64]
	for _, tx := range txs {
		sec := tx.Security()
		if involved[sec] {
			continue
		}
		involved[sec] = true
		if h := in.Prices[sec]; h != nil {
			histories = append(histories, h)
		}
	}
	var days []Date
	for d := range date.Iterate(histories...) {
		if d.Before(first) {
			continue
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, nil
	}

	display := in.Display
	toDisplay := func(m Money) (float64, error) {
		converted, err := in.Rates.ConvertMoney(m, display)
		if err != nil {
			return 0, err
		}
		return converted.AsFloat(), nil
	}

	var (
		states  = make(map[HoldingKey]*tickerState)
		ordered []*tickerState // first-seen order, for deterministic valuation
	)
	stateFor := func(tx Transaction) (*tickerState, error) {
		key := tx.Key()
		if s, ok := states[key]; ok {
			return s, nil
		}
		cfg, ok := in.Portfolios[tx.PortfolioID]
		if !ok {
			return nil, fmt.Errorf("transaction on %s references unknown portfolio %q", tx.Date, tx.PortfolioID)
		}
		s := &tickerState{security: tx.Security(), policy: cfg.DivPolicy}
		states[key] = s
		ordered = append(ordered, s)
		return s, nil
	}

	var (
		points     []PerformancePoint
		twr        = 1.0
		prevValue  float64
		otherGains float64 // realized gains + dividend income - fees, cumulative
		nextTx     int
	)

	for _, day := range days {
		var dayFlow, dayIncome, dayFees float64

		for nextTx < len(txs) && !txs[nextTx].EffectiveOn().After(day) {
			tx := txs[nextTx]
			nextTx++

			state, err := stateFor(tx)
			if err != nil {
				return nil, err
			}

			gross, err := toDisplay(tx.GrossAmount())
			if err != nil {
				return nil, err
			}
			commission, err := toDisplay(tx.Commission)
			if err != nil {
				return nil, err
			}

			switch {
			case tx.Type.acquires():
				cost := gross + commission
				state.queue.push(Lot{
					AcquisitionDate:     tx.EffectiveOn(),
					OriginalQty:         tx.Quantity,
					RemainingQty:        tx.Quantity,
					CostBasis:           M(cost, display),
					SourceTransactionID: tx.ID,
				})
				dayFlow += cost
			case tx.Type.disposes():
				remaining := state.queue.remaining()
				if tx.Quantity.GreaterThan(remaining) {
					return nil, &OversellError{Key: tx.Key(), Requested: tx.Quantity, Remaining: remaining}
				}
				proceeds := gross - commission
				consumed := state.queue.consume(tx.Quantity)
				var cost float64
				for _, s := range consumed {
					cost += s.cost.AsFloat()
				}
				otherGains += proceeds - cost
				dayFlow -= proceeds
			case tx.Type == TxDividend, tx.Type == TxDivEvent:
				amount := gross
				if tx.Type == TxDivEvent {
					// Per-share rate times the position held today.
					perShare, err := toDisplay(tx.Price)
					if err != nil {
						return nil, err
					}
					amount = perShare * state.queue.remaining().AsFloat()
				} else {
					// For a dividend row the price field is the total
					// gross amount, not a per-unit price.
					amount, err = toDisplay(tx.Price)
					if err != nil {
						return nil, err
					}
				}
				dayIncome += amount

				reinvest := tx.Quantity
				if state.policy == DivCashTaxed {
					reinvest = Q(0)
				}
				if reinvest.IsPositive() {
					// DRIP: the income immediately funds an internal
					// purchase, so it also counts as inflow.
					state.queue.push(Lot{
						AcquisitionDate:     tx.EffectiveOn(),
						OriginalQty:         reinvest,
						RemainingQty:        reinvest,
						CostBasis:           M(amount, display),
						SourceTransactionID: tx.ID,
					})
					dayFlow += amount
				}
			case tx.Type == TxFee:
				fee, err := toDisplay(tx.Price)
				if err != nil {
					return nil, err
				}
				dayFees += fee
			}
		}

		// Value every open position with the latest price at or before this
		// day. No extrapolation: a security with no price point yet
		// contributes nothing today.
		var endValue, costBasis float64
		for _, state := range ordered {
			costBasis += state.queue.totalCost().AsFloat()
			qty := state.queue.remaining()
			if qty.IsZero() {
				continue
			}
			history := in.Prices[state.security]
			if history == nil {
				continue
			}
			price, ok := history.ValueAsOf(day)
			if !ok {
				continue
			}
			currency, ok := in.Currencies[state.security]
			if !ok {
				currency = display
			}
			value, err := toDisplay(M(price*qty.AsFloat(), currency))
			if err != nil {
				return nil, err
			}
			endValue += value
		}

		numerator := (endValue - dayFlow) - prevValue + dayIncome - dayFees
		var dayReturn float64
		switch {
		case math.Abs(prevValue) > denomEpsilon:
			dayReturn = numerator / prevValue
		case math.Abs(dayFlow) > denomEpsilon:
			// Inception day: no prior value to divide by, use the flow.
			dayReturn = numerator / dayFlow
		}
		twr *= 1 + dayReturn

		otherGains += dayIncome - dayFees
		points = append(points, PerformancePoint{
			Date:          day,
			HoldingsValue: endValue,
			CostBasis:     costBasis,
			GainsValue:    (endValue - costBasis) + otherGains,
			TWR:           twr,
		})
		prevValue = endValue
	}
	return points, nil
}

// ReturnPeriod is one of the closed set of lookback periods reported by
// CalculatePeriodReturns.
type ReturnPeriod int

const (
	Period1W ReturnPeriod = iota
	Period1M
	Period3M
	PeriodYTD
	Period1Y
	Period5Y
	PeriodAll
)

// ReturnPeriods lists every period, in reporting order.
func ReturnPeriods() []ReturnPeriod {
	return []ReturnPeriod{Period1W, Period1M, Period3M, PeriodYTD, Period1Y, Period5Y, PeriodAll}
}

func (p ReturnPeriod) String() string {
	switch p {
	case Period1W:
		return "1W"
	case Period1M:
		return "1M"
	case Period3M:
		return "3M"
	case PeriodYTD:
		return "YTD"
	case Period1Y:
		return "1Y"
	case Period5Y:
		return "5Y"
	case PeriodAll:
		return "ALL"
	default:
		return "unknown"
	}
}

// start returns the first date inside the period ending at 'latest'. The
// ALL period has no start: it always compares against the synthetic
// pre-history point.
func (p ReturnPeriod) start(latest Date) (Date, bool) {
	switch p {
	case Period1W:
		return latest.Add(-7), true
	case Period1M:
		return latest.AddMonths(-1), true
	case Period3M:
		return latest.AddMonths(-3), true
	case PeriodYTD:
		return latest.StartOfYear(), true
	case Period1Y:
		return latest.AddYears(-1), true
	case Period5Y:
		return latest.AddYears(-5), true
	default:
		return Date{}, false
	}
}

// PeriodReturn is the performance of one lookback period: the TWR-derived
// return ratio and the absolute gain in display currency.
type PeriodReturn struct {
	Perf float64 `json:"perf"`
	Gain float64 `json:"gain"`
}

// CalculatePeriodReturns derives the standard lookback returns from a daily
// series. For each period the starting point is the first point at or after
// the latest date minus the period; when the period predates all history,
// the synthetic pre-history point (twr 1.0, gains 0) is used. A series with
// fewer than two points has insufficient history and reports zero for every
// period.
func CalculatePeriodReturns(points []PerformancePoint) map[ReturnPeriod]PeriodReturn {
	returns := make(map[ReturnPeriod]PeriodReturn, len(ReturnPeriods()))
	for _, p := range ReturnPeriods() {
		returns[p] = PeriodReturn{}
	}
	if len(points) < 2 {
		return returns
	}

	latest := points[len(points)-1]
	for _, p := range ReturnPeriods() {
		startTWR, startGains := 1.0, 0.0
		if startDate, ok := p.start(latest.Date); ok {
			idx := sort.Search(len(points), func(i int) bool {
				return !points[i].Date.Before(startDate)
			})
			if idx < len(points) {
				startTWR, startGains = points[idx].TWR, points[idx].GainsValue
			}
			// idx == len(points) cannot happen: latest itself qualifies.
			// A start date before all history keeps the synthetic point.
			if idx == 0 && startDate.Before(points[0].Date) {
				startTWR, startGains = 1.0, 0.0
			}
		}
		perf := 0.0
		if startTWR != 0 {
			perf = latest.TWR/startTWR - 1
		}
		returns[p] = PeriodReturn{
			Perf: perf,
			Gain: latest.GainsValue - startGains,
		}
	}
	return returns
}
