package folio

import (
	"github.com/shopspring/decimal"
)

// CPIIndex supplies inflation-index ratios for the real-gain tax policy.
// The engine consumes the ratio as an opaque figure; where the index comes
// from is a collaborator's concern.
type CPIIndex interface {
	// Ratio returns CPI(now)/CPI(at), or false when the index has no data
	// covering both dates.
	Ratio(at, now Date) (decimal.Decimal, bool)
}

// TaxCalculator computes tax liabilities for one portfolio.
//
// Every liability is computed in the portfolio's base currency and converted
// to a display currency only at the aggregation boundary. Computing tax in
// the display currency directly would let a currency move manufacture a
// taxable gain that does not exist in the base currency.
type TaxCalculator struct {
	Portfolio Portfolio
	CPI       CPIIndex // optional; nil disables inflation adjustment
	Rates     *RateSnapshot
}

// NewTaxCalculator builds a calculator for one portfolio. The configuration
// is normalized first (a pension portfolio's cgt is forced to incTax).
func NewTaxCalculator(p Portfolio, cpi CPIIndex, rates *RateSnapshot) *TaxCalculator {
	return &TaxCalculator{Portfolio: p.Normalize(), CPI: cpi, Rates: rates}
}

// base converts a trading-currency amount into the portfolio's base
// currency.
func (c *TaxCalculator) base(m Money) (Money, error) {
	return c.Rates.ConvertMoney(m, c.Portfolio.Currency)
}

// adjustedCost returns the policy-adjusted cost basis of a position, in the
// base currency. Under the real-gain policy the cost is scaled by the CPI
// ratio between acquisition and valuation; a missing index leaves the cost
// nominal.
func (c *TaxCalculator) adjustedCost(cost Money, acquired, on Date) (Money, error) {
	baseCost, err := c.base(cost)
	if err != nil {
		return Money{}, err
	}
	if c.Portfolio.TaxPolicy != RealGain || c.CPI == nil {
		return baseCost, nil
	}
	ratio, ok := c.CPI.Ratio(acquired, on)
	if !ok {
		return baseCost, nil
	}
	return M(baseCost.Decimal().Mul(ratio), baseCost.Currency()), nil
}

// LotLiability computes the unrealized liability of one open lot on a date,
// given the security's unit price, in the base currency.
//
// The capital component is the policy-adjusted gain times the capital-gains
// rate, floored at zero (loss offsetting is out of scope). For income-taxed
// grants an income-tax component on the grant's base value is added; the
// two components are summed, never folded into one combined rate.
func (c *TaxCalculator) LotLiability(lot Lot, price Money, on Date) (Money, error) {
	zero := M(0, c.Portfolio.Currency)
	if c.Portfolio.TaxPolicy == TaxFree {
		return zero, nil
	}

	marketValue, err := c.base(price.Mul(lot.RemainingQty))
	if err != nil {
		return Money{}, err
	}
	cost, err := c.adjustedCost(lot.CostBasis, lot.AcquisitionDate, on)
	if err != nil {
		return Money{}, err
	}

	taxable := marketValue.Sub(cost)
	liability := zero
	if taxable.IsPositive() {
		liability = M(taxable.Decimal().Mul(c.Portfolio.CGT), c.Portfolio.Currency)
	}

	income, err := c.incomeComponent(lot.GrantValue)
	if err != nil {
		return Money{}, err
	}
	return liability.Add(income), nil
}

// incomeComponent taxes a grant's base value at the income-tax rate.
func (c *TaxCalculator) incomeComponent(grantValue Money) (Money, error) {
	if grantValue.IsZero() {
		return M(0, c.Portfolio.Currency), nil
	}
	baseGrant, err := c.base(grantValue)
	if err != nil {
		return Money{}, err
	}
	return M(baseGrant.Decimal().Mul(c.Portfolio.IncTax), c.Portfolio.Currency), nil
}

// UnrealizedLiability sums LotLiability over a holding's open lots, minus
// the fee deduction, floored at zero. The holding must carry a price; a
// holding without one owes nothing yet.
func (c *TaxCalculator) UnrealizedLiability(h Holding, on Date) (Money, error) {
	zero := M(0, c.Portfolio.Currency)
	if c.Portfolio.TaxPolicy == TaxFree || !h.HasPrice {
		return zero, nil
	}

	// Taxable gain is accumulated across lots before flooring, so a losing
	// lot offsets a winning one within the same holding.
	taxable := zero
	income := zero
	for _, lot := range h.Lots {
		marketValue, err := c.base(h.LastPrice.Mul(lot.RemainingQty))
		if err != nil {
			return Money{}, err
		}
		cost, err := c.adjustedCost(lot.CostBasis, lot.AcquisitionDate, on)
		if err != nil {
			return Money{}, err
		}
		taxable = taxable.Add(marketValue.Sub(cost))

		lotIncome, err := c.incomeComponent(lot.GrantValue)
		if err != nil {
			return Money{}, err
		}
		income = income.Add(lotIncome)
	}

	fees, err := c.base(h.Fees)
	if err != nil {
		return Money{}, err
	}
	taxable = taxable.Sub(fees)

	liability := zero
	if taxable.IsPositive() {
		liability = M(taxable.Decimal().Mul(c.Portfolio.CGT), c.Portfolio.Currency)
	}
	return liability.Add(income), nil
}

// RealizedLiability computes the liability locked in by past sales, in the
// base currency. Each sale portion keeps its source lot's acquisition date
// and grant value, so CPI adjustment and the income component survive
// partial consumption.
func (c *TaxCalculator) RealizedLiability(sales []Sale) (Money, error) {
	zero := M(0, c.Portfolio.Currency)
	if c.Portfolio.TaxPolicy == TaxFree {
		return zero, nil
	}

	total := zero
	for _, sale := range sales {
		proceeds, err := c.base(sale.Proceeds)
		if err != nil {
			return Money{}, err
		}

		taxable := proceeds
		income := zero
		for _, portion := range sale.Portions {
			cost, err := c.adjustedCost(portion.Cost, portion.AcquisitionDate, sale.Date)
			if err != nil {
				return Money{}, err
			}
			taxable = taxable.Sub(cost)

			portionIncome, err := c.incomeComponent(portion.GrantValue)
			if err != nil {
				return Money{}, err
			}
			income = income.Add(portionIncome)
		}

		if taxable.IsPositive() {
			total = total.Add(M(taxable.Decimal().Mul(c.Portfolio.CGT), c.Portfolio.Currency))
		}
		total = total.Add(income)
	}
	return total, nil
}
