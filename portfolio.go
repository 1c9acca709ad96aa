package folio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// TaxPolicy selects how realized and unrealized gains of a portfolio are
// taxed.
type TaxPolicy string

const (
	// TaxFree portfolios owe nothing on any gain.
	TaxFree TaxPolicy = "tax_free"
	// NominalGain taxes the nominal gain at the capital-gains rate, with no
	// inflation adjustment.
	NominalGain TaxPolicy = "nominal_gain"
	// RealGain scales the cost basis by a CPI ratio before computing the
	// taxable gain.
	RealGain TaxPolicy = "real_gain"
	// Pension taxes both capital and income components at the income-tax
	// rate.
	Pension TaxPolicy = "pension"
)

// ParseTaxPolicy parses a string into a TaxPolicy.
func ParseTaxPolicy(s string) (TaxPolicy, error) {
	switch TaxPolicy(s) {
	case TaxFree, NominalGain, RealGain, Pension:
		return TaxPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown tax policy: %q", s)
	}
}

// DividendPolicy selects how dividends of a portfolio are treated by the
// ledger.
type DividendPolicy string

const (
	// DivCashTaxed credits dividends as taxable cash income; reinvestment
	// quantity is forced to zero regardless of what the transaction carries.
	DivCashTaxed DividendPolicy = "cash_taxed"
	// DivAccumulate reinvests dividends tax-free (accumulating funds).
	DivAccumulate DividendPolicy = "accumulate_tax_free"
	// DivHybridRSU credits income and honors reinvestment as recorded, the
	// treatment used by income-taxed RSU grant portfolios.
	DivHybridRSU DividendPolicy = "hybrid_rsu"
)

// ParseDividendPolicy parses a string into a DividendPolicy.
func ParseDividendPolicy(s string) (DividendPolicy, error) {
	switch DividendPolicy(s) {
	case DivCashTaxed, DivAccumulate, DivHybridRSU:
		return DividendPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown dividend policy: %q", s)
	}
}

// CommissionRule computes the broker commission for a trade when the
// transaction record does not carry one explicitly.
type CommissionRule struct {
	Fixed   decimal.Decimal `json:"fixed"`   // flat amount per trade
	Rate    decimal.Decimal `json:"rate"`    // fraction of the gross amount
	Minimum decimal.Decimal `json:"minimum"` // floor applied after fixed+rate
}

// Apply returns the commission for a trade of the given gross amount, in the
// same currency.
func (r CommissionRule) Apply(gross Money) Money {
	c := r.Fixed.Add(gross.Decimal().Mul(r.Rate))
	if c.LessThan(r.Minimum) {
		c = r.Minimum
	}
	return M(c, gross.Currency())
}

// Portfolio is the read-only configuration of one portfolio: its base
// currency, tax regime, and dividend treatment.
type Portfolio struct {
	ID         string          `json:"id"`
	Currency   Currency        `json:"currency"`
	TaxPolicy  TaxPolicy       `json:"taxPolicy"`
	CGT        decimal.Decimal `json:"cgt"`    // capital-gains tax rate, e.g. 0.25
	IncTax     decimal.Decimal `json:"incTax"` // marginal income-tax rate, e.g. 0.47
	DivPolicy  DividendPolicy  `json:"divPolicy"`
	Commission CommissionRule  `json:"commission"`
}

// Normalize applies configuration-time rules: a pension portfolio's
// capital-gains rate is forced equal to its income-tax rate here, not
// recomputed in the tax engine.
func (p Portfolio) Normalize() Portfolio {
	if p.TaxPolicy == Pension {
		p.CGT = p.IncTax
	}
	return p
}

// EffectiveTaxRate returns the rate applied to unrealized gains in the
// after-tax value figure.
func (p Portfolio) EffectiveTaxRate() decimal.Decimal {
	switch p.TaxPolicy {
	case TaxFree:
		return decimal.Decimal{}
	case Pension:
		return p.IncTax
	default:
		return p.CGT
	}
}

// WithRuleCommission fills in the portfolio's rule-computed commission for a
// trade that does not carry one explicitly. Non-trade rows and trades with a
// recorded commission are returned unchanged.
func (p Portfolio) WithRuleCommission(tx Transaction) Transaction {
	if !tx.Commission.IsZero() {
		return tx
	}
	if !tx.Type.acquires() && !tx.Type.disposes() {
		return tx
	}
	c := p.Commission.Apply(tx.GrossAmount())
	if c.IsZero() {
		return tx
	}
	return tx.WithCommission(c)
}

// DecodePortfolios reads a JSON array of portfolio configurations, validates
// each one, and returns them indexed by id.
func DecodePortfolios(r io.Reader) (map[string]Portfolio, error) {
	var list []struct {
		Portfolio
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("could not decode portfolio configurations: %w", err)
	}

	configs := make(map[string]Portfolio, len(list))
	for _, raw := range list {
		p := raw.Portfolio
		if p.ID == "" {
			return nil, fmt.Errorf("portfolio configuration without id")
		}
		currency, err := NormalizeCurrency(raw.Currency)
		if err != nil {
			return nil, fmt.Errorf("portfolio %q: %w", p.ID, err)
		}
		p.Currency = currency
		if _, err := ParseTaxPolicy(string(p.TaxPolicy)); err != nil {
			return nil, fmt.Errorf("portfolio %q: %w", p.ID, err)
		}
		if _, err := ParseDividendPolicy(string(p.DivPolicy)); err != nil {
			return nil, fmt.Errorf("portfolio %q: %w", p.ID, err)
		}
		configs[p.ID] = p.Normalize()
	}
	return configs, nil
}
