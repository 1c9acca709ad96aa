package folio

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the closed set of currencies the engine accounts in.
type Currency string

const (
	USD Currency = "USD"
	ILS Currency = "ILS"
	ILA Currency = "ILA" // agorot, 1/100 ILS
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// Currencies lists every supported currency.
func Currencies() []Currency { return []Currency{USD, ILS, ILA, EUR, GBP} }

// agorotPerShekel is the fixed ILA/ILS minor-unit ratio. It never depends on
// a rate snapshot.
var agorotPerShekel = decimal.NewFromInt(100)

// UnknownCurrencyError reports a currency code, symbol, or name that could
// not be classified. Money is never silently misclassified.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Code)
}

// RateUnavailableError reports a conversion whose required exchange rate is
// missing from the snapshot. Callers decide whether to propagate or fall
// back; the converter never silently zeroes an amount.
type RateUnavailableError struct {
	From, To Currency
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("exchange rate unavailable for %s to %s", e.From, e.To)
}

// aliases maps symbols, Hebrew names, and ISO spellings onto the closed set.
// Keys are lower-cased before lookup.
var aliases = map[string]Currency{
	"usd": USD, "$": USD, "us$": USD, "דולר": USD,
	"ils": ILS, "₪": ILS, "nis": ILS, "שח": ILS, "ש\"ח": ILS, "שקל": ILS, "שקל חדש": ILS,
	"ila": ILA, "אג": ILA, "אג'": ILA, "אגורה": ILA, "אגורות": ILA,
	"eur": EUR, "€": EUR, "אירו": EUR, "יורו": EUR,
	"gbp": GBP, "£": GBP, "ליש\"ט": GBP, "פאונד": GBP,
}

// NormalizeCurrency maps a raw code, symbol, or Hebrew name onto the closed
// currency set. Unrecognized input is an *UnknownCurrencyError.
func NormalizeCurrency(code string) (Currency, error) {
	key := strings.ToLower(strings.TrimSpace(code))
	if c, ok := aliases[key]; ok {
		return c, nil
	}
	return "", &UnknownCurrencyError{Code: code}
}

// RateSnapshot is a single point-in-time view of exchange rates, not a
// historical series. Each rate is the number of units of the currency per
// one USD (e.g. Current[ILS] = 3.5 means 1 USD = 3.5 ILS).
type RateSnapshot struct {
	Current map[Currency]decimal.Decimal
	Ago1m   map[Currency]decimal.Decimal
}

// rate returns the units-per-USD rate for a currency, with USD implicitly 1.
// ILA has no rate of its own; it is always derived from ILS.
func (s *RateSnapshot) rate(c Currency) (decimal.Decimal, bool) {
	if c == USD {
		return decimal.NewFromInt(1), true
	}
	if s == nil || s.Current == nil {
		return decimal.Decimal{}, false
	}
	r, ok := s.Current[c]
	if !ok || r.IsZero() {
		return decimal.Decimal{}, false
	}
	return r, true
}

// MonthAgo returns a snapshot view whose current rates are the month-old
// rates, for comparing a valuation against its month-ago currency
// projection. Returns nil when no month-old rates were captured.
func (s *RateSnapshot) MonthAgo() *RateSnapshot {
	if s == nil || len(s.Ago1m) == 0 {
		return nil
	}
	return &RateSnapshot{Current: s.Ago1m}
}

// Convert converts an amount between two currencies using the snapshot.
//
// Same-currency conversion is the identity. ILA and ILS convert by the fixed
// minor-unit ratio, bypassing the snapshot entirely. Every other pair pivots
// through USD. A missing rate is a *RateUnavailableError, never a zero.
func (s *RateSnapshot) Convert(amount decimal.Decimal, from, to Currency) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	// Agorot are a minor unit of the shekel: fold them into ILS on both
	// sides, then convert between the remaining major currencies.
	if from == ILA {
		return s.Convert(amount.Div(agorotPerShekel), ILS, to)
	}
	if to == ILA {
		shekels, err := s.Convert(amount, from, ILS)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return shekels.Mul(agorotPerShekel), nil
	}

	fromRate, ok := s.rate(from)
	if !ok {
		return decimal.Decimal{}, &RateUnavailableError{From: from, To: to}
	}
	toRate, ok := s.rate(to)
	if !ok {
		return decimal.Decimal{}, &RateUnavailableError{From: from, To: to}
	}
	// from -> USD -> to
	return amount.Div(fromRate).Mul(toRate), nil
}

// ConvertMoney converts a Money value into the target currency.
func (s *RateSnapshot) ConvertMoney(m Money, to Currency) (Money, error) {
	if m.cur == "" || m.IsZero() {
		// Weak zero money adopts the target currency.
		return M(m.value, to), nil
	}
	value, err := s.Convert(m.value, m.cur, to)
	if err != nil {
		return Money{}, err
	}
	return M(value, to), nil
}
