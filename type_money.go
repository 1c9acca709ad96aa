package folio

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func init() {
	// Agorot (1/100 of a shekel) are not an ISO currency; register them so
	// formatting and fraction metadata work like any other code.
	money.AddCurrency(string(ILA), "ag", "1 $", ".", ",", 0)
}

// Money represents a monetary value: an exact decimal amount in major units
// of a specific currency.
type Money struct {
	value decimal.Decimal
	cur   Currency
}

// M builds a Money from a numeric constant or a decimal.
// Non-finite floats panic; use MoneyFromFloat for untrusted input.
func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency Currency) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// MoneyFromFloat builds a Money from an untrusted float, rejecting NaN and
// infinities before they can reach the ledger.
func MoneyFromFloat(v float64, currency Currency) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}, fmt.Errorf("amount is not a finite number: %v", v)
	}
	return M(v, currency), nil
}

// currency returns the full currency metadata, never nil.
func (m Money) currency() money.Currency {
	return *money.New(0, string(m.cur)).Currency()
}

// String formats the value with its currency's minor-unit convention.
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// SignedString renders the amount with an explicit sign, and "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() Currency       { return m.cur }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }
func (m Money) Mul(q Quantity) Money     { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Div(q Quantity) Money     { return Money{value: m.value.Div(q.value), cur: m.cur} }

// Add returns m+n. Adding mismatched currencies panics: money of different
// currencies must go through a Converter first.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }

// Sub returns m-n, with the same currency rule as Add.
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// cur resolves the currency of a binary operation. The zero currency is
// weak: it adopts the other operand's currency.
func cur(a, b Money) Currency {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + string(a.cur) + " != " + string(b.cur))
	}
	return a.cur
}

// Decimal returns the underlying decimal amount.
func (m Money) Decimal() decimal.Decimal { return m.value }

// AsFloat returns the amount as a float64 for presentation purposes.
func (m Money) AsFloat() float64 { return m.value.InexactFloat64() }

// MarshalJSON encodes the money as {"currency": ..., "amount": ...} with the
// amount rounded to the currency's minor unit.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", string(m.cur))
	w.Append("amount", m.value.Round(int32(m.currency().Fraction)))
	return w.MarshalJSON()
}
