package folio

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// TxType is a typed string identifying a transaction's kind.
type TxType string

// Transaction types recorded in the ledger.
const (
	TxBuy          TxType = "buy"
	TxSell         TxType = "sell"
	TxBuyTransfer  TxType = "buy-transfer"
	TxSellTransfer TxType = "sell-transfer"
	TxDividend     TxType = "dividend"
	TxFee          TxType = "fee"
	TxDivEvent     TxType = "div-event" // per-share dividend declared for all holders
)

// ParseTxType parses a string into a TxType.
func ParseTxType(s string) (TxType, error) {
	switch TxType(s) {
	case TxBuy, TxSell, TxBuyTransfer, TxSellTransfer, TxDividend, TxFee, TxDivEvent:
		return TxType(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// acquires reports whether the type creates a new lot.
func (t TxType) acquires() bool { return t == TxBuy || t == TxBuyTransfer }

// disposes reports whether the type consumes lots FIFO.
func (t TxType) disposes() bool { return t == TxSell || t == TxSellTransfer }

// SecurityID identifies a security by its exchange and ticker, the key under
// which external price histories are addressed.
type SecurityID struct {
	Exchange string
	Ticker   string
}

func (s SecurityID) String() string { return s.Exchange + ":" + s.Ticker }

// HoldingKey identifies one holding: all the lots of one ticker inside one
// portfolio.
type HoldingKey struct {
	Portfolio string
	Ticker    string
}

func (k HoldingKey) String() string { return k.Portfolio + "/" + k.Ticker }

// Transaction is a single immutable row of the transaction log.
//
// VestDate, when set, defers the transaction's effective ledger date without
// changing its recorded date: until the vest date the transaction does not
// participate in FIFO consumption or valuation.
type Transaction struct {
	ID          string   `json:"id"`
	Date        Date     `json:"date"`
	PortfolioID string   `json:"portfolio"`
	Ticker      string   `json:"ticker"`
	Exchange    string   `json:"exchange,omitempty"`
	Type        TxType   `json:"type"`
	Quantity    Quantity `json:"quantity"`
	Price       Money    `json:"price"` // per unit, in the security's trading currency
	Commission  Money    `json:"commission,omitempty"`
	VestDate    Date     `json:"vestDate,omitempty"`
}

// NewTransaction builds a transaction with a fresh identifier.
func NewTransaction(on Date, portfolioID, ticker, exchange string, typ TxType, qty Quantity, price Money) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Date:        on,
		PortfolioID: portfolioID,
		Ticker:      ticker,
		Exchange:    exchange,
		Type:        typ,
		Quantity:    qty,
		Price:       price,
	}
}

// WithCommission returns a copy of the transaction carrying a commission.
func (t Transaction) WithCommission(c Money) Transaction {
	t.Commission = c
	return t
}

// WithVestDate returns a copy of the transaction whose effective ledger date
// is deferred to the vest date.
func (t Transaction) WithVestDate(on Date) Transaction {
	t.VestDate = on
	return t
}

// EffectiveOn returns the date at which the transaction enters the ledger:
// the vest date when present, the recorded date otherwise.
func (t Transaction) EffectiveOn() Date {
	if !t.VestDate.IsZero() {
		return t.VestDate
	}
	return t.Date
}

// Key returns the holding this transaction belongs to.
func (t Transaction) Key() HoldingKey {
	return HoldingKey{Portfolio: t.PortfolioID, Ticker: t.Ticker}
}

// Security returns the key under which this ticker's price history is
// addressed.
func (t Transaction) Security() SecurityID {
	return SecurityID{Exchange: t.Exchange, Ticker: t.Ticker}
}

// GrossAmount returns quantity times unit price, in the trading currency.
func (t Transaction) GrossAmount() Money { return t.Price.Mul(t.Quantity) }

// Validate checks the transaction for corrupting input before it may touch
// a ledger. The ledger's invariants are never exposed to an invalid row.
func (t Transaction) Validate() error {
	var errs []error
	if t.PortfolioID == "" {
		errs = append(errs, errors.New("portfolio id is missing"))
	}
	if t.Ticker == "" && t.Type != TxFee {
		errs = append(errs, errors.New("ticker is missing"))
	}
	if _, err := ParseTxType(string(t.Type)); err != nil {
		errs = append(errs, err)
	}
	if t.Date.IsZero() {
		errs = append(errs, errors.New("date is missing"))
	}
	switch t.Type {
	case TxBuy, TxSell, TxBuyTransfer, TxSellTransfer:
		if !t.Quantity.IsPositive() {
			errs = append(errs, fmt.Errorf("%s quantity must be positive, got %s", t.Type, t.Quantity))
		}
		if t.Price.IsNegative() {
			errs = append(errs, fmt.Errorf("%s price cannot be negative, got %s", t.Type, t.Price))
		}
		if t.Price.Currency() == "" {
			errs = append(errs, errors.New("price currency is missing"))
		}
	case TxDividend, TxDivEvent, TxFee:
		if t.Price.IsNegative() {
			errs = append(errs, fmt.Errorf("%s amount cannot be negative, got %s", t.Type, t.Price))
		}
		if t.Quantity.IsNegative() {
			errs = append(errs, fmt.Errorf("%s quantity cannot be negative, got %s", t.Type, t.Quantity))
		}
		if t.Price.Currency() == "" {
			errs = append(errs, errors.New("amount currency is missing"))
		}
	}
	if t.Commission.IsNegative() {
		errs = append(errs, fmt.Errorf("commission cannot be negative, got %s", t.Commission))
	}
	if !t.Commission.IsZero() {
		if c := t.Commission.Currency(); c != "" && t.Price.Currency() != "" && c != t.Price.Currency() {
			errs = append(errs, fmt.Errorf("commission currency %s does not match price currency %s", c, t.Price.Currency()))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid %s transaction on %s: %w", t.Type, t.Date, errors.Join(errs...))
	}
	return nil
}

// MarshalJSON encodes the transaction with a stable field order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", t.Type)
	w.Append("date", t.Date)
	w.Append("portfolio", t.PortfolioID)
	w.Optional("ticker", t.Ticker)
	w.Optional("exchange", t.Exchange)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price.Decimal())
	w.Append("currency", string(t.Price.Currency()))
	if !t.Commission.IsZero() {
		w.Append("commission", t.Commission.Decimal())
	}
	if !t.VestDate.IsZero() {
		w.Append("vestDate", t.VestDate)
	}
	w.Optional("id", t.ID)
	return w.MarshalJSON()
}
