package folio

import (
	"fmt"
	"sort"
)

// OversellError reports a sale that exceeds the holding's remaining
// quantity. The ledger never enters a negative-lot state.
type OversellError struct {
	Key       HoldingKey
	Requested Quantity
	Remaining Quantity
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("cannot sell %s of %s: only %s remaining", e.Requested, e.Key, e.Remaining)
}

// SalePortion is the part of a disposal taken from a single lot. The
// acquisition date and grant value carry over from the lot so tax policies
// that depend on them (CPI adjustment, RSU income tax) can price realized
// gains correctly.
type SalePortion struct {
	AcquisitionDate Date
	Quantity        Quantity
	Cost            Money
	GrantValue      Money // grant base value of the consumed portion, zero for non-vesting lots
}

// Sale records one disposal: proceeds, the FIFO cost consumed, and the
// realized gain, all in the trading currency.
type Sale struct {
	Date     Date
	Quantity Quantity
	Proceeds Money
	Cost     Money
	Gain     Money
	Portions []SalePortion
}

// Ledger maintains FIFO tax-lot state for a single holding: one ticker
// inside one portfolio. Lots are created by buys, transfers-in, and
// dividend reinvestment, consumed oldest-first by sales, and all amounts
// are kept in the security's trading currency.
type Ledger struct {
	key      HoldingKey
	policy   DividendPolicy
	currency Currency // trading currency, fixed by the first transaction
	queue    lotQueue
	sales    []Sale
	realized Money // sum of realized gains
	income   Money // cumulative dividend income
	fees     Money
}

// NewLedger creates an empty ledger for one holding under the given
// dividend policy.
func NewLedger(key HoldingKey, policy DividendPolicy) *Ledger {
	return &Ledger{key: key, policy: policy}
}

// Key returns the holding this ledger accounts for.
func (l *Ledger) Key() HoldingKey { return l.key }

// Currency returns the trading currency of the holding (zero before the
// first transaction).
func (l *Ledger) Currency() Currency { return l.currency }

// TotalQty returns the quantity held: the sum of every open lot's remaining
// quantity.
func (l *Ledger) TotalQty() Quantity { return l.queue.remaining() }

// CostBasis returns the total cost basis of the open lots, in the trading
// currency.
func (l *Ledger) CostBasis() Money { return l.queue.totalCost() }

// Lots returns the open lots, oldest first.
func (l *Ledger) Lots() []Lot { return l.queue.active() }

// Sales returns every disposal applied so far, in order.
func (l *Ledger) Sales() []Sale { return l.sales }

// RealizedGain returns the cumulative realized gain, in the trading currency.
func (l *Ledger) RealizedGain() Money { return l.realized }

// Dividends returns the cumulative dividend income, in the trading currency.
func (l *Ledger) Dividends() Money { return l.income }

// Fees returns the cumulative fees, in the trading currency.
func (l *Ledger) Fees() Money { return l.fees }

// Apply validates one transaction and mutates the ledger accordingly.
// Transactions must be applied in effective-date order.
func (l *Ledger) Apply(tx Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.Key() != l.key {
		return fmt.Errorf("transaction for %s applied to ledger %s", tx.Key(), l.key)
	}
	if l.currency == "" {
		l.currency = tx.Price.Currency()
	} else if c := tx.Price.Currency(); c != "" && c != l.currency {
		return fmt.Errorf("transaction currency %s does not match holding currency %s for %s", c, l.currency, l.key)
	}

	switch {
	case tx.Type.acquires():
		l.applyBuy(tx)
	case tx.Type.disposes():
		return l.applySell(tx)
	case tx.Type == TxDividend:
		// For a dividend row the price field carries the total gross
		// amount and the quantity field the reinvested shares.
		l.applyDividend(tx.EffectiveOn(), tx.Price, tx.Quantity, tx.ID)
	case tx.Type == TxDivEvent:
		// A declared per-share dividend: gross is the rate times the
		// position held on the effective date.
		gross := tx.Price.Mul(l.TotalQty())
		l.applyDividend(tx.EffectiveOn(), gross, tx.Quantity, tx.ID)
	case tx.Type == TxFee:
		l.applyFee(tx.Price)
	}
	return nil
}

// applyBuy appends a new lot. The cost basis is quantity times price plus
// commission, in the trading currency. A vesting transaction also records
// the grant's base value at its recorded date for the income-tax component.
func (l *Ledger) applyBuy(tx Transaction) {
	cost := tx.GrossAmount()
	if !tx.Commission.IsZero() {
		cost = cost.Add(tx.Commission)
	}
	lot := Lot{
		AcquisitionDate:     tx.EffectiveOn(),
		OriginalQty:         tx.Quantity,
		RemainingQty:        tx.Quantity,
		CostBasis:           cost,
		SourceTransactionID: tx.ID,
	}
	if !tx.VestDate.IsZero() {
		lot.GrantValue = tx.GrossAmount()
	}
	l.queue.push(lot)
}

// applySell consumes lots oldest-first. Overselling is a validation error
// raised before any mutation.
func (l *Ledger) applySell(tx Transaction) error {
	remaining := l.queue.remaining()
	if tx.Quantity.GreaterThan(remaining) {
		return &OversellError{Key: l.key, Requested: tx.Quantity, Remaining: remaining}
	}

	proceeds := tx.GrossAmount()
	if !tx.Commission.IsZero() {
		proceeds = proceeds.Sub(tx.Commission)
	}

	consumed := l.queue.consume(tx.Quantity)
	var cost Money
	portions := make([]SalePortion, 0, len(consumed))
	for _, s := range consumed {
		cost = cost.Add(s.cost)
		portion := SalePortion{
			AcquisitionDate: s.lot.AcquisitionDate,
			Quantity:        s.quantity,
			Cost:            s.cost,
		}
		if !s.lot.GrantValue.IsZero() && !s.lot.OriginalQty.IsZero() {
			// The grant value follows the consumed fraction of the lot.
			portion.GrantValue = s.lot.GrantValue.Mul(s.quantity).Div(s.lot.OriginalQty)
		}
		portions = append(portions, portion)
	}

	gain := proceeds.Sub(cost)
	l.realized = l.realized.Add(gain)
	l.sales = append(l.sales, Sale{
		Date:     tx.EffectiveOn(),
		Quantity: tx.Quantity,
		Proceeds: proceeds,
		Cost:     cost,
		Gain:     gain,
		Portions: portions,
	})
	return nil
}

// applyDividend always credits the gross amount to cumulative income. When
// the dividend policy reinvests and a reinvestment quantity is present, it
// additionally appends a DRIP lot costing the gross amount. Under the
// cash-taxed policy the reinvestment quantity is forced to zero before the
// ledger is touched, whatever the transaction carries.
func (l *Ledger) applyDividend(on Date, gross Money, reinvestQty Quantity, txID string) {
	l.income = l.income.Add(gross)

	if l.policy == DivCashTaxed {
		reinvestQty = Q(0)
	}
	if reinvestQty.IsPositive() {
		l.queue.push(Lot{
			AcquisitionDate:     on,
			OriginalQty:         reinvestQty,
			RemainingQty:        reinvestQty,
			CostBasis:           gross,
			SourceTransactionID: txID,
		})
	}
}

// applyFee debits cumulative income only; it never touches lot quantity or
// cost.
func (l *Ledger) applyFee(amount Money) {
	l.fees = l.fees.Add(amount)
}

// Book is the FIFO ledger state of every holding after replaying a
// transaction log.
type Book struct {
	ledgers map[HoldingKey]*Ledger
	order   []HoldingKey // first-seen order, for deterministic iteration
}

// Replay builds a Book from the full transaction log. Transactions are
// sequenced by their effective date (vesting defers a row past its recorded
// date), stable so same-day rows keep recorded order.
func Replay(txs []Transaction, configs map[string]Portfolio) (*Book, error) {
	return ReplayAsOf(txs, configs, Date{})
}

// ReplayAsOf is Replay restricted to transactions effective on or before
// 'on'. A zero date means no restriction.
func ReplayAsOf(txs []Transaction, configs map[string]Portfolio, on Date) (*Book, error) {
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EffectiveOn().Before(ordered[j].EffectiveOn())
	})

	book := &Book{ledgers: make(map[HoldingKey]*Ledger)}
	for _, tx := range ordered {
		if !on.IsZero() && tx.EffectiveOn().After(on) {
			break // ordered by effective date, safe to stop
		}
		cfg, ok := configs[tx.PortfolioID]
		if !ok {
			return nil, fmt.Errorf("transaction on %s references unknown portfolio %q", tx.Date, tx.PortfolioID)
		}
		ledger := book.ledgers[tx.Key()]
		if ledger == nil {
			ledger = NewLedger(tx.Key(), cfg.DivPolicy)
			book.ledgers[tx.Key()] = ledger
			book.order = append(book.order, tx.Key())
		}
		if err := ledger.Apply(tx); err != nil {
			return nil, err
		}
	}
	return book, nil
}

// Ledger returns the ledger for one holding, or nil when the holding has no
// transactions.
func (b *Book) Ledger(key HoldingKey) *Ledger { return b.ledgers[key] }

// Keys returns every holding in first-transaction order.
func (b *Book) Keys() []HoldingKey { return b.order }
