package folio

import (
	"github.com/shopspring/decimal"
)

// lotEpsilon is the quantity below which a lot is considered fully consumed.
// Splitting a lot proportionally can leave decimal dust behind.
var lotEpsilon = decimal.New(1, -9)

// Lot is a discrete acquisition batch of a security: one buy, transfer-in,
// or dividend reinvestment. Lots are consumed oldest-first on disposal.
//
// CostBasis is kept in the security's own trading currency, not the display
// currency, so repeated valuation passes never compound conversion error;
// display-currency cost is computed on demand.
type Lot struct {
	AcquisitionDate     Date
	OriginalQty         Quantity
	RemainingQty        Quantity
	CostBasis           Money // cost of the remaining quantity
	GrantValue          Money // base value at grant date for income-taxed (RSU) lots, zero otherwise
	SourceTransactionID string
}

// consumed reports whether the lot's remaining quantity has reached ~0.
func (l Lot) consumed() bool {
	return l.RemainingQty.value.Abs().LessThanOrEqual(lotEpsilon)
}

// lotSale records the consumption of (part of) one lot by a disposal.
type lotSale struct {
	lot      Lot      // state of the lot before this consumption
	quantity Quantity // quantity taken from the lot
	cost     Money    // cost basis of the consumed portion
}

// lotQueue is a FIFO queue of lots. The backing slice is append-only and the
// head cursor advances as lots are consumed, so consumption is O(1) per lot
// with no front splicing.
type lotQueue struct {
	lots []Lot
	head int
}

// push appends a new lot at the tail.
func (q *lotQueue) push(l Lot) { q.lots = append(q.lots, l) }

// active returns the open lots, oldest first.
func (q *lotQueue) active() []Lot {
	return q.lots[q.head:]
}

// remaining returns the total quantity across all open lots.
func (q *lotQueue) remaining() Quantity {
	var total Quantity
	for _, l := range q.lots[q.head:] {
		total = total.Add(l.RemainingQty)
	}
	return total
}

// totalCost returns the total cost basis across all open lots, in the
// trading currency.
func (q *lotQueue) totalCost() Money {
	var total Money
	for _, l := range q.lots[q.head:] {
		total = total.Add(l.CostBasis)
	}
	return total
}

// consume takes quantityToSell from the front of the queue, oldest lot
// first. A lot larger than the remaining demand is split proportionally:
// both its quantity and its cost shrink by the sold fraction. The caller
// must have checked that the queue holds enough quantity.
func (q *lotQueue) consume(quantityToSell Quantity) []lotSale {
	var sales []lotSale
	for q.head < len(q.lots) && quantityToSell.IsPositive() {
		current := &q.lots[q.head]

		if current.RemainingQty.GreaterThan(quantityToSell) {
			// Partial sale from this lot.
			costOfSoldPortion := current.CostBasis.Mul(quantityToSell).Div(current.RemainingQty)
			sales = append(sales, lotSale{lot: *current, quantity: quantityToSell, cost: costOfSoldPortion})
			current.RemainingQty = current.RemainingQty.Sub(quantityToSell)
			current.CostBasis = current.CostBasis.Sub(costOfSoldPortion)
			quantityToSell = Q(0)
			if current.consumed() {
				q.head++
			}
			break
		}

		// Full consumption of this lot; demand carries over to the next.
		sales = append(sales, lotSale{lot: *current, quantity: current.RemainingQty, cost: current.CostBasis})
		quantityToSell = quantityToSell.Sub(current.RemainingQty)
		current.RemainingQty = Q(0)
		current.CostBasis = M(0, current.CostBasis.Currency())
		q.head++
	}
	return sales
}
