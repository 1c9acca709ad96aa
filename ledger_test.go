package folio

import (
	"errors"
	"testing"
	"time"
)

var taxableUSD = Portfolio{
	ID:        "taxable",
	Currency:  ILS,
	TaxPolicy: NominalGain,
	CGT:       dec("0.25"),
	IncTax:    dec("0.47"),
	DivPolicy: DivCashTaxed,
}

var accumulating = Portfolio{
	ID:        "accum",
	Currency:  ILS,
	TaxPolicy: TaxFree,
	DivPolicy: DivAccumulate,
}

func TestLedgerFIFOInvariant(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	txs := []Transaction{
		buyTx(day(2025, time.January, 1), "taxable", "VOO", 10, 100),
		buyTx(day(2025, time.February, 1), "taxable", "VOO", 5, 120),
		sellTx(day(2025, time.March, 1), "taxable", "VOO", 12, 130),
	}
	for _, tx := range txs {
		if err := ledger.Apply(tx); err != nil {
			t.Fatalf("Apply(%s) error = %v", tx.Type, err)
		}
	}

	// The sum of lot remainders always equals the total quantity.
	var sum Quantity
	for _, lot := range ledger.Lots() {
		if lot.RemainingQty.IsNegative() {
			t.Errorf("lot acquired %s has negative remainder %s", lot.AcquisitionDate, lot.RemainingQty)
		}
		sum = sum.Add(lot.RemainingQty)
	}
	if !sum.Equal(ledger.TotalQty()) {
		t.Errorf("sum of lot remainders %s != total quantity %s", sum, ledger.TotalQty())
	}
	if !ledger.TotalQty().Equal(Q(3)) {
		t.Errorf("total quantity = %s, want 3", ledger.TotalQty())
	}

	// 12 sold: all 10 of the January lot, then 2 of February's.
	// Proceeds 1560, cost 1000 + 240, gain 320.
	if !ledger.RealizedGain().Equal(usd(320)) {
		t.Errorf("realized gain = %s, want 320 USD", ledger.RealizedGain())
	}
	if !ledger.CostBasis().Equal(usd(360)) {
		t.Errorf("remaining cost basis = %s, want 360 USD", ledger.CostBasis())
	}
}

func TestLedgerOversellRejectedBeforeMutation(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	if err := ledger.Apply(buyTx(day(2025, time.January, 1), "taxable", "VOO", 10, 100)); err != nil {
		t.Fatal(err)
	}

	err := ledger.Apply(sellTx(day(2025, time.February, 1), "taxable", "VOO", 11, 100))
	var oversell *OversellError
	if !errors.As(err, &oversell) {
		t.Fatalf("Apply(sell 11) error = %v, want *OversellError", err)
	}
	if !oversell.Requested.Equal(Q(11)) || !oversell.Remaining.Equal(Q(10)) {
		t.Errorf("oversell reports %s of %s remaining, want 11 of 10", oversell.Requested, oversell.Remaining)
	}

	// The failed sale must not have touched the lots.
	if !ledger.TotalQty().Equal(Q(10)) {
		t.Errorf("total quantity after rejected sale = %s, want 10", ledger.TotalQty())
	}
	if len(ledger.Sales()) != 0 {
		t.Errorf("%d sales recorded after rejected sale, want 0", len(ledger.Sales()))
	}
}

func TestLedgerCommission(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	buy := buyTx(day(2025, time.January, 1), "taxable", "VOO", 10, 100).WithCommission(usd(7))
	if err := ledger.Apply(buy); err != nil {
		t.Fatal(err)
	}
	if !ledger.CostBasis().Equal(usd(1007)) {
		t.Errorf("cost basis = %s, want 1007 USD", ledger.CostBasis())
	}

	sell := sellTx(day(2025, time.February, 1), "taxable", "VOO", 10, 110).WithCommission(usd(7))
	if err := ledger.Apply(sell); err != nil {
		t.Fatal(err)
	}
	// Proceeds 1100-7, cost 1007: gain 86.
	if !ledger.RealizedGain().Equal(usd(86)) {
		t.Errorf("realized gain = %s, want 86 USD", ledger.RealizedGain())
	}
}

func TestLedgerDividendCashTaxedCreatesNoLot(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	if err := ledger.Apply(buyTx(day(2025, time.January, 1), "taxable", "VOO", 10, 100)); err != nil {
		t.Fatal(err)
	}

	// The record carries a reinvestment quantity, but the policy wins.
	if err := ledger.Apply(dividendTx(day(2025, time.February, 1), "taxable", "VOO", 50, 0.5)); err != nil {
		t.Fatal(err)
	}

	if got := len(ledger.Lots()); got != 1 {
		t.Errorf("%d lots after cash-taxed dividend, want 1", got)
	}
	if !ledger.TotalQty().Equal(Q(10)) {
		t.Errorf("total quantity = %s, want 10", ledger.TotalQty())
	}
	if !ledger.Dividends().Equal(usd(50)) {
		t.Errorf("dividend income = %s, want 50 USD", ledger.Dividends())
	}
}

func TestLedgerDividendReinvested(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "accum", Ticker: "VWCE"}, DivAccumulate)
	if err := ledger.Apply(buyTx(day(2025, time.January, 1), "accum", "VWCE", 10, 100)); err != nil {
		t.Fatal(err)
	}
	if err := ledger.Apply(dividendTx(day(2025, time.February, 1), "accum", "VWCE", 50, 0.5)); err != nil {
		t.Fatal(err)
	}

	lots := ledger.Lots()
	if len(lots) != 2 {
		t.Fatalf("%d lots after reinvested dividend, want 2", len(lots))
	}
	drip := lots[1]
	if !drip.RemainingQty.Equal(Q(0.5)) {
		t.Errorf("reinvested quantity = %s, want 0.5", drip.RemainingQty)
	}
	if !drip.CostBasis.Equal(usd(50)) {
		t.Errorf("reinvested cost = %s, want 50 USD", drip.CostBasis)
	}
	if !ledger.Dividends().Equal(usd(50)) {
		t.Errorf("dividend income = %s, want 50 USD", ledger.Dividends())
	}
}

func TestLedgerDivEventUsesHeldPosition(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	if err := ledger.Apply(buyTx(day(2025, time.January, 1), "taxable", "VOO", 8, 100)); err != nil {
		t.Fatal(err)
	}

	// A declared per-share rate of 1.5 over 8 held units.
	event := NewTransaction(day(2025, time.February, 1), "taxable", "VOO", "NYSE", TxDivEvent, Q(0), usd(1.5))
	if err := ledger.Apply(event); err != nil {
		t.Fatal(err)
	}
	if !ledger.Dividends().Equal(usd(12)) {
		t.Errorf("dividend income = %s, want 12 USD", ledger.Dividends())
	}
}

func TestLedgerFees(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	if err := ledger.Apply(buyTx(day(2025, time.January, 1), "taxable", "VOO", 10, 100)); err != nil {
		t.Fatal(err)
	}
	fee := NewTransaction(day(2025, time.February, 1), "taxable", "VOO", "NYSE", TxFee, Q(0), usd(3))
	if err := ledger.Apply(fee); err != nil {
		t.Fatal(err)
	}

	if !ledger.Fees().Equal(usd(3)) {
		t.Errorf("fees = %s, want 3 USD", ledger.Fees())
	}
	// Fees never touch quantity or cost.
	if !ledger.TotalQty().Equal(Q(10)) || !ledger.CostBasis().Equal(usd(1000)) {
		t.Errorf("fee changed position: qty %s cost %s", ledger.TotalQty(), ledger.CostBasis())
	}
}

func TestLedgerRejectsCommissionCurrencyMismatch(t *testing.T) {
	tx := buyTx(day(2025, time.January, 1), "taxable", "VOO", 10, 100).WithCommission(eur(7))
	if err := tx.Validate(); err == nil {
		t.Fatal("commission in a foreign currency passed validation")
	}

	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	if err := ledger.Apply(tx); err == nil {
		t.Fatal("ledger accepted a commission in a foreign currency")
	}
	if !ledger.TotalQty().IsZero() {
		t.Error("rejected transaction mutated the ledger")
	}
}

func TestLedgerRejectsCurrencyMismatch(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	if err := ledger.Apply(buyTx(day(2025, time.January, 1), "taxable", "VOO", 10, 100)); err != nil {
		t.Fatal(err)
	}
	mixed := NewTransaction(day(2025, time.February, 1), "taxable", "VOO", "NYSE", TxBuy, Q(1), eur(90))
	if err := ledger.Apply(mixed); err == nil {
		t.Error("Apply with a different trading currency should fail")
	}
}

func TestLedgerRejectsInvalidTransaction(t *testing.T) {
	ledger := NewLedger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"}, DivCashTaxed)
	bad := buyTx(day(2025, time.January, 1), "taxable", "VOO", -5, 100)
	if err := ledger.Apply(bad); err == nil {
		t.Error("Apply with negative quantity should fail")
	}
	if len(ledger.Lots()) != 0 {
		t.Errorf("invalid transaction mutated the ledger: %d lots", len(ledger.Lots()))
	}
}

func TestReplayVestingDefersEffect(t *testing.T) {
	configs := testPortfolios(taxableUSD)
	grant := buyTx(day(2025, time.January, 1), "taxable", "RSU", 10, 50).
		WithVestDate(day(2025, time.June, 1))

	// Before the vest date the grant holds nothing.
	book, err := ReplayAsOf([]Transaction{grant}, configs, day(2025, time.March, 1))
	if err != nil {
		t.Fatal(err)
	}
	if ledger := book.Ledger(grant.Key()); ledger != nil && !ledger.TotalQty().IsZero() {
		t.Errorf("unvested grant holds %s, want nothing", ledger.TotalQty())
	}

	// On the vest date it enters the ledger with the grant value recorded.
	book, err = ReplayAsOf([]Transaction{grant}, configs, day(2025, time.June, 1))
	if err != nil {
		t.Fatal(err)
	}
	ledger := book.Ledger(grant.Key())
	if ledger == nil {
		t.Fatal("vested grant missing from book")
	}
	if !ledger.TotalQty().Equal(Q(10)) {
		t.Errorf("vested quantity = %s, want 10", ledger.TotalQty())
	}
	lots := ledger.Lots()
	if len(lots) != 1 {
		t.Fatalf("%d lots, want 1", len(lots))
	}
	if lots[0].AcquisitionDate != day(2025, time.June, 1) {
		t.Errorf("acquisition date = %s, want the vest date", lots[0].AcquisitionDate)
	}
	if !lots[0].GrantValue.Equal(usd(500)) {
		t.Errorf("grant value = %s, want 500 USD", lots[0].GrantValue)
	}
}

func TestReplayOrdersByEffectiveDate(t *testing.T) {
	configs := testPortfolios(taxableUSD)
	// Recorded before the buy, but vesting after it: the sale of the
	// unvested grant must not precede the plain buy.
	grant := buyTx(day(2025, time.January, 1), "taxable", "VOO", 5, 90).
		WithVestDate(day(2025, time.April, 1))
	plain := buyTx(day(2025, time.February, 1), "taxable", "VOO", 10, 100)
	sale := sellTx(day(2025, time.March, 1), "taxable", "VOO", 10, 110)

	book, err := Replay([]Transaction{grant, plain, sale}, configs)
	if err != nil {
		t.Fatal(err)
	}
	ledger := book.Ledger(HoldingKey{Portfolio: "taxable", Ticker: "VOO"})
	// March's sale consumed February's lot; April's vest arrived after.
	if !ledger.TotalQty().Equal(Q(5)) {
		t.Errorf("total quantity = %s, want 5", ledger.TotalQty())
	}
	lots := ledger.Lots()
	if len(lots) != 1 || lots[0].AcquisitionDate != day(2025, time.April, 1) {
		t.Errorf("surviving lot = %+v, want the vested April lot", lots)
	}
}

func TestReplayUnknownPortfolio(t *testing.T) {
	_, err := Replay([]Transaction{buyTx(day(2025, time.January, 1), "ghost", "VOO", 1, 1)}, testPortfolios(taxableUSD))
	if err == nil {
		t.Error("Replay with an unknown portfolio should fail")
	}
}
