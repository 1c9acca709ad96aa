package folio

import (
	"testing"
	"time"
)

func TestCommissionRuleApply(t *testing.T) {
	rule := CommissionRule{Fixed: dec("5"), Rate: dec("0.001"), Minimum: dec("10")}

	// 5 fixed + 10 rate, above the minimum.
	if got := rule.Apply(usd(10000)); !got.Equal(usd(15)) {
		t.Errorf("commission on 10000 = %s, want 15 USD", got)
	}
	// 5 fixed + 1 rate, floored at the minimum.
	if got := rule.Apply(usd(1000)); !got.Equal(usd(10)) {
		t.Errorf("commission on 1000 = %s, want the 10 USD minimum", got)
	}
	// An empty rule charges nothing.
	if got := (CommissionRule{}).Apply(usd(1000)); !got.IsZero() {
		t.Errorf("empty rule charged %s", got)
	}
}

func TestWithRuleCommission(t *testing.T) {
	p := ilsPortfolio(NominalGain)
	p.Commission = CommissionRule{Fixed: dec("7")}

	// A trade without an explicit commission picks up the rule, in the
	// trading currency.
	tx := buyTx(day(2025, time.January, 1), "test", "VOO", 10, 100)
	if got := p.WithRuleCommission(tx); !got.Commission.Equal(usd(7)) {
		t.Errorf("rule commission = %s, want 7 USD", got.Commission)
	}

	// An explicit commission wins over the rule.
	explicit := tx.WithCommission(usd(3))
	if got := p.WithRuleCommission(explicit); !got.Commission.Equal(usd(3)) {
		t.Errorf("explicit commission = %s, want 3 USD", got.Commission)
	}

	// Only trades pay a trade commission.
	div := dividendTx(day(2025, time.February, 1), "test", "VOO", 50, 0)
	if got := p.WithRuleCommission(div); !got.Commission.IsZero() {
		t.Errorf("dividend charged a trade commission: %s", got.Commission)
	}
}
