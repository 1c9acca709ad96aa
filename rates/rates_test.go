package rates

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/amitgr/folio"
)

func TestParseDefaultPayload(t *testing.T) {
	payload := `{
	  "base": "USD",
	  "rates": {"ILS": 3.65, "EUR": 0.92, "GBP": "0,79", "JPY": 155.2},
	  "month_ago": {"rates": {"ILS": 3.5, "EUR": 0.9}}
	}`

	s, err := Parse(strings.NewReader(payload), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !s.Current[folio.ILS].Equal(decimal.NewFromFloat(3.65)) {
		t.Errorf("ILS rate = %s, want 3.65", s.Current[folio.ILS])
	}
	// Localized string rates are coerced.
	if !s.Current[folio.GBP].Equal(decimal.NewFromFloat(0.79)) {
		t.Errorf("GBP rate = %s, want 0.79", s.Current[folio.GBP])
	}
	// JPY is outside the accounted currency set and must be dropped.
	if len(s.Current) != 3 {
		t.Errorf("%d current rates, want 3 (ILS, EUR, GBP)", len(s.Current))
	}
	if !s.Ago1m[folio.ILS].Equal(decimal.NewFromFloat(3.5)) {
		t.Errorf("month-old ILS rate = %s, want 3.5", s.Ago1m[folio.ILS])
	}
}

func TestParseWithoutMonthOldTable(t *testing.T) {
	payload := `{"rates": {"ILS": 3.65}}`
	s, err := Parse(strings.NewReader(payload), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Ago1m) != 0 {
		t.Errorf("Ago1m = %v, want empty when the provider has no month-old table", s.Ago1m)
	}
	if s.MonthAgo() != nil {
		t.Error("MonthAgo view should be nil without month-old rates")
	}
}

func TestParseCustomPaths(t *testing.T) {
	payload := `{"data": {"quotes": {"ILS": 3.65}}}`
	cfg := Config{CurrentPath: "$.data.quotes"}
	s, err := Parse(strings.NewReader(payload), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Current) != 1 {
		t.Fatalf("%d rates, want 1", len(s.Current))
	}
}

func TestParseBadPath(t *testing.T) {
	payload := `{"rates": {"ILS": 3.65}}`
	if _, err := Parse(strings.NewReader(payload), Config{CurrentPath: "$.quotes"}); err == nil {
		t.Error("missing current table should fail")
	}
}

func TestParseRejectsZeroRate(t *testing.T) {
	payload := `{"rates": {"ILS": 0}}`
	if _, err := Parse(strings.NewReader(payload), DefaultConfig()); err == nil {
		t.Error("a zero rate should fail parsing, not convert to zero money")
	}
}

func TestParseRejectsGarbageRate(t *testing.T) {
	payload := `{"rates": {"ILS": "abc"}}`
	if _, err := Parse(strings.NewReader(payload), DefaultConfig()); err == nil {
		t.Error("a non-numeric rate should fail parsing")
	}
}
