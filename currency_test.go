package folio

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvertIdentity(t *testing.T) {
	// The identity law holds for every currency, even on an empty snapshot.
	var s *RateSnapshot
	amount := decimal.NewFromFloat(123.45)
	for _, c := range Currencies() {
		got, err := s.Convert(amount, c, c)
		if err != nil {
			t.Fatalf("Convert(%s, %s) error = %v", c, c, err)
		}
		if !got.Equal(amount) {
			t.Errorf("Convert(%s, %s) = %s, want %s", c, c, got, amount)
		}
	}
}

func TestConvertRoundTrip(t *testing.T) {
	s := snapshot(map[Currency]float64{ILS: 3.5, EUR: 0.9})

	amount := decimal.NewFromFloat(250.0)
	there, err := s.Convert(amount, USD, ILS)
	if err != nil {
		t.Fatalf("Convert(USD, ILS) error = %v", err)
	}
	back, err := s.Convert(there, ILS, USD)
	if err != nil {
		t.Fatalf("Convert(ILS, USD) error = %v", err)
	}
	if diff := back.Sub(amount).Abs().InexactFloat64(); diff > 1e-9 {
		t.Errorf("round trip drifted by %v: %s -> %s -> %s", diff, amount, there, back)
	}

	// Cross pair pivots through USD.
	cross, err := s.Convert(decimal.NewFromFloat(90.0), EUR, ILS)
	if err != nil {
		t.Fatalf("Convert(EUR, ILS) error = %v", err)
	}
	if got := cross.InexactFloat64(); math.Abs(got-350.0) > 1e-9 {
		t.Errorf("Convert(90 EUR, ILS) = %v, want 350", got)
	}
}

func TestAgorotConversionIsExact(t *testing.T) {
	// Agorot never consult the snapshot, so even an empty one works.
	var s *RateSnapshot

	shekels, err := s.Convert(decimal.NewFromInt(250), ILA, ILS)
	if err != nil {
		t.Fatalf("Convert(ILA, ILS) error = %v", err)
	}
	if want := decimal.NewFromFloat(2.5); !shekels.Equal(want) {
		t.Errorf("250 agorot = %s ILS, want %s", shekels, want)
	}

	agorot, err := s.Convert(decimal.NewFromFloat(2.5), ILS, ILA)
	if err != nil {
		t.Fatalf("Convert(ILS, ILA) error = %v", err)
	}
	if want := decimal.NewFromInt(250); !agorot.Equal(want) {
		t.Errorf("2.5 ILS = %s agorot, want %s", agorot, want)
	}
}

func TestAgorotThroughSnapshot(t *testing.T) {
	// ILA to a foreign currency folds into ILS first, then pivots.
	s := snapshot(map[Currency]float64{ILS: 4.0})
	dollars, err := s.Convert(decimal.NewFromInt(400), ILA, USD)
	if err != nil {
		t.Fatalf("Convert(ILA, USD) error = %v", err)
	}
	if got := dollars.InexactFloat64(); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("400 agorot = %v USD, want 1", got)
	}
}

func TestConvertMissingRate(t *testing.T) {
	s := snapshot(map[Currency]float64{ILS: 3.5})

	_, err := s.Convert(decimal.NewFromInt(10), USD, GBP)
	var unavailable *RateUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Convert(USD, GBP) error = %v, want *RateUnavailableError", err)
	}
	if unavailable.From != USD || unavailable.To != GBP {
		t.Errorf("error reports %s to %s, want USD to GBP", unavailable.From, unavailable.To)
	}

	// A zero rate is as missing as an absent one.
	s.Current[GBP] = decimal.Decimal{}
	if _, err := s.Convert(decimal.NewFromInt(10), USD, GBP); !errors.As(err, &unavailable) {
		t.Errorf("Convert with zero rate error = %v, want *RateUnavailableError", err)
	}
}

func TestConvertMoneyWeakZero(t *testing.T) {
	var s *RateSnapshot
	got, err := s.ConvertMoney(Money{}, ILS)
	if err != nil {
		t.Fatalf("ConvertMoney(zero) error = %v", err)
	}
	if got.Currency() != ILS || !got.IsZero() {
		t.Errorf("ConvertMoney(zero, ILS) = %s %s, want zero ILS", got, got.Currency())
	}
}

func TestNormalizeCurrency(t *testing.T) {
	cases := map[string]Currency{
		"USD":   USD,
		"usd":   USD,
		"$":     USD,
		"₪":     ILS,
		"שקל":   ILS,
		"אגורות": ILA,
		"eur":   EUR,
		"יורו":  EUR,
		"£":     GBP,
	}
	for in, want := range cases {
		got, err := NormalizeCurrency(in)
		if err != nil {
			t.Errorf("NormalizeCurrency(%q) error = %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeCurrency(%q) = %s, want %s", in, got, want)
		}
	}

	_, err := NormalizeCurrency("doubloon")
	var unknown *UnknownCurrencyError
	if !errors.As(err, &unknown) {
		t.Fatalf("NormalizeCurrency(doubloon) error = %v, want *UnknownCurrencyError", err)
	}
	if unknown.Code != "doubloon" {
		t.Errorf("error reports code %q, want doubloon", unknown.Code)
	}
}

func TestMonthAgo(t *testing.T) {
	s := snapshot(map[Currency]float64{ILS: 4.0})
	if s.MonthAgo() != nil {
		t.Error("MonthAgo() on a snapshot without month-old rates should be nil")
	}

	s.Ago1m = map[Currency]decimal.Decimal{ILS: decimal.NewFromFloat(3.5)}
	ago := s.MonthAgo()
	if ago == nil {
		t.Fatal("MonthAgo() = nil, want a snapshot")
	}
	got, err := ago.Convert(decimal.NewFromInt(1), USD, ILS)
	if err != nil {
		t.Fatalf("Convert on month-ago view error = %v", err)
	}
	if want := decimal.NewFromFloat(3.5); !got.Equal(want) {
		t.Errorf("month-ago rate = %s, want %s", got, want)
	}
}
