package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/amitgr/folio"
)

func TestGainsMarkdownSignsGains(t *testing.T) {
	key := folio.HoldingKey{Portfolio: "taxable", Ticker: "VOO"}
	winning := folio.Sale{
		Date:     folio.NewDate(2025, time.March, 1),
		Quantity: folio.Q(10),
		Proceeds: folio.M(1200, folio.USD),
		Cost:     folio.M(1000, folio.USD),
		Gain:     folio.M(200, folio.USD),
	}
	losing := folio.Sale{
		Date:     folio.NewDate(2025, time.April, 1),
		Quantity: folio.Q(5),
		Proceeds: folio.M(400, folio.USD),
		Cost:     folio.M(500, folio.USD),
		Gain:     folio.M(-100, folio.USD),
	}

	out := GainsMarkdown(key, []folio.Sale{winning, losing}, folio.M(50, folio.USD))

	if want := "+" + winning.Gain.String(); !strings.Contains(out, want) {
		t.Errorf("output missing signed gain %q:\n%s", want, out)
	}
	if want := losing.Gain.String(); !strings.Contains(out, want) {
		t.Errorf("output missing loss %q:\n%s", want, out)
	}
}

func TestGainsMarkdownNoSales(t *testing.T) {
	key := folio.HoldingKey{Portfolio: "taxable", Ticker: "VOO"}
	out := GainsMarkdown(key, nil, folio.M(0, folio.USD))
	if !strings.Contains(out, "No sales recorded.") {
		t.Errorf("empty report does not say so:\n%s", out)
	}
}

func TestRatioFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0.1023, "+10.23%"},
		{-0.05, "-5.00%"},
		{0, "+0.00%"},
	}
	for _, c := range cases {
		if got := ratio(c.in); got != c.want {
			t.Errorf("ratio(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMetricMarksPartialData(t *testing.T) {
	m := folio.Metric{Value: 0.02, Incomplete: true}
	got := metric(m)
	if !strings.HasSuffix(got, " (partial)") {
		t.Errorf("incomplete metric rendered as %q", got)
	}
	if got := metric(folio.Metric{Value: 0.02}); strings.Contains(got, "partial") {
		t.Errorf("complete metric rendered as %q", got)
	}
}
