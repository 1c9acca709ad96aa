// Package renderer turns the engine's plain data structures into markdown
// reports. It owns presentation only; every figure arrives pre-computed.
package renderer

import (
	"fmt"
	"math"

	"github.com/amitgr/folio"
)

// money formats an amount with its currency code.
func money(m folio.Money) string {
	return m.String()
}

// gain formats a gain or loss with an explicit sign, and "-" for zero.
func gain(m folio.Money) string {
	return m.SignedString()
}

// ratio formats a return ratio as a signed percentage: 0.1023 is "+10.23%".
func ratio(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", r*100)
}

// metric formats an aggregate figure, marking it when it rests on partial
// data.
func metric(m folio.Metric) string {
	s := ratio(m.Value)
	if m.Incomplete {
		s += " (partial)"
	}
	return s
}

// periodSummary formats an aggregated lookback return with its absolute
// gain, marking it when it rests on partial data.
func periodSummary(ps folio.PeriodSummary) string {
	s := fmt.Sprintf("%s (%s)", ratio(ps.Perf), money(ps.Gain))
	if ps.Incomplete {
		s += " (partial)"
	}
	return s
}

// weight formats a portfolio weight percentage.
func weight(p folio.Percent) string {
	return fmt.Sprintf("%.1f%%", float64(p))
}
