package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/amitgr/folio"
)

// SummaryMarkdown renders the full dashboard: global totals, then one
// section per portfolio with its holdings table.
func SummaryMarkdown(s *folio.DashboardSummary, on folio.Date) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio Summary on %s", on))
	doc.PlainText(fmt.Sprintf("Total Market Value: %s", money(s.Global.MarketValue)))

	doc.H2("Totals")
	doc.Table(totalsTable(s.Global))

	for _, p := range s.Portfolios {
		doc.H2(fmt.Sprintf("Portfolio %s", p.ID))
		doc.Table(totalsTable(p.Totals))
		doc.Table(holdingsTable(p.Holdings))
	}

	return doc.String()
}

func totalsTable(t folio.GroupTotals) md.TableSet {
	rows := [][]string{
		{"Market Value", money(t.MarketValue)},
		{"Cost Basis", money(t.CostBasis)},
		{"Unrealized Gain", gain(t.UnrealizedGain)},
		{"Realized Gain", gain(t.RealizedGain)},
		{"Dividends", money(t.Dividends)},
		{"Fees", money(t.Fees)},
		{"Tax Liability", money(t.TaxLiability)},
		{"Value After Tax", money(t.ValueAfterTax)},
		{"Day Change", metric(t.DayChange)},
		{"FX Month Change", metric(t.FXMonthChange)},
	}
	for _, p := range folio.ReturnPeriods() {
		if ps, ok := t.PeriodReturns[p]; ok {
			rows = append(rows, []string{"Return " + p.String(), periodSummary(ps)})
		}
	}
	return md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	}
}

func holdingsTable(holdings []folio.HoldingSummary) md.TableSet {
	rows := make([][]string, 0, len(holdings))
	for _, h := range holdings {
		value := money(h.MarketValue)
		if !h.HasPrice {
			value = "no price"
		}
		rows = append(rows, []string{
			h.Key.Ticker,
			h.Quantity.String(),
			value,
			gain(h.UnrealizedGain),
			ratio(h.UnrealizedGainPct),
			ratio(h.DayChangePct),
			weight(h.WeightInPortfolio),
			weight(h.WeightInGlobal),
		})
	}
	return md.TableSet{
		Header: []string{"Ticker", "Qty", "Value", "Unrealized", "Unrealized %", "Day", "Weight", "Global Weight"},
		Rows:   rows,
	}
}
