package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/amitgr/folio"
)

// HoldingMarkdown renders one holding in detail: its open lots and derived
// figures on a date.
func HoldingMarkdown(h folio.Holding, on folio.Date) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Holding %s on %s", h.Key, on))
	doc.PlainText(fmt.Sprintf("Quantity: %s, Cost Basis: %s", h.TotalQty, money(h.CostBasis)))
	if h.HasPrice {
		doc.PlainText(fmt.Sprintf("Last Price: %s, Market Value: %s, Unrealized: %s (%s)",
			money(h.LastPrice), money(h.MarketValue), gain(h.UnrealizedGain), ratio(h.UnrealizedGainPct)))
	} else {
		doc.PlainText("No price available on this date.")
	}

	rows := make([][]string, 0, len(h.Lots))
	for _, lot := range h.Lots {
		grant := ""
		if !lot.GrantValue.IsZero() {
			grant = money(lot.GrantValue)
		}
		rows = append(rows, []string{
			lot.AcquisitionDate.String(),
			lot.RemainingQty.String(),
			lot.OriginalQty.String(),
			money(lot.CostBasis),
			grant,
		})
	}
	doc.H2("Open Lots")
	doc.Table(md.TableSet{
		Header: []string{"Acquired", "Remaining", "Original", "Cost Basis", "Grant Value"},
		Rows:   rows,
	})

	doc.PlainText(fmt.Sprintf("Realized: %s, Dividends: %s, Fees: %s",
		gain(h.RealizedGain), money(h.Dividends), money(h.Fees)))
	return doc.String()
}
