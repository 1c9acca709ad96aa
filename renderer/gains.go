package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/amitgr/folio"
)

// GainsMarkdown renders the realized gains of one holding, one row per sale,
// with the FIFO cost breakdown that produced each gain.
func GainsMarkdown(key folio.HoldingKey, sales []folio.Sale, realizedTax folio.Money) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Realized Gains for %s", key))
	if len(sales) == 0 {
		doc.PlainText("No sales recorded.")
		return doc.String()
	}

	rows := make([][]string, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, []string{
			sale.Date.String(),
			sale.Quantity.String(),
			money(sale.Proceeds),
			money(sale.Cost),
			gain(sale.Gain),
			fmt.Sprintf("%d", len(sale.Portions)),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Date", "Qty", "Proceeds", "Cost", "Gain", "Lots"},
		Rows:   rows,
	})

	doc.PlainText(fmt.Sprintf("Realized tax liability: %s", money(realizedTax)))
	return doc.String()
}
